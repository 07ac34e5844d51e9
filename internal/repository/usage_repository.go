package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/petos-app/petos/internal/models"
)

type UsageRepository struct {
	db *sql.DB
}

func NewUsageRepository(db *sql.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// Append inserts a usage record. Entries are never updated or deleted.
func (r *UsageRepository) Append(ctx context.Context, entry models.UsageLogEntry) error {
	const query = `
INSERT INTO usage_logs (identity, image_url, caption, group_key)
VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, entry.Identity, entry.ImageURL, entry.Caption, entry.GroupKey); err != nil {
		return fmt.Errorf("insert usage log: %w", err)
	}
	return nil
}

// CountByIdentity returns the number of prior generations for one identity.
func (r *UsageRepository) CountByIdentity(ctx context.Context, identity string) (int, error) {
	const query = `SELECT COUNT(*) FROM usage_logs WHERE identity = ?`
	row := r.db.QueryRowContext(ctx, query, identity)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count usage: %w", err)
	}
	return count, nil
}

// Recent lists the newest entries across all identities, newest first.
func (r *UsageRepository) Recent(ctx context.Context, limit int) ([]models.UsageLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
SELECT id, identity, image_url, caption, group_key, created_at
FROM usage_logs ORDER BY id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list usage logs: %w", err)
	}
	defer rows.Close()

	var entries []models.UsageLogEntry
	for rows.Next() {
		var e models.UsageLogEntry
		if err := rows.Scan(&e.ID, &e.Identity, &e.ImageURL, &e.Caption, &e.GroupKey, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan usage log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
