package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/petos-app/petos/internal/models"
)

type AccessCodeRepository struct {
	db *sql.DB
}

func NewAccessCodeRepository(db *sql.DB) *AccessCodeRepository {
	return &AccessCodeRepository{db: db}
}

func (r *AccessCodeRepository) DB() *sql.DB {
	return r.db
}

func (r *AccessCodeRepository) GetByCode(ctx context.Context, code string) (*models.AccessCode, error) {
	const query = `SELECT id, code, max_uses, uses, created_at FROM access_codes WHERE code = ?`
	row := r.db.QueryRowContext(ctx, query, code)
	var ac models.AccessCode
	if err := row.Scan(&ac.ID, &ac.Code, &ac.MaxUses, &ac.Uses, &ac.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan access code: %w", err)
	}
	return &ac, nil
}

func (r *AccessCodeRepository) GetByID(ctx context.Context, id int64) (*models.AccessCode, error) {
	const query = `SELECT id, code, max_uses, uses, created_at FROM access_codes WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	var ac models.AccessCode
	if err := row.Scan(&ac.ID, &ac.Code, &ac.MaxUses, &ac.Uses, &ac.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get access code by id: %w", err)
	}
	return &ac, nil
}

func (r *AccessCodeRepository) List(ctx context.Context) ([]models.AccessCode, error) {
	const query = `SELECT id, code, max_uses, uses, created_at FROM access_codes ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list access codes: %w", err)
	}
	defer rows.Close()

	var codes []models.AccessCode
	for rows.Next() {
		var ac models.AccessCode
		if err := rows.Scan(&ac.ID, &ac.Code, &ac.MaxUses, &ac.Uses, &ac.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan access code list: %w", err)
		}
		codes = append(codes, ac)
	}
	return codes, rows.Err()
}

func (r *AccessCodeRepository) Create(ctx context.Context, ac *models.AccessCode) (*models.AccessCode, error) {
	const query = `
INSERT INTO access_codes (code, max_uses, uses)
VALUES (?, ?, 0)`
	res, err := r.db.ExecContext(ctx, query, ac.Code, ac.MaxUses)
	if err != nil {
		return nil, fmt.Errorf("create access code: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("access code last insert id: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *AccessCodeRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM access_codes WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete access code: %w", err)
	}
	return nil
}
