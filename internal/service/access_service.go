package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/petos-app/petos/internal/repository"
)

var ErrCodeInvalid = errors.New("access code invalid")
var ErrCodeExhausted = errors.New("access code exhausted")

// AccessService redeems premium access codes. A redeemed code binds to the
// redeeming identity; presenting the same code again from that identity is a
// no-op success so a client that lost its premium cookie can restore it.
type AccessService struct {
	codes *repository.AccessCodeRepository
}

func NewAccessService(codes *repository.AccessCodeRepository) *AccessService {
	return &AccessService{codes: codes}
}

// Redeem validates the code and records the redemption atomically. On
// success the caller marks the client session premium; this service never
// revokes premium once granted.
func (s *AccessService) Redeem(ctx context.Context, identity, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrCodeInvalid
	}

	ac, err := s.codes.GetByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("get access code: %w", err)
	}
	if ac == nil {
		return ErrCodeInvalid
	}

	tx, err := s.codes.DB().BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT 1 FROM access_redemptions WHERE identity = ? AND access_code_id = ?`, identity, ac.ID)
	var dummy int
	if err := row.Scan(&dummy); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check redemption: %w", err)
		}
	} else {
		// Already redeemed by this identity: restoring the flag is fine.
		return nil
	}

	var uses, maxUses int
	row = tx.QueryRowContext(ctx, `SELECT uses, max_uses FROM access_codes WHERE id = ? FOR UPDATE`, ac.ID)
	if err := row.Scan(&uses, &maxUses); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCodeInvalid
		}
		return fmt.Errorf("lock access code: %w", err)
	}
	if uses >= maxUses {
		return ErrCodeExhausted
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO access_redemptions (identity, access_code_id) VALUES (?, ?)`, identity, ac.ID); err != nil {
		return fmt.Errorf("insert redemption: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE access_codes SET uses = uses + 1 WHERE id = ?`, ac.ID); err != nil {
		return fmt.Errorf("increment code uses: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit redemption tx: %w", err)
	}
	return nil
}
