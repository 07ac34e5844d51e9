package service

import (
	"context"
	"log/slog"

	"github.com/petos-app/petos/internal/config"
)

// UsageCounter reads the prior-use count from the append-only log store.
type UsageCounter interface {
	CountByIdentity(ctx context.Context, identity string) (int, error)
}

// MeteringService derives the free-use quota for an identity. There is no
// stored counter anywhere: the number of usage log entries is the single
// source of truth, so concurrent generations never race on an increment.
type MeteringService struct {
	counter   UsageCounter
	freeLimit int
	log       *slog.Logger
}

func NewMeteringService(cfg config.Config, log *slog.Logger, counter UsageCounter) *MeteringService {
	return &MeteringService{
		counter:   counter,
		freeLimit: cfg.FreeLimit,
		log:       log,
	}
}

// CountUses returns the number of prior generations for the identity.
// A store failure counts as zero prior uses: a transient outage must not
// lock out legitimate free users, so availability wins over strictness here.
func (s *MeteringService) CountUses(ctx context.Context, identity string) int {
	count, err := s.counter.CountByIdentity(ctx, identity)
	if err != nil {
		s.log.Warn("usage count unavailable, failing open", "identity", identity, "err", err)
		return 0
	}
	return count
}

// Remaining can go negative; callers floor it at display time only.
func (s *MeteringService) Remaining(ctx context.Context, identity string) int {
	return s.freeLimit - s.CountUses(ctx, identity)
}

// MayGenerate is the access gate. Premium always passes; free users pass
// while they have uses left. The caller must treat a false result as a hard
// stop before the pipeline, not just as hidden UI.
func MayGenerate(isPremium bool, remaining int) bool {
	if isPremium {
		return true
	}
	return remaining > 0
}
