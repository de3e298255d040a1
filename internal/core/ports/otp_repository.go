package ports

import (
	"context"
	"time"

	"github.com/companyos/portal-api/internal/core/domain"
)

// OTPRepository defines persistence for recovery codes. Matching always
// filters on unused + unexpired at query time; the store's TTL reaper only
// reclaims space and is never relied on for correctness.
type OTPRepository interface {
	Create(ctx context.Context, rec *domain.OTPRecord) error
	// MatchValid reports whether an unconsumed, unexpired record exists for
	// the exact email+code pair at now. It never mutates state.
	MatchValid(ctx context.Context, email, code string, now time.Time) (bool, error)
	// ConsumeIfValid atomically marks the matching record consumed. The update
	// is conditioned on the consumed flag still being false, so of two racing
	// callers exactly one succeeds; the loser gets domain.ErrInvalidOTP.
	ConsumeIfValid(ctx context.Context, email, code string, now time.Time) error
}
