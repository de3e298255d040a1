package ports

import (
	"context"

	"github.com/companyos/portal-api/internal/core/domain"
)

// AuthService covers login and the OTP password-recovery flow.
type AuthService interface {
	// Login verifies credentials and returns a signed 7-day token plus the
	// authenticated user. Wrong password and unknown email both surface as
	// domain.ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// RequestPasswordReset issues a fresh OTP for email and hands it to the
	// notification channel. Previously issued, still-valid codes remain
	// usable. Unknown email surfaces as domain.ErrUserNotFound.
	RequestPasswordReset(ctx context.Context, email string) error
	// VerifyOTP checks an email+code pair without consuming it; it is
	// idempotent and re-checkable.
	VerifyOTP(ctx context.Context, email, code string) error
	// ResetPassword atomically consumes the matching code and replaces the
	// owner's password digest. The digest is never touched when the code
	// fails to match.
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}
