package ports

import (
	"context"

	"github.com/companyos/portal-api/internal/core/domain"
)

// UserRepository defines persistence for portal identities. Password hashes
// travel only through this boundary and the credential helpers.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// EmailTakenByOther reports whether email belongs to a user other than id.
	EmailTakenByOther(ctx context.Context, email, id string) (bool, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// UpdatePasswordByEmail is the reset-password write path, keyed the same
	// way the OTP ledger is.
	UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error
	Delete(ctx context.Context, id string) error
	// ListEmployees returns role=employee users, newest first, hashes omitted.
	ListEmployees(ctx context.Context) ([]*domain.User, error)
	// ListEmployeeRecipients projects employees down to mailing addressees.
	ListEmployeeRecipients(ctx context.Context) ([]domain.EmailRecipient, error)
	CountEmployees(ctx context.Context) (int64, error)
}
