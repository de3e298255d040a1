package ports

import (
	"context"

	"github.com/companyos/portal-api/internal/core/domain"
)

// CreateEmployeeInput carries the admin-entered directory fields. JobTitle is
// the free-form position; the account role is always "employee".
type CreateEmployeeInput struct {
	Name       string
	Email      string
	Password   string
	JobTitle   string
	Department string
	Phone      string
}

// UpdateEmployeeInput carries the editable directory fields.
type UpdateEmployeeInput struct {
	Name       string
	Email      string
	JobTitle   string
	Department string
	Phone      string
}

// UpdateProfileInput carries the self-service editable fields.
type UpdateProfileInput struct {
	Name       string
	Phone      string
	Department string
}

type EmployeeService interface {
	ListEmployees(ctx context.Context) ([]*domain.User, error)
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*domain.User, error)
	UpdateEmployee(ctx context.Context, id string, in UpdateEmployeeInput) error
	DeleteEmployee(ctx context.Context, id string) error

	Profile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}
