package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/companyos/portal-api/internal/core/domain"
	"github.com/companyos/portal-api/internal/core/ports"
)

// EmployeeService implements the directory and self-service profile paths.
type EmployeeService struct {
	users  ports.UserRepository
	logger zerolog.Logger
}

func NewEmployeeService(users ports.UserRepository, logger zerolog.Logger) *EmployeeService {
	return &EmployeeService{users: users, logger: logger}
}

func (s *EmployeeService) ListEmployees(ctx context.Context) ([]*domain.User, error) {
	return s.users.ListEmployees(ctx)
}

func (s *EmployeeService) CreateEmployee(ctx context.Context, in ports.CreateEmployeeInput) (*domain.User, error) {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleEmployee,
		JobTitle:     in.JobTitle,
		Department:   in.Department,
		Phone:        in.Phone,
		JoinDate:     now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("email", created.Email).Msg("employee created")
	return created, nil
}

func (s *EmployeeService) UpdateEmployee(ctx context.Context, id string, in ports.UpdateEmployeeInput) error {
	taken, err := s.users.EmailTakenByOther(ctx, in.Email, id)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrUserExists
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	user.Name = in.Name
	user.Email = in.Email
	user.JobTitle = in.JobTitle
	user.Department = in.Department
	user.Phone = in.Phone
	user.UpdatedAt = time.Now()

	return s.users.Update(ctx, user)
}

func (s *EmployeeService) DeleteEmployee(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Msg("employee deleted")
	return nil
}

func (s *EmployeeService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *EmployeeService) UpdateProfile(ctx context.Context, userID string, in ports.UpdateProfileInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = in.Name
	user.Phone = in.Phone
	user.Department = in.Department
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *EmployeeService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !VerifyPassword(currentPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", userID).Msg("password changed")
	return nil
}
