package service

import (
	"context"
	"time"

	"github.com/companyos/portal-api/internal/core/domain"
	"github.com/companyos/portal-api/internal/core/ports"
)

// DashboardService aggregates the landing-page counters.
type DashboardService struct {
	users      ports.UserRepository
	emails     ports.EmailRepository
	attendance ports.AttendanceRepository
}

func NewDashboardService(users ports.UserRepository, emails ports.EmailRepository, attendance ports.AttendanceRepository) *DashboardService {
	return &DashboardService{users: users, emails: emails, attendance: attendance}
}

func (s *DashboardService) Stats(ctx context.Context) (*ports.DashboardStats, error) {
	stats := &ports.DashboardStats{}

	total, err := s.users.CountEmployees(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalEmployees = total

	now := time.Now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	sent, err := s.emails.CountSentSince(ctx, startOfMonth)
	if err != nil {
		return nil, err
	}
	stats.EmailsSent = sent

	day, _ := domain.DayBounds(now)
	checkedIn, err := s.attendance.CountCheckedIn(ctx, day)
	if err != nil {
		return nil, err
	}
	stats.AttendanceToday = checkedIn

	return stats, nil
}
