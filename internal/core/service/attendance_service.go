package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/companyos/portal-api/internal/core/domain"
	"github.com/companyos/portal-api/internal/core/ports"
)

// AttendanceService drives the per-(employee, day) state machine:
// no record → checked in → complete.
type AttendanceService struct {
	repo   ports.AttendanceRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewAttendanceService(repo ports.AttendanceRepository, logger zerolog.Logger) *AttendanceService {
	return &AttendanceService{repo: repo, logger: logger, now: time.Now}
}

func (s *AttendanceService) CheckIn(ctx context.Context, userID string) (time.Time, error) {
	now := s.now()
	day, _ := domain.DayBounds(now)

	rec := &domain.AttendanceRecord{
		UserID:      userID,
		Date:        day,
		CheckIn:     &now,
		CheckOut:    nil,
		Status:      domain.StatusPresent,
		HoursWorked: 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// The unique (user_id, date) index arbitrates concurrent check-ins: the
	// losing insert surfaces as ErrAlreadyCheckedIn, never as a second row.
	if err := s.repo.CreateIfAbsent(ctx, rec); err != nil {
		return time.Time{}, err
	}

	s.logger.Info().Str("user_id", userID).Time("check_in", now).Msg("checked in")
	return now, nil
}

func (s *AttendanceService) CheckOut(ctx context.Context, userID string) (*ports.CheckOutResult, error) {
	now := s.now()

	rec, err := s.repo.FindByUserAndDay(ctx, userID, now)
	if err != nil {
		if err == domain.ErrAttendanceNotFound {
			return nil, domain.ErrNotCheckedIn
		}
		return nil, err
	}
	if rec.CheckIn == nil {
		return nil, domain.ErrNotCheckedIn
	}
	if rec.CheckOut != nil {
		return nil, domain.ErrAlreadyCheckedOut
	}

	hours := domain.RoundHours(now.Sub(*rec.CheckIn))
	status := domain.StatusForHours(hours)

	if err := s.repo.SetCheckOut(ctx, rec.ID, now, hours, status); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Float64("hours_worked", hours).
		Str("status", string(status)).
		Msg("checked out")

	return &ports.CheckOutResult{CheckOutTime: now, HoursWorked: hours, Status: status}, nil
}

func (s *AttendanceService) MyAttendance(ctx context.Context, userID string, windowDays int) (*ports.MyAttendanceResult, error) {
	if windowDays <= 0 {
		windowDays = 7
	}
	now := s.now()

	today, err := s.repo.FindByUserAndDay(ctx, userID, now)
	if err != nil && err != domain.ErrAttendanceNotFound {
		return nil, err
	}

	from, _ := domain.DayBounds(now.AddDate(0, 0, -windowDays))
	recent, err := s.repo.FindRecent(ctx, userID, from)
	if err != nil {
		return nil, err
	}

	return &ports.MyAttendanceResult{Today: today, Recent: recent}, nil
}

func (s *AttendanceService) Logs(ctx context.Context, filter domain.AttendanceFilter) ([]*domain.AttendanceLogEntry, error) {
	return s.repo.Logs(ctx, filter)
}
