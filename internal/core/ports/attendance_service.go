package ports

import (
	"context"
	"time"

	"github.com/companyos/portal-api/internal/core/domain"
)

// CheckOutResult is what a completed check-out reports back.
type CheckOutResult struct {
	CheckOutTime time.Time
	HoursWorked  float64
	Status       domain.AttendanceStatus
}

// MyAttendanceResult bundles today's record (nil when absent) with the
// trailing window, newest first.
type MyAttendanceResult struct {
	Today  *domain.AttendanceRecord
	Recent []*domain.AttendanceRecord
}

type AttendanceService interface {
	CheckIn(ctx context.Context, userID string) (time.Time, error)
	CheckOut(ctx context.Context, userID string) (*CheckOutResult, error)
	MyAttendance(ctx context.Context, userID string, windowDays int) (*MyAttendanceResult, error)
	Logs(ctx context.Context, filter domain.AttendanceFilter) ([]*domain.AttendanceLogEntry, error)
}
