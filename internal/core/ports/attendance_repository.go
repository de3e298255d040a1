package ports

import (
	"context"
	"time"

	"github.com/companyos/portal-api/internal/core/domain"
)

// AttendanceRepository defines persistence for daily attendance records.
type AttendanceRepository interface {
	// CreateIfAbsent inserts rec relying on the unique (user_id, date) index.
	// A concurrent or earlier record for the same day surfaces as
	// domain.ErrAlreadyCheckedIn, never as a duplicate row.
	CreateIfAbsent(ctx context.Context, rec *domain.AttendanceRecord) error
	// FindByUserAndDay returns the record whose Date falls in the day
	// containing day, or domain.ErrAttendanceNotFound.
	FindByUserAndDay(ctx context.Context, userID string, day time.Time) (*domain.AttendanceRecord, error)
	// SetCheckOut completes the record's day. The update is conditioned on
	// check_out still being unset; a lost race or an already-complete record
	// surfaces as domain.ErrAlreadyCheckedOut.
	SetCheckOut(ctx context.Context, id string, checkOut time.Time, hours float64, status domain.AttendanceStatus) error
	// FindRecent returns the user's records with Date >= from, newest first.
	FindRecent(ctx context.Context, userID string, from time.Time) ([]*domain.AttendanceRecord, error)
	// Logs joins records to their owners for the admin view, day descending.
	Logs(ctx context.Context, filter domain.AttendanceFilter) ([]*domain.AttendanceLogEntry, error)
	// CountCheckedIn counts records with a check-in stamp on the given day.
	CountCheckedIn(ctx context.Context, day time.Time) (int64, error)
}
