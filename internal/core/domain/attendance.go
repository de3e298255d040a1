package domain

import (
	"errors"
	"math"
	"time"
)

// AttendanceStatus is the derived work-status of a daily record.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusPartial AttendanceStatus = "partial"
	StatusAbsent  AttendanceStatus = "absent"
)

// FullDayHours is the threshold at which a completed day counts as present.
const FullDayHours = 8.0

var ErrAlreadyCheckedIn = errors.New("already checked in today")
var ErrNotCheckedIn = errors.New("not checked in yet")
var ErrAlreadyCheckedOut = errors.New("already checked out today")
var ErrAttendanceNotFound = errors.New("attendance record not found")

// AttendanceRecord is the single daily in/out entry for one employee.
// Date is the local midnight of the calendar day the record belongs to;
// at most one record exists per (UserID, Date).
type AttendanceRecord struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	Date        time.Time        `json:"date"`
	CheckIn     *time.Time       `json:"check_in"`
	CheckOut    *time.Time       `json:"check_out"`
	Status      AttendanceStatus `json:"status"`
	HoursWorked float64          `json:"hours_worked"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// AttendanceLogEntry joins a record with its owner for the admin log view.
type AttendanceLogEntry struct {
	AttendanceRecord
	User UserSummary `json:"user"`
}

// AttendanceFilter narrows the admin log query. Zero values mean "no filter".
type AttendanceFilter struct {
	UserID string
	Day    time.Time
	Status AttendanceStatus
}

// DayBounds returns the half-open local-midnight interval [start, end)
// containing t. All day-scoped attendance queries use these bounds.
func DayBounds(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// RoundHours converts an elapsed duration to fractional hours rounded to two
// decimal places. Negative durations clamp to zero.
func RoundHours(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return math.Round(d.Hours()*100) / 100
}

// StatusForHours derives the completed-day status from worked hours.
func StatusForHours(hours float64) AttendanceStatus {
	if hours >= FullDayHours {
		return StatusPresent
	}
	return StatusPartial
}
