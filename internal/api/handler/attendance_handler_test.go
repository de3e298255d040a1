package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/companyos/portal-api/internal/core/domain"
	"github.com/companyos/portal-api/internal/core/ports"
)

type stubAttendanceService struct {
	checkInFn      func(ctx context.Context, userID string) (time.Time, error)
	checkOutFn     func(ctx context.Context, userID string) (*ports.CheckOutResult, error)
	myAttendanceFn func(ctx context.Context, userID string, windowDays int) (*ports.MyAttendanceResult, error)
	logsFn         func(ctx context.Context, filter domain.AttendanceFilter) ([]*domain.AttendanceLogEntry, error)
}

func (s *stubAttendanceService) CheckIn(ctx context.Context, userID string) (time.Time, error) {
	return s.checkInFn(ctx, userID)
}

func (s *stubAttendanceService) CheckOut(ctx context.Context, userID string) (*ports.CheckOutResult, error) {
	return s.checkOutFn(ctx, userID)
}

func (s *stubAttendanceService) MyAttendance(ctx context.Context, userID string, windowDays int) (*ports.MyAttendanceResult, error) {
	return s.myAttendanceFn(ctx, userID, windowDays)
}

func (s *stubAttendanceService) Logs(ctx context.Context, filter domain.AttendanceFilter) ([]*domain.AttendanceLogEntry, error) {
	return s.logsFn(ctx, filter)
}

// identityContext builds a GET context carrying authenticated claims.
func identityContext(target, userID, role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set("user_id", userID)
		c.Set("role", role)
	}
	return c, rec
}

func TestAttendanceHandler_CheckIn(t *testing.T) {
	when := time.Date(2026, 8, 28, 9, 0, 0, 0, time.Local)
	stub := &stubAttendanceService{
		checkInFn: func(ctx context.Context, userID string) (time.Time, error) {
			if userID != "user1" {
				t.Fatalf("unexpected user: %s", userID)
			}
			return when, nil
		},
	}
	handler := NewAttendanceHandler(stub)

	c, rec := identityContext("/attendance/check-in", "user1", domain.RoleEmployee)
	if err := handler.CheckIn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] != "Checked in successfully" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
}

func TestAttendanceHandler_CheckIn_Conflict(t *testing.T) {
	stub := &stubAttendanceService{
		checkInFn: func(ctx context.Context, userID string) (time.Time, error) {
			return time.Time{}, domain.ErrAlreadyCheckedIn
		},
	}
	handler := NewAttendanceHandler(stub)

	c, _ := identityContext("/attendance/check-in", "user1", domain.RoleEmployee)
	if err := handler.CheckIn(c); !errors.Is(err, domain.ErrAlreadyCheckedIn) {
		t.Fatalf("expected ErrAlreadyCheckedIn, got %v", err)
	}
}

func TestAttendanceHandler_MissingClaims(t *testing.T) {
	stub := &stubAttendanceService{
		checkInFn: func(ctx context.Context, userID string) (time.Time, error) {
			t.Fatalf("should not be called")
			return time.Time{}, nil
		},
	}
	handler := NewAttendanceHandler(stub)

	c, _ := identityContext("/attendance/check-in", "", "")
	err := handler.CheckIn(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAttendanceHandler_CheckOut(t *testing.T) {
	stub := &stubAttendanceService{
		checkOutFn: func(ctx context.Context, userID string) (*ports.CheckOutResult, error) {
			return &ports.CheckOutResult{
				CheckOutTime: time.Date(2026, 8, 28, 17, 30, 0, 0, time.Local),
				HoursWorked:  8.5,
				Status:       domain.StatusPresent,
			}, nil
		},
	}
	handler := NewAttendanceHandler(stub)

	c, rec := identityContext("/attendance/check-out", "user1", domain.RoleEmployee)
	if err := handler.CheckOut(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["hoursWorked"] != 8.5 {
		t.Fatalf("hoursWorked = %v, want 8.5", resp["hoursWorked"])
	}
}

func TestAttendanceHandler_Logs_Filters(t *testing.T) {
	var got domain.AttendanceFilter
	stub := &stubAttendanceService{
		logsFn: func(ctx context.Context, filter domain.AttendanceFilter) ([]*domain.AttendanceLogEntry, error) {
			got = filter
			return nil, nil
		},
	}
	handler := NewAttendanceHandler(stub)

	c, rec := identityContext("/attendance/logs?employee=user7&date=2026-08-28&status=partial", "admin1", domain.RoleAdmin)
	if err := handler.Logs(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.UserID != "user7" {
		t.Errorf("filter user = %q", got.UserID)
	}
	if got.Status != domain.StatusPartial {
		t.Errorf("filter status = %q", got.Status)
	}
	want := time.Date(2026, 8, 28, 0, 0, 0, 0, time.Local)
	if !got.Day.Equal(want) {
		t.Errorf("filter day = %v, want %v", got.Day, want)
	}

	// A nil result renders as an empty array, not null.
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("body = %q, want empty array", body)
	}
}

func TestAttendanceHandler_Logs_AllSentinels(t *testing.T) {
	var got domain.AttendanceFilter
	stub := &stubAttendanceService{
		logsFn: func(ctx context.Context, filter domain.AttendanceFilter) ([]*domain.AttendanceLogEntry, error) {
			got = filter
			return []*domain.AttendanceLogEntry{}, nil
		},
	}
	handler := NewAttendanceHandler(stub)

	c, _ := identityContext("/attendance/logs?employee=all&status=all", "admin1", domain.RoleAdmin)
	if err := handler.Logs(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.UserID != "" || got.Status != "" || !got.Day.IsZero() {
		t.Errorf("sentinel values leaked into filter: %+v", got)
	}
}

func TestAttendanceHandler_Logs_BadDate(t *testing.T) {
	stub := &stubAttendanceService{
		logsFn: func(ctx context.Context, filter domain.AttendanceFilter) ([]*domain.AttendanceLogEntry, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAttendanceHandler(stub)

	c, _ := identityContext("/attendance/logs?date=28-08-2026", "admin1", domain.RoleAdmin)
	err := handler.Logs(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
