package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/companyos/portal-api/internal/pkg/metrics"
	"github.com/companyos/portal-api/internal/core/domain"
	"github.com/companyos/portal-api/internal/core/ports"
)

const recentWindowDays = 7

type AttendanceHandler struct {
	attendanceService ports.AttendanceService
}

func NewAttendanceHandler(attendanceService ports.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

type checkInResponse struct {
	Message     string    `json:"message"`
	CheckInTime time.Time `json:"checkInTime"`
}

type checkOutResponse struct {
	Message      string    `json:"message"`
	CheckOutTime time.Time `json:"checkOutTime"`
	HoursWorked  float64   `json:"hoursWorked"`
}

type myAttendanceResponse struct {
	Today  *domain.AttendanceRecord   `json:"today"`
	Recent []*domain.AttendanceRecord `json:"recent"`
}

// CheckIn stamps the start of the employee's working day.
//
// @Summary      Check in for today
// @Tags         attendance
// @Produce      json
// @Success      200  {object}  checkInResponse
// @Failure      400  {object}  map[string]string
// @Router       /attendance/check-in [post]
func (h *AttendanceHandler) CheckIn(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	checkedIn, err := h.attendanceService.CheckIn(c.Request().Context(), userID)
	if err != nil {
		metrics.AttendanceEventsTotal.WithLabelValues("check_in", "conflict").Inc()
		return err
	}
	metrics.AttendanceEventsTotal.WithLabelValues("check_in", "ok").Inc()

	return c.JSON(http.StatusOK, checkInResponse{
		Message:     "Checked in successfully",
		CheckInTime: checkedIn,
	})
}

// CheckOut stamps the end of the working day and derives hours and status.
//
// @Summary      Check out for today
// @Tags         attendance
// @Produce      json
// @Success      200  {object}  checkOutResponse
// @Failure      400  {object}  map[string]string
// @Router       /attendance/check-out [post]
func (h *AttendanceHandler) CheckOut(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	res, err := h.attendanceService.CheckOut(c.Request().Context(), userID)
	if err != nil {
		metrics.AttendanceEventsTotal.WithLabelValues("check_out", "conflict").Inc()
		return err
	}
	metrics.AttendanceEventsTotal.WithLabelValues("check_out", "ok").Inc()

	return c.JSON(http.StatusOK, checkOutResponse{
		Message:      "Checked out successfully",
		CheckOutTime: res.CheckOutTime,
		HoursWorked:  res.HoursWorked,
	})
}

// MyAttendance returns today's record and the trailing week.
//
// @Summary      My attendance
// @Tags         attendance
// @Produce      json
// @Success      200  {object}  myAttendanceResponse
// @Router       /attendance/mine [get]
func (h *AttendanceHandler) MyAttendance(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	res, err := h.attendanceService.MyAttendance(c.Request().Context(), userID, recentWindowDays)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, myAttendanceResponse{Today: res.Today, Recent: res.Recent})
}

// Logs is the admin view joining attendance to employee identities.
//
// @Summary      Attendance logs
// @Tags         attendance
// @Produce      json
// @Param        employee  query  string  false  "Employee id, or 'all'"
// @Param        date      query  string  false  "Calendar day (YYYY-MM-DD)"
// @Param        status    query  string  false  "present|partial|absent, or 'all'"
// @Success      200  {array}  domain.AttendanceLogEntry
// @Router       /attendance/logs [get]
func (h *AttendanceHandler) Logs(c echo.Context) error {
	filter := domain.AttendanceFilter{}

	if employee := c.QueryParam("employee"); employee != "" && employee != "all" {
		filter.UserID = employee
	}
	if date := c.QueryParam("date"); date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		filter.Day = day
	}
	if status := c.QueryParam("status"); status != "" && status != "all" {
		filter.Status = domain.AttendanceStatus(status)
	}

	entries, err := h.attendanceService.Logs(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []*domain.AttendanceLogEntry{}
	}

	return c.JSON(http.StatusOK, entries)
}
