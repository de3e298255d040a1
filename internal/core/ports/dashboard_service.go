package ports

import "context"

// DashboardStats are the portal landing-page counters.
type DashboardStats struct {
	TotalEmployees  int64 `json:"totalEmployees"`
	EmailsSent      int64 `json:"emailsSent"`
	AttendanceToday int64 `json:"attendanceToday"`
	PendingTasks    int64 `json:"pendingTasks"`
}

type DashboardService interface {
	Stats(ctx context.Context) (*DashboardStats, error)
}
