// Package metrics defines and registers all custom Prometheus metrics for the
// portal API. It is the single source of truth for metric names, labels, and
// help strings. promauto registers everything with the default registry at
// package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok" or "rejected"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// OTPIssuedTotal counts recovery codes issued (excludes throttled requests).
var OTPIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_issued_total",
		Help:      "Total number of password-recovery codes issued.",
	},
)

// OTPConsumedTotal counts reset-password consume attempts.
// Label:
//   - result: "ok" or "invalid"
var OTPConsumedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_consumed_total",
		Help:      "Total number of OTP consume attempts, by result.",
	},
	[]string{"result"},
)

// ── Attendance metrics ────────────────────────────────────────────────────────

// AttendanceEventsTotal counts check-in/check-out attempts.
// Labels:
//   - action: "check_in" or "check_out"
//   - result: "ok" or "conflict"
var AttendanceEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attendance_events_total",
		Help:      "Total number of attendance transitions attempted, by action and result.",
	},
	[]string{"action", "result"},
)

// ── Email metrics ─────────────────────────────────────────────────────────────

// EmailsDeliveredTotal counts individual recipient deliveries.
// Label:
//   - result: "ok" or "error"
var EmailsDeliveredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_delivered_total",
		Help:      "Total number of per-recipient email deliveries, by result.",
	},
	[]string{"result"},
)

// EmailDeliveryDuration measures one recipient delivery end-to-end.
// Label:
//   - result: "ok" or "error"
var EmailDeliveryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "email_delivery_duration_seconds",
		Help:      "Duration of a single email delivery attempt.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)
