package ports

import (
	"context"

	"github.com/companyos/portal-api/internal/core/domain"
)

// Mailer is the injected notification channel. The core never depends on a
// concrete transport; delivery failures are reported, not panicked.
type Mailer interface {
	// Deliver sends one message and returns a transport message id.
	Deliver(ctx context.Context, to, subject, body string) (string, error)
}

// EmailJob is one recipient delivery handed to the dispatcher. The outcome is
// reported on Results exactly once per job.
type EmailJob struct {
	Recipient domain.EmailRecipient
	Subject   string
	Body      string
	Results   chan<- domain.DeliveryResult
}

// EmailDispatcher fans delivery jobs out to its worker pool. Jobs for the
// same recipient are processed in enqueue order.
type EmailDispatcher interface {
	Enqueue(job EmailJob)
}

// OTPThrottle bounds how often recovery codes may be issued per email.
type OTPThrottle interface {
	// Allow reports whether an OTP may be issued for email right now, and
	// opens the throttle window when it is.
	Allow(ctx context.Context, email string) (bool, error)
}
