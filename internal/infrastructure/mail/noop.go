package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// NoopMailer logs messages instead of sending them. Used when no SMTP relay
// is configured so non-production environments stay fully operable.
type NoopMailer struct {
	logger zerolog.Logger
}

func NewNoopMailer(logger zerolog.Logger) *NoopMailer {
	return &NoopMailer{logger: logger}
}

func (m *NoopMailer) Deliver(_ context.Context, to, subject, body string) (string, error) {
	id := fmt.Sprintf("simulated-%d", time.Now().UnixNano())
	m.logger.Info().
		Str("to", to).
		Str("subject", subject).
		Int("body_bytes", len(body)).
		Str("message_id", id).
		Msg("simulated email (no SMTP configured)")
	return id, nil
}
