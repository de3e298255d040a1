// Package mail provides ports.Mailer implementations. SMTPMailer talks to a
// real relay; NoopMailer simulates delivery when no relay is configured.
package mail

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPConfig captures the relay settings.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Configured reports whether enough settings exist to reach a relay.
func (c SMTPConfig) Configured() bool {
	return c.User != "" && c.Pass != ""
}

// SMTPMailer delivers mail over a plain SMTP relay with AUTH.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth: smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host),
		from: from,
	}
}

func (m *SMTPMailer) Deliver(ctx context.Context, to, subject, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id, err := messageID()
	if err != nil {
		return "", err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "Message-ID: <%s>\r\n", id)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}
	return id, nil
}

func messageID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("message id: %w", err)
	}
	return fmt.Sprintf("%x@portal-api", b), nil
}
