package domain

import (
	"errors"
	"time"
)

var ErrDeliveryFailed = errors.New("email delivery failed")
var ErrNoRecipients = errors.New("no recipients found")
var ErrEmailLogNotFound = errors.New("email log not found")
var ErrTemplateNotFound = errors.New("email template not found")

// DefaultBusiness is the business unit assumed when a caller names none.
const DefaultBusiness = "buss1"

// EmailTemplate is a canned subject+content pair, kept per business unit.
type EmailTemplate struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
}

// EmailRecipient is one addressee of a bulk mailing.
type EmailRecipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DeliveryResult records the outcome of one recipient delivery attempt.
type DeliveryResult struct {
	Recipient string `json:"recipient"`
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// EmailLog is the persisted history entry for one bulk mailing.
type EmailLog struct {
	ID             string           `json:"id"`
	Sender         UserSummary      `json:"sender"`
	Business       string           `json:"business"`
	Subject        string           `json:"subject"`
	Content        string           `json:"content"`
	Recipients     []EmailRecipient `json:"recipients"`
	RecipientCount int              `json:"recipient_count"`
	SentAt         time.Time        `json:"sent_at"`
	Results        []DeliveryResult `json:"results"`
}

// EmailHistoryFilter narrows the admin history query. Zero values mean
// "no filter"; Sender matches the sender name case-insensitively.
type EmailHistoryFilter struct {
	Business string
	Sender   string
	From     time.Time
	To       time.Time
}
