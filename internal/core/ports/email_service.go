package ports

import (
	"context"

	"github.com/companyos/portal-api/internal/core/domain"
)

// SendBulkInput is one bulk-mailing request from an admin or HR sender.
type SendBulkInput struct {
	SenderID string
	Business string
	Subject  string
	Content  string
}

// SendBulkResult summarizes a completed mailing.
type SendBulkResult struct {
	TotalRecipients int                     `json:"total_recipients"`
	SuccessCount    int                     `json:"success_count"`
	FailureCount    int                     `json:"failure_count"`
	Results         []domain.DeliveryResult `json:"results"`
}

type EmailService interface {
	// SendBulk fans the mailing out to every employee recipient, waits for
	// all deliveries, and records a history entry with per-recipient results.
	SendBulk(ctx context.Context, in SendBulkInput) (*SendBulkResult, error)
	History(ctx context.Context, filter domain.EmailHistoryFilter) ([]*domain.EmailLog, error)
	// Template returns the canned subject+content for a business unit, or
	// domain.ErrTemplateNotFound.
	Template(ctx context.Context, business, name string) (*domain.EmailTemplate, error)
}
