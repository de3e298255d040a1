package ports

import (
	"context"
	"time"

	"github.com/companyos/portal-api/internal/core/domain"
)

// EmailRepository persists bulk-mailing history entries.
type EmailRepository interface {
	Insert(ctx context.Context, log *domain.EmailLog) error
	// History returns mailings matching the filter, newest first.
	History(ctx context.Context, filter domain.EmailHistoryFilter) ([]*domain.EmailLog, error)
	CountSentSince(ctx context.Context, since time.Time) (int64, error)
}

// EmailTemplateRepository resolves canned mailings by business unit and
// template name. An unknown business or name surfaces as
// domain.ErrTemplateNotFound.
type EmailTemplateRepository interface {
	Find(ctx context.Context, business, name string) (*domain.EmailTemplate, error)
}
