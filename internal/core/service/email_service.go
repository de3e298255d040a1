package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/companyos/portal-api/internal/core/domain"
	"github.com/companyos/portal-api/internal/core/ports"
)

// EmailService composes bulk mailings, fans them out through the dispatcher,
// and records a history entry with per-recipient outcomes.
type EmailService struct {
	users      ports.UserRepository
	history    ports.EmailRepository
	templates  ports.EmailTemplateRepository
	dispatcher ports.EmailDispatcher
	logger     zerolog.Logger
}

func NewEmailService(users ports.UserRepository, history ports.EmailRepository, templates ports.EmailTemplateRepository, dispatcher ports.EmailDispatcher, logger zerolog.Logger) *EmailService {
	return &EmailService{users: users, history: history, templates: templates, dispatcher: dispatcher, logger: logger}
}

func (s *EmailService) SendBulk(ctx context.Context, in ports.SendBulkInput) (*ports.SendBulkResult, error) {
	sender, err := s.users.FindByID(ctx, in.SenderID)
	if err != nil {
		return nil, err
	}

	// Business filtering reduces to "all employees" until business units
	// carry their own membership lists.
	recipients, err := s.users.ListEmployeeRecipients(ctx)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, domain.ErrNoRecipients
	}

	body := fmt.Sprintf("%s\n\nSent by %s via Company Dashboard System", in.Content, sender.Name)

	results := make(chan domain.DeliveryResult, len(recipients))
	for _, r := range recipients {
		s.dispatcher.Enqueue(ports.EmailJob{
			Recipient: r,
			Subject:   in.Subject,
			Body:      body,
			Results:   results,
		})
	}

	collected := make([]domain.DeliveryResult, 0, len(recipients))
	for range recipients {
		select {
		case res := <-results:
			collected = append(collected, res)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	success, failure := 0, 0
	for _, res := range collected {
		if res.Success {
			success++
		} else {
			failure++
		}
	}

	log := &domain.EmailLog{
		Sender:         sender.Summary(),
		Business:       in.Business,
		Subject:        in.Subject,
		Content:        in.Content,
		Recipients:     recipients,
		RecipientCount: len(recipients),
		SentAt:         time.Now(),
		Results:        collected,
	}
	if err := s.history.Insert(ctx, log); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("sender_id", in.SenderID).
		Int("recipients", len(recipients)).
		Int("failures", failure).
		Msg("bulk email completed")

	return &ports.SendBulkResult{
		TotalRecipients: len(recipients),
		SuccessCount:    success,
		FailureCount:    failure,
		Results:         collected,
	}, nil
}

func (s *EmailService) History(ctx context.Context, filter domain.EmailHistoryFilter) ([]*domain.EmailLog, error) {
	return s.history.History(ctx, filter)
}

func (s *EmailService) Template(ctx context.Context, business, name string) (*domain.EmailTemplate, error) {
	return s.templates.Find(ctx, business, name)
}
