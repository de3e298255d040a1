package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/companyos/portal-api/internal/core/domain"
	"github.com/companyos/portal-api/internal/core/ports"
)

func newEmailFixture(t *testing.T) (*EmailService, *stubUserRepo, *stubEmailRepo, *stubMailer) {
	t.Helper()
	users := newStubUserRepo()
	history := newStubEmailRepo()
	mailer := newStubMailer()
	templates := &stubTemplateRepo{sets: map[string]map[string]domain.EmailTemplate{
		"buss1": {"welcome": {Subject: "Welcome to the Team!", Content: "Glad to have you."}},
	}}
	svc := NewEmailService(users, history, templates, &stubDispatcher{mailer: mailer}, zerolog.Nop())
	return svc, users, history, mailer
}

func TestEmailService_SendBulk(t *testing.T) {
	svc, users, history, mailer := newEmailFixture(t)
	ctx := context.Background()

	admin := seedUser(t, users, "admin@company.com", "pw", domain.RoleAdmin)
	seedUser(t, users, "a@company.com", "pw", domain.RoleEmployee)
	seedUser(t, users, "b@company.com", "pw", domain.RoleEmployee)

	res, err := svc.SendBulk(ctx, ports.SendBulkInput{
		SenderID: admin.ID,
		Business: "platform",
		Subject:  "Town hall",
		Content:  "Friday at 15:00.",
	})
	if err != nil {
		t.Fatalf("SendBulk: %v", err)
	}
	if res.TotalRecipients != 2 || res.SuccessCount != 2 || res.FailureCount != 0 {
		t.Errorf("result = %+v, want 2/2/0", res)
	}

	sent := mailer.deliveries()
	if len(sent) != 2 {
		t.Fatalf("deliveries = %d, want 2", len(sent))
	}
	// The sender does not receive their own mailing.
	for _, m := range sent {
		if m.To == "admin@company.com" {
			t.Error("sender received the bulk mailing")
		}
		if !strings.Contains(m.Body, "Friday at 15:00.") {
			t.Errorf("body missing content: %q", m.Body)
		}
		if !strings.Contains(m.Body, "Sent by Test User via Company Dashboard System") {
			t.Errorf("body missing sender footer: %q", m.Body)
		}
	}

	logs, err := history.History(ctx, domain.EmailHistoryFilter{})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("history entries = %d, want 1", len(logs))
	}
	entry := logs[0]
	if entry.RecipientCount != 2 || len(entry.Results) != 2 {
		t.Errorf("history entry = %+v", entry)
	}
	if entry.Sender.ID != admin.ID {
		t.Errorf("history sender = %q, want %q", entry.Sender.ID, admin.ID)
	}
}

func TestEmailService_SendBulk_PartialFailure(t *testing.T) {
	svc, users, history, mailer := newEmailFixture(t)
	ctx := context.Background()

	admin := seedUser(t, users, "admin@company.com", "pw", domain.RoleAdmin)
	seedUser(t, users, "a@company.com", "pw", domain.RoleEmployee)
	seedUser(t, users, "b@company.com", "pw", domain.RoleEmployee)
	mailer.failFor["b@company.com"] = errors.New("mailbox full")

	res, err := svc.SendBulk(ctx, ports.SendBulkInput{
		SenderID: admin.ID,
		Subject:  "Update",
		Content:  "hello",
	})
	if err != nil {
		t.Fatalf("SendBulk: %v", err)
	}
	if res.SuccessCount != 1 || res.FailureCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", res.SuccessCount, res.FailureCount)
	}

	var failed *domain.DeliveryResult
	for i := range res.Results {
		if !res.Results[i].Success {
			failed = &res.Results[i]
		}
	}
	if failed == nil {
		t.Fatal("no failed result recorded")
	}
	if failed.Recipient != "b@company.com" || failed.Error == "" {
		t.Errorf("failed result = %+v", failed)
	}

	// A partially failed mailing still lands in history.
	logs, err := history.History(ctx, domain.EmailHistoryFilter{})
	if err != nil || len(logs) != 1 {
		t.Fatalf("history entries = %d (err %v), want 1", len(logs), err)
	}
}

func TestEmailService_SendBulk_NoRecipients(t *testing.T) {
	svc, users, history, _ := newEmailFixture(t)
	ctx := context.Background()

	admin := seedUser(t, users, "admin@company.com", "pw", domain.RoleAdmin)

	_, err := svc.SendBulk(ctx, ports.SendBulkInput{SenderID: admin.ID, Subject: "x", Content: "y"})
	if !errors.Is(err, domain.ErrNoRecipients) {
		t.Fatalf("err = %v, want ErrNoRecipients", err)
	}
	if logs, _ := history.History(ctx, domain.EmailHistoryFilter{}); len(logs) != 0 {
		t.Error("history written for empty mailing")
	}
}

func TestEmailService_Template(t *testing.T) {
	svc, _, _, _ := newEmailFixture(t)
	ctx := context.Background()

	tpl, err := svc.Template(ctx, "buss1", "welcome")
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	if tpl.Subject != "Welcome to the Team!" {
		t.Errorf("subject = %q", tpl.Subject)
	}

	// Empty business falls back to the default unit.
	if _, err := svc.Template(ctx, "", "welcome"); err != nil {
		t.Errorf("default business lookup: %v", err)
	}

	if _, err := svc.Template(ctx, "buss1", "farewell"); !errors.Is(err, domain.ErrTemplateNotFound) {
		t.Errorf("unknown name err = %v, want ErrTemplateNotFound", err)
	}
	if _, err := svc.Template(ctx, "buss9", "welcome"); !errors.Is(err, domain.ErrTemplateNotFound) {
		t.Errorf("unknown business err = %v, want ErrTemplateNotFound", err)
	}
}

func TestEmailService_SendBulk_UnknownSender(t *testing.T) {
	svc, users, _, _ := newEmailFixture(t)
	seedUser(t, users, "a@company.com", "pw", domain.RoleEmployee)

	_, err := svc.SendBulk(context.Background(), ports.SendBulkInput{SenderID: "ghost", Subject: "x", Content: "y"})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}
