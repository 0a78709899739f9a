package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/qoldai/helpdesk/internal/ai"
	"github.com/qoldai/helpdesk/internal/config"
	"github.com/qoldai/helpdesk/internal/domain"
	"github.com/qoldai/helpdesk/internal/events"
	"github.com/qoldai/helpdesk/internal/faq"
	"github.com/qoldai/helpdesk/internal/observability"
)

type intakeEnv struct {
	svc      *IntakeService
	tickets  *fakeTicketRepo
	messages *fakeMessageRepo
	users    *fakeUserRepo
	client   *domain.User
}

func newIntakeEnv(t *testing.T, classifier ai.Classifier, departments []domain.Department) *intakeEnv {
	t.Helper()
	tickets := newFakeTicketRepo()
	messages := newFakeMessageRepo(tickets)
	users := newFakeUserRepo()

	client := &domain.User{
		ID:    "client-1",
		Email: "client@example.kz",
		Name:  "Client",
		Role:  domain.UserRoleClient,
	}
	if err := users.Create(context.Background(), client); err != nil {
		t.Fatal(err)
	}

	svc := NewIntakeService(IntakeDependencies{
		Tickets:     tickets,
		Messages:    messages,
		Users:       users,
		Departments: &fakeDepartmentRepo{departments: departments},
		Classifier:  classifier,
		FAQ:         faq.NewMatcher(faq.DefaultEntries()),
		Dispatcher:  events.NewDispatcher(zap.NewNop()),
		Metrics:     observability.NewMetrics(),
		Logger:      zap.NewNop(),
	}, config.IntakeConfig{
		BotEmail:      "ai-bot@qoldai.kz",
		BotName:       "Bot",
		SLAHours:      24,
		AutoResolveAt: 0.85,
	})
	return &intakeEnv{svc: svc, tickets: tickets, messages: messages, users: users, client: client}
}

func TestCreateClassifierFailureDegrades(t *testing.T) {
	env := newIntakeEnv(t, &fakeClassifier{err: errors.New("upstream down")}, nil)

	result, err := env.svc.Create(context.Background(), CreateTicketInput{
		Subject:     "Вопрос по интеграции",
		Description: "Нужна помощь с настройкой вебхуков",
		ClientID:    env.client.ID,
	})
	if err != nil {
		t.Fatalf("classifier failure must not fail intake: %v", err)
	}

	ticket := result.Ticket
	if ticket.Status != domain.TicketStatusOpen {
		t.Fatalf("status = %s, want OPEN", ticket.Status)
	}
	if ticket.Priority != domain.TicketPriorityMedium {
		t.Fatalf("priority = %s, want MEDIUM", ticket.Priority)
	}
	if ticket.Language != domain.LanguageRU {
		t.Fatalf("language = %s, want RU", ticket.Language)
	}
	if result.AutoResolved {
		t.Fatal("degraded classification must never auto-resolve")
	}
}

func TestCreateFAQAutoResolves(t *testing.T) {
	// Classifier says no, FAQ match must still win.
	env := newIntakeEnv(t, &fakeClassifier{result: ai.ClassificationResult{
		Category:       "technical",
		Priority:       domain.TicketPriorityLow,
		Sentiment:      domain.SentimentNeutral,
		Language:       domain.LanguageRU,
		CanAutoResolve: false,
		Confidence:     0.4,
	}}, nil)

	result, err := env.svc.Create(context.Background(), CreateTicketInput{
		Subject:     "Забыл пароль",
		Description: "Не могу сбросить пароль от аккаунта",
		ClientID:    env.client.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	if !result.AutoResolved {
		t.Fatal("FAQ match should auto-resolve")
	}
	ticket := result.Ticket
	if ticket.Status != domain.TicketStatusResolved {
		t.Fatalf("status = %s, want RESOLVED", ticket.Status)
	}
	if ticket.ResolvedAt == nil {
		t.Fatal("resolvedAt must be stamped")
	}
	if ticket.Category == nil || *ticket.Category != "account" {
		t.Fatalf("category should come from the FAQ entry, got %v", ticket.Category)
	}
	if !strings.Contains(result.BotReply, "Восстановление пароля") {
		t.Fatalf("bot reply should carry the FAQ answer, got %q", result.BotReply)
	}

	msgs, _ := env.messages.ListByTicket(context.Background(), ticket.ID)
	if len(msgs) != 1 {
		t.Fatalf("expected one bot message, got %d", len(msgs))
	}
	if !msgs[0].IsAIGenerated {
		t.Fatal("bot message must be flagged as AI generated")
	}
	if !strings.Contains(msgs[0].Content, "автоматически решён AI-ассистентом") {
		t.Fatalf("bot message must carry the disclaimer, got %q", msgs[0].Content)
	}
}

func TestCreateAIAutoResolveThreshold(t *testing.T) {
	base := ai.ClassificationResult{
		Category:       "general",
		Priority:       domain.TicketPriorityMedium,
		Sentiment:      domain.SentimentNeutral,
		Language:       domain.LanguageEN,
		AutoReply:      "Here is how you do it.",
		CanAutoResolve: true,
	}

	confident := base
	confident.Confidence = 0.9
	env := newIntakeEnv(t, &fakeClassifier{result: confident}, nil)
	result, err := env.svc.Create(context.Background(), CreateTicketInput{
		Subject:     "How to export data",
		Description: "Where is the export button located",
		ClientID:    env.client.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.AutoResolved || result.BotReply != "Here is how you do it." {
		t.Fatalf("confident classification should auto-resolve, got %+v", result)
	}

	hesitant := base
	hesitant.Confidence = 0.7
	env = newIntakeEnv(t, &fakeClassifier{result: hesitant}, nil)
	result, err = env.svc.Create(context.Background(), CreateTicketInput{
		Subject:     "How to export data",
		Description: "Where is the export button located",
		ClientID:    env.client.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.AutoResolved {
		t.Fatal("below-threshold confidence must not auto-resolve")
	}
	if result.Ticket.Status != domain.TicketStatusOpen {
		t.Fatalf("status = %s, want OPEN", result.Ticket.Status)
	}
}

func TestCreateBelowThresholdKeepsReplyVerbatim(t *testing.T) {
	env := newIntakeEnv(t, &fakeClassifier{result: ai.ClassificationResult{
		Category:       "technical",
		Priority:       domain.TicketPriorityMedium,
		Sentiment:      domain.SentimentNeutral,
		Language:       domain.LanguageEN,
		AutoReply:      "Try restarting the sync job from the settings page.",
		CanAutoResolve: false,
		Confidence:     0.6,
	}}, nil)

	result, err := env.svc.Create(context.Background(), CreateTicketInput{
		Subject:     "Sync stopped working",
		Description: "The nightly sync has not run since Tuesday",
		ClientID:    env.client.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.AutoResolved || result.Ticket.Status != domain.TicketStatusOpen {
		t.Fatalf("low-confidence classification must leave the ticket open, got %+v", result)
	}

	// The drafted reply still reaches the client, word for word.
	msgs, _ := env.messages.ListByTicket(context.Background(), result.Ticket.ID)
	if len(msgs) != 1 {
		t.Fatalf("expected one bot message, got %d", len(msgs))
	}
	if msgs[0].Content != "Try restarting the sync job from the settings page." {
		t.Fatalf("bot message must be verbatim without disclaimer, got %q", msgs[0].Content)
	}
	if !msgs[0].IsAIGenerated {
		t.Fatal("bot message must be flagged as AI generated")
	}
	if result.Ticket.SuggestedReply == nil || *result.Ticket.SuggestedReply != "Try restarting the sync job from the settings page." {
		t.Fatalf("suggested reply = %v", result.Ticket.SuggestedReply)
	}
}

func TestCreateAutoResolvesWithoutReply(t *testing.T) {
	env := newIntakeEnv(t, &fakeClassifier{result: ai.ClassificationResult{
		Category:       "general",
		Priority:       domain.TicketPriorityLow,
		Sentiment:      domain.SentimentNeutral,
		Language:       domain.LanguageEN,
		AutoReply:      "",
		CanAutoResolve: true,
		Confidence:     0.95,
	}}, nil)

	result, err := env.svc.Create(context.Background(), CreateTicketInput{
		Subject:     "Question about pricing",
		Description: "Where can I find the current price list",
		ClientID:    env.client.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.AutoResolved || result.Ticket.Status != domain.TicketStatusResolved {
		t.Fatalf("confident classification must resolve even without a drafted reply, got %+v", result)
	}
	if result.Ticket.ResolvedAt == nil {
		t.Fatal("resolvedAt must be stamped")
	}

	msgs, _ := env.messages.ListByTicket(context.Background(), result.Ticket.ID)
	if len(msgs) != 0 {
		t.Fatalf("no drafted reply means no bot message, got %d", len(msgs))
	}
	if result.Ticket.SuggestedReply != nil {
		t.Fatalf("suggested reply = %q, want nil", *result.Ticket.SuggestedReply)
	}
}

func TestCreateDepartmentRouting(t *testing.T) {
	departments := []domain.Department{
		{ID: "d-bill", Name: "Billing", IsActive: true},
		{ID: "d-tech", Name: "Technical Support", IsActive: true},
	}
	env := newIntakeEnv(t, &fakeClassifier{result: ai.ClassificationResult{
		Category:            "technical",
		Priority:            domain.TicketPriorityHigh,
		Sentiment:           domain.SentimentNegative,
		Language:            domain.LanguageEN,
		SuggestedDepartment: "technical",
		Confidence:          0.8,
	}}, departments)

	result, err := env.svc.Create(context.Background(), CreateTicketInput{
		Subject:     "Integration broken",
		Description: "The webhook endpoint returns 500",
		ClientID:    env.client.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Ticket.DepartmentID == nil || *result.Ticket.DepartmentID != "d-tech" {
		t.Fatalf("department = %v, want d-tech", result.Ticket.DepartmentID)
	}
}

func TestCreateValidation(t *testing.T) {
	env := newIntakeEnv(t, &fakeClassifier{}, nil)
	if _, err := env.svc.Create(context.Background(), CreateTicketInput{
		Subject:  "  ",
		ClientID: env.client.ID,
	}); err == nil {
		t.Fatal("blank subject must be rejected")
	}
}

func TestCreateSLADeadline(t *testing.T) {
	env := newIntakeEnv(t, &fakeClassifier{err: errors.New("down")}, nil)
	before := time.Now().UTC()
	result, err := env.svc.Create(context.Background(), CreateTicketInput{
		Subject:     "Сроки",
		Description: "Когда ответит оператор",
		ClientID:    env.client.ID,
	})
	if err != nil {
		t.Fatal(err)
	}
	deadline := result.Ticket.SLADeadline
	if deadline.Before(before.Add(23*time.Hour)) || deadline.After(before.Add(25*time.Hour)) {
		t.Fatalf("sla deadline %v not near createdAt+24h", deadline)
	}
}

func TestCreateFromCall(t *testing.T) {
	env := newIntakeEnv(t, &fakeClassifier{}, nil)

	ticket, err := env.svc.CreateFromCall(context.Background(), env.client.ID, "+77011234567", true)
	if err != nil {
		t.Fatal(err)
	}
	if ticket.Channel != domain.TicketChannelPhone {
		t.Fatalf("channel = %s, want PHONE", ticket.Channel)
	}
	if ticket.Priority != domain.TicketPriorityHigh {
		t.Fatalf("missed call priority = %s, want HIGH", ticket.Priority)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Fatalf("status = %s, want OPEN", ticket.Status)
	}
	if !strings.Contains(ticket.Subject, "Пропущенный звонок") {
		t.Fatalf("subject = %q", ticket.Subject)
	}
}
