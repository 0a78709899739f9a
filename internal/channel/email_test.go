package channel

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/qoldai/helpdesk/internal/ai"
	"github.com/qoldai/helpdesk/internal/config"
	"github.com/qoldai/helpdesk/internal/domain"
	"github.com/qoldai/helpdesk/internal/events"
	"github.com/qoldai/helpdesk/internal/faq"
	"github.com/qoldai/helpdesk/internal/notify"
	"github.com/qoldai/helpdesk/internal/observability"
	"github.com/qoldai/helpdesk/internal/repository"
	"github.com/qoldai/helpdesk/internal/service"
)

type memTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
}

func (r *memTicketRepo) Create(_ context.Context, t *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *t
	r.tickets[t.ID] = &clone
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *t
	return &clone, nil
}

func (r *memTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, t := range r.tickets {
		if filter.ClientID != "" && t.ClientID != filter.ClientID {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *memTicketRepo) Update(_ context.Context, t *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *t
	r.tickets[t.ID] = &clone
	return nil
}

func (r *memTicketRepo) UpdateSummary(_ context.Context, id, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.Summary = &summary
	return nil
}

func (r *memTicketRepo) Stats(_ context.Context) (*repository.TicketStats, error) {
	return &repository.TicketStats{}, nil
}

type memMessageRepo struct {
	mu       sync.Mutex
	messages []domain.TicketMessage
	tickets  *memTicketRepo
}

func (r *memMessageRepo) Create(_ context.Context, m *domain.TicketMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, *m)
	return nil
}

func (r *memMessageRepo) CreateWithStatus(ctx context.Context, m *domain.TicketMessage, newStatus *domain.TicketStatus) error {
	if err := r.Create(ctx, m); err != nil {
		return err
	}
	if newStatus == nil {
		return nil
	}
	r.tickets.mu.Lock()
	defer r.tickets.mu.Unlock()
	t, ok := r.tickets.tickets[m.TicketID]
	if !ok {
		return pgx.ErrNoRows
	}
	t.Status = *newStatus
	return nil
}

func (r *memMessageRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TicketMessage
	for _, m := range r.messages {
		if m.TicketID == ticketID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMessageRepo) ListRecent(ctx context.Context, ticketID string, limit int) ([]domain.TicketMessage, error) {
	all, err := r.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func (r *memUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *u
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memDepartmentRepo struct{}

func (memDepartmentRepo) ListActive(_ context.Context) ([]domain.Department, error) {
	return nil, nil
}

type memDedup struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (d *memDedup) MarkSeen(_ context.Context, id string, _ time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen[id] {
		return false, nil
	}
	d.seen[id] = true
	return true, nil
}

type captureSink struct {
	mu   sync.Mutex
	sent []notify.OutboundEmail
}

func (s *captureSink) Send(_ context.Context, email notify.OutboundEmail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, email)
	return nil
}

type stubClassifier struct{}

func (stubClassifier) Classify(_ context.Context, _, _ string) (ai.ClassificationResult, error) {
	return ai.DefaultClassification(), nil
}

type emailEnv struct {
	channel  *EmailChannel
	feed     *MemoryFeed
	tickets  *memTicketRepo
	messages *memMessageRepo
	users    *memUserRepo
	sink     *captureSink
}

func newEmailEnv(t *testing.T) *emailEnv {
	t.Helper()
	tickets := &memTicketRepo{tickets: make(map[string]*domain.Ticket)}
	messages := &memMessageRepo{tickets: tickets}
	users := &memUserRepo{users: make(map[string]*domain.User)}
	logger := zap.NewNop()
	dispatcher := events.NewDispatcher(logger)

	intake := service.NewIntakeService(service.IntakeDependencies{
		Tickets:     tickets,
		Messages:    messages,
		Users:       users,
		Departments: memDepartmentRepo{},
		Classifier:  stubClassifier{},
		FAQ:         faq.NewMatcher(faq.DefaultEntries()),
		Dispatcher:  dispatcher,
		Metrics:     observability.NewMetrics(),
		Logger:      logger,
	}, config.IntakeConfig{BotEmail: "bot@qoldai.kz", SLAHours: 24, AutoResolveAt: 0.85})

	msgSvc := service.NewMessageService(tickets, messages, dispatcher, logger)
	feed := NewMemoryFeed()
	sink := &captureSink{}

	ch := NewEmailChannel(EmailChannelOptions{
		Feed:     feed,
		Dedup:    &memDedup{seen: make(map[string]bool)},
		DedupTTL: time.Hour,
		Users:    users,
		Tickets:  tickets,
		Intake:   intake,
		Messages: msgSvc,
		Sink:     sink,
		Logger:   logger,
	})
	return &emailEnv{channel: ch, feed: feed, tickets: tickets, messages: messages, users: users, sink: sink}
}

func TestEmailCreatesTicketAndConfirms(t *testing.T) {
	env := newEmailEnv(t)
	env.feed.Enqueue(InboundEmail{
		MessageID: "<m1@mail>",
		From:      "ivan@example.kz",
		FromName:  "Иван",
		Subject:   "Проблема с доступом",
		Text:      "Здравствуйте, не могу зайти в кабинет",
	})

	handled, err := env.channel.Process(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if handled != 1 {
		t.Fatalf("handled = %d", handled)
	}

	all, _ := env.tickets.List(context.Background(), repository.TicketFilter{})
	if len(all) != 1 {
		t.Fatalf("tickets = %d", len(all))
	}
	ticket := all[0]
	if ticket.Channel != domain.TicketChannelEmail {
		t.Fatalf("channel = %s", ticket.Channel)
	}
	if ticket.Language != domain.LanguageRU {
		t.Fatalf("language = %s", ticket.Language)
	}

	user, err := env.users.GetByEmail(context.Background(), "ivan@example.kz")
	if err != nil {
		t.Fatalf("sender account not created: %v", err)
	}
	if user.Name != "Иван" || user.Role != domain.UserRoleClient {
		t.Fatalf("user = %+v", user)
	}

	if len(env.sink.sent) != 1 {
		t.Fatalf("confirmations = %d", len(env.sink.sent))
	}
	if got := domain.ExtractTicketID(env.sink.sent[0].Subject); got != ticket.ID {
		t.Fatalf("confirmation subject %q lacks correlation tag", env.sink.sent[0].Subject)
	}
}

func TestEmailReplyAppendsAndTransitions(t *testing.T) {
	env := newEmailEnv(t)
	ctx := context.Background()

	if err := env.users.Create(ctx, &domain.User{
		ID: "client-1", Email: "anna@example.kz", Role: domain.UserRoleClient,
	}); err != nil {
		t.Fatal(err)
	}
	ticket := &domain.Ticket{
		ID:       "11111111-2222-3333-4444-555555555555",
		Subject:  "Оплата",
		Status:   domain.TicketStatusWaitingClient,
		Priority: domain.TicketPriorityMedium,
		Channel:  domain.TicketChannelEmail,
		Language: domain.LanguageRU,
		ClientID: "client-1",
	}
	if err := env.tickets.Create(ctx, ticket); err != nil {
		t.Fatal(err)
	}

	env.feed.Enqueue(InboundEmail{
		MessageID: "<m2@mail>",
		From:      "anna@example.kz",
		Subject:   "Re: " + domain.FormatTicketTag(ticket.ID) + " Оплата",
		Text:      "Прикладываю квитанцию",
	})
	if _, err := env.channel.Process(ctx); err != nil {
		t.Fatal(err)
	}

	stored, _ := env.tickets.GetByID(ctx, ticket.ID)
	if stored.Status != domain.TicketStatusWaitingOperator {
		t.Fatalf("status = %s, want WAITING_OPERATOR", stored.Status)
	}
	msgs, _ := env.messages.ListByTicket(ctx, ticket.ID)
	if len(msgs) != 1 || msgs[0].Content != "Прикладываю квитанцию" {
		t.Fatalf("messages = %+v", msgs)
	}
	// Correlated replies get no confirmation mail.
	if len(env.sink.sent) != 0 {
		t.Fatalf("unexpected outbound mail: %+v", env.sink.sent)
	}
}

func TestEmailDuplicateMessageIDSkipped(t *testing.T) {
	env := newEmailEnv(t)
	ctx := context.Background()

	email := InboundEmail{
		MessageID: "<dup@mail>",
		From:      "bob@example.com",
		Subject:   "Question about pricing",
		Text:      "What does the pro plan cost",
	}
	env.feed.Enqueue(email)
	env.feed.Enqueue(email)
	if _, err := env.channel.Process(ctx); err != nil {
		t.Fatal(err)
	}

	all, _ := env.tickets.List(ctx, repository.TicketFilter{})
	if len(all) != 1 {
		t.Fatalf("duplicate delivery created %d tickets", len(all))
	}
}

func TestEmailUnknownTagFallsThrough(t *testing.T) {
	env := newEmailEnv(t)
	ctx := context.Background()

	env.feed.Enqueue(InboundEmail{
		MessageID: "<m3@mail>",
		From:      "eva@example.kz",
		Subject:   "Re: [Ticket #aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee] старый вопрос",
		Text:      "Вопрос всё ещё актуален",
	})
	if _, err := env.channel.Process(ctx); err != nil {
		t.Fatal(err)
	}

	all, _ := env.tickets.List(ctx, repository.TicketFilter{})
	if len(all) != 1 {
		t.Fatalf("unresolvable tag should open a new ticket, got %d", len(all))
	}
}

func TestEmailBodyTruncated(t *testing.T) {
	env := newEmailEnv(t)
	ctx := context.Background()

	env.feed.Enqueue(InboundEmail{
		MessageID: "<m4@mail>",
		From:      "long@example.com",
		Subject:   "Very long report",
		Text:      strings.Repeat("x", 7000),
	})
	if _, err := env.channel.Process(ctx); err != nil {
		t.Fatal(err)
	}

	all, _ := env.tickets.List(ctx, repository.TicketFilter{})
	if len(all) != 1 {
		t.Fatalf("tickets = %d", len(all))
	}
	if got := len([]rune(all[0].Description)); got != 5000 {
		t.Fatalf("description length = %d, want 5000", got)
	}
}
