package service

import (
	"context"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/qoldai/helpdesk/internal/ai"
	"github.com/qoldai/helpdesk/internal/domain"
	"github.com/qoldai/helpdesk/internal/repository"
)

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (r *fakeTicketRepo) Create(_ context.Context, t *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *t
	r.tickets[t.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *t
	return &clone, nil
}

func (r *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, t := range r.tickets {
		if filter.ClientID != "" && t.ClientID != filter.ClientID {
			continue
		}
		if len(filter.Statuses) > 0 {
			found := false
			for _, s := range filter.Statuses {
				if t.Status == s {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTicketRepo) Update(_ context.Context, t *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *t
	r.tickets[t.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) UpdateSummary(_ context.Context, id, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.Summary = &summary
	return nil
}

func (r *fakeTicketRepo) Stats(_ context.Context) (*repository.TicketStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &repository.TicketStats{
		ByStatus:   make(map[domain.TicketStatus]int64),
		ByPriority: make(map[domain.TicketPriority]int64),
		ByChannel:  make(map[domain.TicketChannel]int64),
		ByLanguage: make(map[domain.Language]int64),
	}
	for _, t := range r.tickets {
		stats.Total++
		stats.ByStatus[t.Status]++
		stats.ByPriority[t.Priority]++
		stats.ByChannel[t.Channel]++
		stats.ByLanguage[t.Language]++
		if t.Status == domain.TicketStatusResolved && t.OperatorID == nil {
			stats.AutoResolved++
		}
	}
	return stats, nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []domain.TicketMessage
	tickets  *fakeTicketRepo
}

func newFakeMessageRepo(tickets *fakeTicketRepo) *fakeMessageRepo {
	return &fakeMessageRepo{tickets: tickets}
}

func (r *fakeMessageRepo) Create(_ context.Context, m *domain.TicketMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, *m)
	return nil
}

func (r *fakeMessageRepo) CreateWithStatus(ctx context.Context, m *domain.TicketMessage, newStatus *domain.TicketStatus) error {
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
	if *newStatus != domain.TicketStatusResolved {
		t.ResolvedAt = nil
	}
	return nil
}

func (r *fakeMessageRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketMessage, error) {
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

func (r *fakeMessageRepo) ListRecent(ctx context.Context, ticketID string, limit int) ([]domain.TicketMessage, error) {
	all, err := r.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
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

type fakeDepartmentRepo struct {
	departments []domain.Department
}

func (r *fakeDepartmentRepo) ListActive(_ context.Context) ([]domain.Department, error) {
	return r.departments, nil
}

type fakeCallLogRepo struct {
	mu   sync.Mutex
	logs map[string]*domain.CallLog
}

func newFakeCallLogRepo() *fakeCallLogRepo {
	return &fakeCallLogRepo{logs: make(map[string]*domain.CallLog)}
}

func (r *fakeCallLogRepo) Create(_ context.Context, c *domain.CallLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *c
	r.logs[c.CallID] = &clone
	return nil
}

func (r *fakeCallLogRepo) GetByCallID(_ context.Context, callID string) (*domain.CallLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.logs[callID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *c
	return &clone, nil
}

func (r *fakeCallLogRepo) Update(_ context.Context, c *domain.CallLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.logs[c.CallID]
	if !ok {
		return pgx.ErrNoRows
	}
	ticketID := stored.TicketID
	clone := *c
	if clone.TicketID == nil {
		clone.TicketID = ticketID
	}
	r.logs[c.CallID] = &clone
	return nil
}

func (r *fakeCallLogRepo) LinkTicket(_ context.Context, callID, ticketID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.logs[callID]
	if !ok {
		return pgx.ErrNoRows
	}
	c.TicketID = &ticketID
	return nil
}

func (r *fakeCallLogRepo) SetRating(_ context.Context, callID string, rating int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.logs[callID]
	if !ok {
		return pgx.ErrNoRows
	}
	c.Rating = &rating
	return nil
}

func listAll() repository.TicketFilter {
	return repository.TicketFilter{Limit: 100}
}

// fakeClassifier returns a fixed result or error.
type fakeClassifier struct {
	result ai.ClassificationResult
	err    error
	calls  int
}

func (c *fakeClassifier) Classify(_ context.Context, _, _ string) (ai.ClassificationResult, error) {
	c.calls++
	if c.err != nil {
		return ai.ClassificationResult{}, c.err
	}
	return c.result, nil
}

type fakeAssistant struct {
	reply   string
	summary string
	err     error
}

func (a *fakeAssistant) Suggest(_ context.Context, _ string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	return a.reply, nil
}

func (a *fakeAssistant) Summarize(_ context.Context, _ string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	return a.summary, nil
}
