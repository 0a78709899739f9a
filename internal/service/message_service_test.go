package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/qoldai/helpdesk/internal/domain"
	"github.com/qoldai/helpdesk/internal/events"
)

func newMessageEnv(t *testing.T, status domain.TicketStatus) (*MessageService, *fakeTicketRepo, *domain.Ticket) {
	t.Helper()
	tickets := newFakeTicketRepo()
	messages := newFakeMessageRepo(tickets)

	ticket := &domain.Ticket{
		ID:       "t-1",
		Subject:  "Вопрос",
		Status:   status,
		Priority: domain.TicketPriorityMedium,
		Channel:  domain.TicketChannelWeb,
		Language: domain.LanguageRU,
		ClientID: "client-1",
	}
	if status == domain.TicketStatusResolved {
		now := time.Now().UTC()
		ticket.ResolvedAt = &now
	}
	if err := tickets.Create(context.Background(), ticket); err != nil {
		t.Fatal(err)
	}

	svc := NewMessageService(tickets, messages, events.NewDispatcher(zap.NewNop()), zap.NewNop())
	return svc, tickets, ticket
}

func TestAppendClientReplyMovesToWaitingOperator(t *testing.T) {
	svc, repo, ticket := newMessageEnv(t, domain.TicketStatusWaitingClient)

	_, updated, err := svc.Append(context.Background(), AppendMessageInput{
		TicketID:   ticket.ID,
		SenderID:   "client-1",
		SenderRole: domain.UserRoleClient,
		Content:    "Вот дополнительная информация",
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != domain.TicketStatusWaitingOperator {
		t.Fatalf("status = %s, want WAITING_OPERATOR", updated.Status)
	}
	stored, _ := repo.GetByID(context.Background(), ticket.ID)
	if stored.Status != domain.TicketStatusWaitingOperator {
		t.Fatalf("persisted status = %s", stored.Status)
	}
}

func TestAppendClientReplyReopensResolved(t *testing.T) {
	svc, repo, ticket := newMessageEnv(t, domain.TicketStatusResolved)

	_, updated, err := svc.Append(context.Background(), AppendMessageInput{
		TicketID:   ticket.ID,
		SenderID:   "client-1",
		SenderRole: domain.UserRoleClient,
		Content:    "Проблема не решена",
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != domain.TicketStatusWaitingOperator {
		t.Fatalf("status = %s, want WAITING_OPERATOR", updated.Status)
	}
	stored, _ := repo.GetByID(context.Background(), ticket.ID)
	if stored.ResolvedAt != nil {
		t.Fatal("reopening must clear resolvedAt")
	}
}

func TestAppendOperatorReplyMovesToWaitingClient(t *testing.T) {
	svc, _, ticket := newMessageEnv(t, domain.TicketStatusWaitingOperator)

	_, updated, err := svc.Append(context.Background(), AppendMessageInput{
		TicketID:   ticket.ID,
		SenderID:   "op-1",
		SenderRole: domain.UserRoleOperator,
		Content:    "Мы проверили, попробуйте снова",
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != domain.TicketStatusWaitingClient {
		t.Fatalf("status = %s, want WAITING_CLIENT", updated.Status)
	}
}

func TestAppendOperatorReplyStartsWork(t *testing.T) {
	svc, _, ticket := newMessageEnv(t, domain.TicketStatusOpen)

	_, updated, err := svc.Append(context.Background(), AppendMessageInput{
		TicketID:   ticket.ID,
		SenderID:   "op-1",
		SenderRole: domain.UserRoleOperator,
		Content:    "Взял в работу",
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != domain.TicketStatusInProgress {
		t.Fatalf("status = %s, want IN_PROGRESS", updated.Status)
	}
}

func TestAppendClosedTicketRejected(t *testing.T) {
	svc, _, ticket := newMessageEnv(t, domain.TicketStatusClosed)

	_, _, err := svc.Append(context.Background(), AppendMessageInput{
		TicketID:   ticket.ID,
		SenderID:   "client-1",
		SenderRole: domain.UserRoleClient,
		Content:    "Ещё вопрос",
	})
	if err == nil {
		t.Fatal("closed ticket must reject appends")
	}
}

func TestAppendForeignClientRejected(t *testing.T) {
	svc, _, ticket := newMessageEnv(t, domain.TicketStatusOpen)

	_, _, err := svc.Append(context.Background(), AppendMessageInput{
		TicketID:   ticket.ID,
		SenderID:   "client-2",
		SenderRole: domain.UserRoleClient,
		Content:    "Чужой тикет",
	})
	if err == nil {
		t.Fatal("foreign client must not write to the ticket")
	}
}

func TestAppendTruncatesLongContent(t *testing.T) {
	svc, _, ticket := newMessageEnv(t, domain.TicketStatusOpen)

	msg, _, err := svc.Append(context.Background(), AppendMessageInput{
		TicketID:   ticket.ID,
		SenderID:   "client-1",
		SenderRole: domain.UserRoleClient,
		Content:    strings.Repeat("ж", 6000),
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := len([]rune(msg.Content)); got != 5000 {
		t.Fatalf("content length = %d, want 5000", got)
	}
}
