package service

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/qoldai/helpdesk/internal/config"
	"github.com/qoldai/helpdesk/internal/domain"
	"github.com/qoldai/helpdesk/internal/events"
	"github.com/qoldai/helpdesk/internal/faq"
	"github.com/qoldai/helpdesk/internal/observability"
)

func newTelephonyEnv(t *testing.T) (*TelephonyService, *fakeCallLogRepo, *fakeUserRepo, *fakeTicketRepo) {
	t.Helper()
	tickets := newFakeTicketRepo()
	messages := newFakeMessageRepo(tickets)
	users := newFakeUserRepo()
	calls := newFakeCallLogRepo()

	intake := NewIntakeService(IntakeDependencies{
		Tickets:     tickets,
		Messages:    messages,
		Users:       users,
		Departments: &fakeDepartmentRepo{},
		Classifier:  &fakeClassifier{},
		FAQ:         faq.NewMatcher(nil),
		Dispatcher:  events.NewDispatcher(zap.NewNop()),
		Metrics:     observability.NewMetrics(),
		Logger:      zap.NewNop(),
	}, config.IntakeConfig{BotEmail: "bot@qoldai.kz", SLAHours: 24, AutoResolveAt: 0.85})

	svc := NewTelephonyService(calls, users, tickets, intake,
		events.NewDispatcher(zap.NewNop()), zap.NewNop())
	return svc, calls, users, tickets
}

func TestMissedCallCreatesTicketOnce(t *testing.T) {
	svc, calls, users, tickets := newTelephonyEnv(t)
	ctx := context.Background()

	event := CallEventInput{
		CallID:    "call-1",
		Phone:     "+7 (701) 123-45-67",
		Direction: domain.CallDirectionIn,
		Status:    domain.CallStatusCancelled,
	}
	if err := svc.HandleEvent(ctx, event); err != nil {
		t.Fatal(err)
	}

	log, err := calls.GetByCallID(ctx, "call-1")
	if err != nil {
		t.Fatal(err)
	}
	if log.TicketID == nil {
		t.Fatal("missed call should link a ticket")
	}
	ticket, err := tickets.GetByID(ctx, *log.TicketID)
	if err != nil {
		t.Fatal(err)
	}
	if ticket.Priority != domain.TicketPriorityHigh || ticket.Channel != domain.TicketChannelPhone {
		t.Fatalf("ticket = %+v", ticket)
	}

	client, err := users.GetByID(ctx, ticket.ClientID)
	if err != nil {
		t.Fatal(err)
	}
	if client.Email != "77011234567@phone.qoldai.kz" {
		t.Fatalf("pseudo client email = %q", client.Email)
	}
	if client.Role != domain.UserRoleClient {
		t.Fatalf("pseudo client role = %s", client.Role)
	}

	// Redelivered webhook must not open a second ticket.
	if err := svc.HandleEvent(ctx, event); err != nil {
		t.Fatal(err)
	}
	all, _ := tickets.List(ctx, listAll())
	if len(all) != 1 {
		t.Fatalf("expected one ticket, got %d", len(all))
	}
}

func TestAnsweredCallCreatesNoTicket(t *testing.T) {
	svc, calls, _, tickets := newTelephonyEnv(t)
	ctx := context.Background()

	if err := svc.HandleEvent(ctx, CallEventInput{
		CallID:    "call-2",
		Phone:     "77017654321",
		Direction: domain.CallDirectionIn,
		Status:    domain.CallStatusIncoming,
	}); err != nil {
		t.Fatal(err)
	}
	if err := svc.HandleEvent(ctx, CallEventInput{
		CallID:      "call-2",
		Phone:       "77017654321",
		Direction:   domain.CallDirectionIn,
		Status:      domain.CallStatusAccepted,
		OperatorExt: "101",
	}); err != nil {
		t.Fatal(err)
	}

	log, err := calls.GetByCallID(ctx, "call-2")
	if err != nil {
		t.Fatal(err)
	}
	if log.Status != domain.CallStatusAccepted || log.AnsweredAt == nil {
		t.Fatalf("log = %+v", log)
	}
	all, _ := tickets.List(ctx, listAll())
	if len(all) != 0 {
		t.Fatalf("answered call should open no ticket, got %d", len(all))
	}
}

func TestHistoryBackfillsMissedCall(t *testing.T) {
	svc, calls, _, tickets := newTelephonyEnv(t)
	ctx := context.Background()

	if err := svc.HandleHistory(ctx, CallHistoryInput{
		CallID:       "call-3",
		Phone:        "77019990000",
		Direction:    domain.CallDirectionIn,
		Status:       domain.CallStatusMissed,
		Duration:     0,
		RecordingURL: "",
	}); err != nil {
		t.Fatal(err)
	}

	log, err := calls.GetByCallID(ctx, "call-3")
	if err != nil {
		t.Fatal(err)
	}
	if log.TicketID == nil {
		t.Fatal("missed call from history should link a ticket")
	}
	all, _ := tickets.List(ctx, listAll())
	if len(all) != 1 {
		t.Fatalf("expected one ticket, got %d", len(all))
	}
}

func TestContactKnownCaller(t *testing.T) {
	svc, _, _, _ := newTelephonyEnv(t)
	ctx := context.Background()

	if err := svc.HandleEvent(ctx, CallEventInput{
		CallID:    "call-4",
		Phone:     "77015550011",
		Direction: domain.CallDirectionIn,
		Status:    domain.CallStatusMissed,
	}); err != nil {
		t.Fatal(err)
	}

	contact, err := svc.Contact(ctx, "+7 701 555 00 11")
	if err != nil {
		t.Fatal(err)
	}
	if !contact.KnownCustomer {
		t.Fatal("caller should be known after the first call")
	}
	if !strings.HasPrefix(contact.ClientName, "Абонент") {
		t.Fatalf("client name = %q", contact.ClientName)
	}
	if len(contact.OpenTickets) != 1 {
		t.Fatalf("open tickets = %d, want 1", len(contact.OpenTickets))
	}
}

func TestRateCall(t *testing.T) {
	svc, calls, _, _ := newTelephonyEnv(t)
	ctx := context.Background()

	if err := svc.HandleEvent(ctx, CallEventInput{
		CallID:    "call-5",
		Phone:     "77012223344",
		Direction: domain.CallDirectionIn,
		Status:    domain.CallStatusCompleted,
	}); err != nil {
		t.Fatal(err)
	}

	if err := svc.RateCall(ctx, "call-5", 4); err != nil {
		t.Fatal(err)
	}
	log, err := calls.GetByCallID(ctx, "call-5")
	if err != nil {
		t.Fatal(err)
	}
	if log.Rating == nil || *log.Rating != 4 {
		t.Fatalf("rating = %v, want 4", log.Rating)
	}

	if err := svc.RateCall(ctx, "call-5", 0); err == nil {
		t.Fatal("out of range rating must be rejected")
	}
	if err := svc.RateCall(ctx, "no-such-call", 3); err == nil {
		t.Fatal("rating an unknown call must fail")
	}
}

func TestContactUnknownCaller(t *testing.T) {
	svc, _, _, _ := newTelephonyEnv(t)
	contact, err := svc.Contact(context.Background(), "77010000000")
	if err != nil {
		t.Fatal(err)
	}
	if contact.KnownCustomer {
		t.Fatal("unknown caller must not be marked known")
	}
}
