package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/qoldai/helpdesk/internal/domain"
	"github.com/qoldai/helpdesk/internal/events"
	"github.com/qoldai/helpdesk/internal/repository"
	"github.com/qoldai/helpdesk/pkg/util"
)

// pseudoClientDomain hosts the synthetic accounts that phone callers get.
const pseudoClientDomain = "phone.qoldai.kz"

// CallEventInput is one live PBX webhook notification.
type CallEventInput struct {
	CallID      string
	Phone       string
	Direction   domain.CallDirection
	Status      domain.CallStatus
	OperatorExt string
	GroupName   string
}

// CallHistoryInput is the PBX's final record for a finished call.
type CallHistoryInput struct {
	CallID       string
	Phone        string
	Direction    domain.CallDirection
	Status       domain.CallStatus
	Duration     int
	RecordingURL string
	StartedAt    time.Time
	AnsweredAt   *time.Time
	EndedAt      *time.Time
}

// CallerContact is the screen-pop payload for an incoming call.
type CallerContact struct {
	Phone         string
	ClientID      string
	ClientName    string
	OpenTickets   []domain.Ticket
	KnownCustomer bool
}

// TelephonyService consumes PBX webhooks, maintains call logs, and opens
// tickets for calls that need follow-up.
type TelephonyService struct {
	calls    repository.CallLogRepository
	users    repository.UserRepository
	tickets  repository.TicketRepository
	intake   *IntakeService
	dispatch *events.Dispatcher
	logger   *zap.Logger
}

// NewTelephonyService creates the PBX integration service.
func NewTelephonyService(
	calls repository.CallLogRepository,
	users repository.UserRepository,
	tickets repository.TicketRepository,
	intake *IntakeService,
	dispatch *events.Dispatcher,
	logger *zap.Logger,
) *TelephonyService {
	return &TelephonyService{
		calls:    calls,
		users:    users,
		tickets:  tickets,
		intake:   intake,
		dispatch: dispatch,
		logger:   logger,
	}
}

// HandleEvent processes a live call notification. Repeated events for the
// same call update the existing log; a cancelled inbound call opens a
// callback ticket exactly once.
func (s *TelephonyService) HandleEvent(ctx context.Context, input CallEventInput) error {
	if input.CallID == "" || input.Phone == "" {
		return util.NewValidationError("callId and phone are required", nil)
	}
	phone := normalizePhone(input.Phone)

	log, err := s.calls.GetByCallID(ctx, input.CallID)
	switch {
	case err == nil:
		log.Status = input.Status
		if input.OperatorExt != "" {
			log.OperatorExt = input.OperatorExt
		}
		if input.GroupName != "" {
			log.GroupName = input.GroupName
		}
		if input.Status == domain.CallStatusAccepted && log.AnsweredAt == nil {
			now := time.Now().UTC()
			log.AnsweredAt = &now
		}
		if finalCallStatus(input.Status) && log.EndedAt == nil {
			now := time.Now().UTC()
			log.EndedAt = &now
		}
		if err := s.calls.Update(ctx, log); err != nil {
			return util.MapError(err)
		}
	case err == pgx.ErrNoRows:
		now := time.Now().UTC()
		log = &domain.CallLog{
			ID:          uuid.NewString(),
			CallID:      input.CallID,
			Phone:       phone,
			Direction:   input.Direction,
			Status:      input.Status,
			OperatorExt: input.OperatorExt,
			GroupName:   input.GroupName,
			StartedAt:   now,
			CreatedAt:   now,
		}
		if err := s.calls.Create(ctx, log); err != nil {
			return util.MapError(err)
		}
	default:
		return util.MapError(err)
	}

	if input.Direction == domain.CallDirectionIn && missedCallStatus(input.Status) {
		return s.ensureCallbackTicket(ctx, log)
	}
	return nil
}

// HandleHistory ingests the PBX's post-call record: duration, recording,
// terminal status. Missed calls that slipped past the live events still get
// a callback ticket here.
func (s *TelephonyService) HandleHistory(ctx context.Context, input CallHistoryInput) error {
	if input.CallID == "" || input.Phone == "" {
		return util.NewValidationError("callId and phone are required", nil)
	}
	phone := normalizePhone(input.Phone)

	log, err := s.calls.GetByCallID(ctx, input.CallID)
	if err == pgx.ErrNoRows {
		now := time.Now().UTC()
		log = &domain.CallLog{
			ID:        uuid.NewString(),
			CallID:    input.CallID,
			Phone:     phone,
			Direction: input.Direction,
			Status:    input.Status,
			StartedAt: input.StartedAt,
			CreatedAt: now,
		}
		if log.StartedAt.IsZero() {
			log.StartedAt = now
		}
		if err := s.calls.Create(ctx, log); err != nil {
			return util.MapError(err)
		}
	} else if err != nil {
		return util.MapError(err)
	}

	log.Status = input.Status
	log.Duration = input.Duration
	log.RecordingURL = input.RecordingURL
	log.AnsweredAt = input.AnsweredAt
	log.EndedAt = input.EndedAt
	if err := s.calls.Update(ctx, log); err != nil {
		return util.MapError(err)
	}

	if input.Direction == domain.CallDirectionIn && missedCallStatus(input.Status) {
		return s.ensureCallbackTicket(ctx, log)
	}
	return nil
}

// RateCall stores the caller's post-call survey score against the log.
func (s *TelephonyService) RateCall(ctx context.Context, callID string, rating int) error {
	if callID == "" {
		return util.NewValidationError("callId is required", nil)
	}
	if rating < 1 || rating > 5 {
		return util.NewValidationError("rating must be between 1 and 5", nil)
	}
	if err := s.calls.SetRating(ctx, callID, rating); err != nil {
		return util.MapError(err)
	}
	return nil
}

// Contact resolves a caller for the operator screen-pop.
func (s *TelephonyService) Contact(ctx context.Context, phone string) (*CallerContact, error) {
	digits := normalizePhone(phone)
	if digits == "" {
		return nil, util.NewValidationError("phone is required", nil)
	}

	contact := &CallerContact{Phone: digits}
	user, err := s.users.GetByEmail(ctx, pseudoClientEmail(digits))
	if err == pgx.ErrNoRows {
		return contact, nil
	}
	if err != nil {
		return nil, util.MapError(err)
	}

	contact.ClientID = user.ID
	contact.ClientName = user.Name
	contact.KnownCustomer = true

	open, err := s.tickets.List(ctx, repository.TicketFilter{
		ClientID: user.ID,
		Statuses: []domain.TicketStatus{
			domain.TicketStatusOpen,
			domain.TicketStatusInProgress,
			domain.TicketStatusWaitingClient,
			domain.TicketStatusWaitingOperator,
		},
		Limit: 10,
	})
	if err != nil {
		return nil, util.MapError(err)
	}
	contact.OpenTickets = open
	return contact, nil
}

// ensureCallbackTicket opens at most one ticket per call.
func (s *TelephonyService) ensureCallbackTicket(ctx context.Context, log *domain.CallLog) error {
	if log.TicketID != nil {
		return nil
	}

	client, err := s.ensurePseudoClient(ctx, log.Phone)
	if err != nil {
		return err
	}

	ticket, err := s.intake.CreateFromCall(ctx, client.ID, "+"+log.Phone, true)
	if err != nil {
		return err
	}
	if err := s.calls.LinkTicket(ctx, log.CallID, ticket.ID); err != nil {
		return util.MapError(err)
	}
	log.TicketID = &ticket.ID

	s.dispatch.Dispatch(events.Event{
		Name:    events.CallLinked,
		Payload: events.CallLinkedPayload{Call: log, Ticket: ticket},
	})
	return nil
}

// ensurePseudoClient finds or creates the synthetic account for a phone
// number. Phone callers have no real email, so the account lives under a
// reserved domain keyed by digits.
func (s *TelephonyService) ensurePseudoClient(ctx context.Context, phone string) (*domain.User, error) {
	email := pseudoClientEmail(phone)
	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if err != pgx.ErrNoRows {
		return nil, util.MapError(err)
	}

	now := time.Now().UTC()
	user = &domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      "Абонент +" + phone,
		Role:      domain.UserRoleClient,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, util.MapError(err)
	}
	s.logger.Info("pseudo client created", zap.String("phone", phone))
	return user, nil
}

func pseudoClientEmail(digits string) string {
	return digits + "@" + pseudoClientDomain
}

func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func finalCallStatus(s domain.CallStatus) bool {
	switch s {
	case domain.CallStatusCompleted, domain.CallStatusCancelled,
		domain.CallStatusMissed, domain.CallStatusBusy, domain.CallStatusNotAvailable:
		return true
	}
	return false
}

func missedCallStatus(s domain.CallStatus) bool {
	switch s {
	case domain.CallStatusCancelled, domain.CallStatusMissed,
		domain.CallStatusBusy, domain.CallStatusNotAvailable:
		return true
	}
	return false
}
