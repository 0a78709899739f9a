package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qoldai/helpdesk/internal/domain"
	"github.com/qoldai/helpdesk/internal/events"
	"github.com/qoldai/helpdesk/internal/repository"
	"github.com/qoldai/helpdesk/pkg/util"
)

// maxMessageLength caps stored message content.
const maxMessageLength = 5000

// AppendMessageInput describes one inbound conversation message.
type AppendMessageInput struct {
	TicketID      string
	SenderID      string
	SenderRole    domain.UserRole
	Content       string
	IsAIGenerated bool
}

// MessageService appends conversation messages and drives the status
// machine that reacts to them.
type MessageService struct {
	tickets    repository.TicketRepository
	messages   repository.TicketMessageRepository
	dispatcher *events.Dispatcher
	locks      *util.KeyedMutex
	logger     *zap.Logger
}

// NewMessageService creates the message append service.
func NewMessageService(
	tickets repository.TicketRepository,
	messages repository.TicketMessageRepository,
	dispatcher *events.Dispatcher,
	logger *zap.Logger,
) *MessageService {
	return &MessageService{
		tickets:    tickets,
		messages:   messages,
		dispatcher: dispatcher,
		locks:      util.NewKeyedMutex(64),
		logger:     logger,
	}
}

// Append records a message and recomputes the ticket status from who wrote
// it. The append and the status move commit atomically; concurrent appends
// to the same ticket are serialized.
func (s *MessageService) Append(ctx context.Context, input AppendMessageInput) (*domain.TicketMessage, *domain.Ticket, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, nil, util.NewValidationError("message content is required", nil)
	}
	if len([]rune(content)) > maxMessageLength {
		content = string([]rune(content)[:maxMessageLength])
	}

	unlock := s.locks.Lock(input.TicketID)
	defer unlock()

	ticket, err := s.tickets.GetByID(ctx, input.TicketID)
	if err != nil {
		return nil, nil, util.MapError(err)
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, nil, util.NewConflict("ticket is closed", map[string]any{"ticket_id": ticket.ID})
	}

	// Clients may only write on their own tickets; staff and the bot may
	// write anywhere.
	if input.SenderRole == domain.UserRoleClient && ticket.ClientID != input.SenderID {
		return nil, nil, util.NewAccessDenied("not your ticket")
	}

	author := domain.AuthorSide(input.SenderRole)
	next := domain.NextStatusOnMessage(ticket.Status, author)

	msg := &domain.TicketMessage{
		ID:            uuid.NewString(),
		TicketID:      ticket.ID,
		SenderID:      input.SenderID,
		Content:       content,
		IsAIGenerated: input.IsAIGenerated,
		CreatedAt:     time.Now().UTC(),
	}

	var statusUpdate *domain.TicketStatus
	if next != ticket.Status {
		statusUpdate = &next
	}
	if err := s.messages.CreateWithStatus(ctx, msg, statusUpdate); err != nil {
		return nil, nil, util.MapError(err)
	}

	prev := ticket.Status
	if statusUpdate != nil {
		ticket.Status = next
		if prev == domain.TicketStatusResolved && next == domain.TicketStatusWaitingOperator {
			ticket.ResolvedAt = nil
		}
		s.dispatcher.Dispatch(events.Event{
			Name:    events.StatusChanged,
			Payload: events.StatusChangedPayload{Ticket: ticket, From: prev, To: next},
		})
		s.logger.Info("ticket status moved",
			zap.String("ticket_id", ticket.ID),
			zap.String("from", string(prev)),
			zap.String("to", string(next)))
	}

	s.dispatcher.Dispatch(events.Event{
		Name:    events.MessageAdded,
		Payload: events.MessageAddedPayload{Ticket: ticket, Message: msg, Author: author},
	})
	return msg, ticket, nil
}

// History returns the full conversation for a ticket, access-checked.
func (s *MessageService) History(ctx context.Context, ticketID, requesterID string, requesterRole domain.UserRole) ([]domain.TicketMessage, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	if requesterRole == domain.UserRoleClient && ticket.ClientID != requesterID {
		return nil, util.NewAccessDenied("not your ticket")
	}
	msgs, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	return msgs, nil
}
