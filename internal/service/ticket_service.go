package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qoldai/helpdesk/internal/domain"
	"github.com/qoldai/helpdesk/internal/events"
	"github.com/qoldai/helpdesk/internal/repository"
	"github.com/qoldai/helpdesk/pkg/util"
)

// UpdateTicketInput carries a partial ticket update. Nil fields are left
// untouched.
type UpdateTicketInput struct {
	Subject      *string
	Description  *string
	Status       *domain.TicketStatus
	Priority     *domain.TicketPriority
	DepartmentID *string
	OperatorID   *string
}

// TicketService covers reads and staff-side mutations of tickets.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher *events.Dispatcher
	logger     *zap.Logger
}

// NewTicketService creates the ticket service.
func NewTicketService(
	tickets repository.TicketRepository,
	users repository.UserRepository,
	dispatcher *events.Dispatcher,
	logger *zap.Logger,
) *TicketService {
	return &TicketService{tickets: tickets, users: users, dispatcher: dispatcher, logger: logger}
}

// Get returns one ticket, access-checked for clients.
func (s *TicketService) Get(ctx context.Context, id, requesterID string, requesterRole domain.UserRole) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, util.MapError(err)
	}
	if requesterRole == domain.UserRoleClient && ticket.ClientID != requesterID {
		return nil, util.NewAccessDenied("not your ticket")
	}
	return ticket, nil
}

// List returns tickets for staff with arbitrary filters.
func (s *TicketService) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, util.MapError(err)
	}
	return tickets, nil
}

// ListMine returns the requester's own tickets.
func (s *TicketService) ListMine(ctx context.Context, clientID string, filter repository.TicketFilter) ([]domain.Ticket, error) {
	filter.ClientID = clientID
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, util.MapError(err)
	}
	return tickets, nil
}

// Update applies a partial update, enforcing per-field edit permissions.
func (s *TicketService) Update(ctx context.Context, id, requesterID string, requesterRole domain.UserRole, input UpdateTicketInput) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, util.MapError(err)
	}
	if requesterRole == domain.UserRoleClient && ticket.ClientID != requesterID {
		return nil, util.NewAccessDenied("not your ticket")
	}

	check := func(field domain.TicketField) error {
		if !domain.CanEditField(requesterRole, ticket.Status, field) {
			return util.NewAccessDenied("field " + string(field) + " is not editable")
		}
		return nil
	}

	prevStatus := ticket.Status

	if input.Subject != nil {
		if err := check(domain.TicketFieldSubject); err != nil {
			return nil, err
		}
		subject := strings.TrimSpace(*input.Subject)
		if subject == "" {
			return nil, util.NewValidationError("subject cannot be empty", nil)
		}
		ticket.Subject = subject
	}
	if input.Description != nil {
		if err := check(domain.TicketFieldDescription); err != nil {
			return nil, err
		}
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, util.NewValidationError("description cannot be empty", nil)
		}
		ticket.Description = description
	}
	if input.Status != nil {
		if err := check(domain.TicketFieldStatus); err != nil {
			return nil, err
		}
		if !validStatus(*input.Status) {
			return nil, util.NewValidationError("unknown status", map[string]any{"status": *input.Status})
		}
		ticket.Status = *input.Status
	}
	if input.Priority != nil {
		if err := check(domain.TicketFieldPriority); err != nil {
			return nil, err
		}
		if !validPriority(*input.Priority) {
			return nil, util.NewValidationError("unknown priority", map[string]any{"priority": *input.Priority})
		}
		ticket.Priority = *input.Priority
	}
	if input.DepartmentID != nil {
		if err := check(domain.TicketFieldDepartment); err != nil {
			return nil, err
		}
		if *input.DepartmentID == "" {
			ticket.DepartmentID = nil
		} else {
			ticket.DepartmentID = input.DepartmentID
		}
	}
	if input.OperatorID != nil {
		if err := check(domain.TicketFieldOperator); err != nil {
			return nil, err
		}
		if *input.OperatorID == "" {
			ticket.OperatorID = nil
		} else {
			operator, err := s.users.GetByID(ctx, *input.OperatorID)
			if err != nil {
				return nil, util.MapError(err)
			}
			if !operator.IsStaff() {
				return nil, util.NewValidationError("assignee must be staff", nil)
			}
			ticket.OperatorID = &operator.ID
		}
	}

	s.stampResolution(ticket)

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, util.MapError(err)
	}

	if ticket.Status != prevStatus {
		s.dispatcher.Dispatch(events.Event{
			Name:    events.StatusChanged,
			Payload: events.StatusChangedPayload{Ticket: ticket, From: prevStatus, To: ticket.Status},
		})
	}
	return ticket, nil
}

// AssignOperator pins a ticket to an operator.
func (s *TicketService) AssignOperator(ctx context.Context, ticketID, operatorID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	operator, err := s.users.GetByID(ctx, operatorID)
	if err != nil {
		return nil, util.MapError(err)
	}
	if !operator.IsStaff() {
		return nil, util.NewValidationError("assignee must be staff", nil)
	}

	ticket.OperatorID = &operator.ID
	if ticket.Status == domain.TicketStatusOpen {
		ticket.Status = domain.TicketStatusInProgress
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, util.MapError(err)
	}

	s.dispatcher.Dispatch(events.Event{
		Name:    events.TicketAssigned,
		Payload: events.TicketAssignedPayload{Ticket: ticket, OperatorID: operator.ID},
	})
	s.logger.Info("ticket assigned",
		zap.String("ticket_id", ticket.ID),
		zap.String("operator_id", operator.ID))
	return ticket, nil
}

// stampResolution keeps resolved_at consistent with status: stamped when a
// ticket first reaches RESOLVED, cleared when it leaves RESOLVED and CLOSED.
func (s *TicketService) stampResolution(ticket *domain.Ticket) {
	switch {
	case ticket.Status == domain.TicketStatusResolved && ticket.ResolvedAt == nil:
		now := time.Now().UTC()
		ticket.ResolvedAt = &now
	case ticket.Status != domain.TicketStatusResolved && ticket.Status != domain.TicketStatusClosed:
		ticket.ResolvedAt = nil
	}
}

func validStatus(s domain.TicketStatus) bool {
	switch s {
	case domain.TicketStatusOpen, domain.TicketStatusInProgress,
		domain.TicketStatusWaitingClient, domain.TicketStatusWaitingOperator,
		domain.TicketStatusResolved, domain.TicketStatusClosed:
		return true
	}
	return false
}

func validPriority(p domain.TicketPriority) bool {
	switch p {
	case domain.TicketPriorityLow, domain.TicketPriorityMedium,
		domain.TicketPriorityHigh, domain.TicketPriorityUrgent:
		return true
	}
	return false
}
