package events

import "github.com/qoldai/helpdesk/internal/domain"

// Event names.
const (
	TicketCreated  = "ticket.created"
	StatusChanged  = "ticket.status_changed"
	MessageAdded   = "ticket.message_added"
	TicketAssigned = "ticket.assigned"
	CallLinked     = "call.linked"
)

// TicketCreatedPayload accompanies TicketCreated.
type TicketCreatedPayload struct {
	Ticket       *domain.Ticket
	ClientEmail  string
	AutoResolved bool
}

// StatusChangedPayload accompanies StatusChanged.
type StatusChangedPayload struct {
	Ticket *domain.Ticket
	From   domain.TicketStatus
	To     domain.TicketStatus
}

// MessageAddedPayload accompanies MessageAdded.
type MessageAddedPayload struct {
	Ticket  *domain.Ticket
	Message *domain.TicketMessage
	Author  domain.MessageAuthor
}

// TicketAssignedPayload accompanies TicketAssigned.
type TicketAssignedPayload struct {
	Ticket     *domain.Ticket
	OperatorID string
}

// CallLinkedPayload accompanies CallLinked.
type CallLinkedPayload struct {
	Call   *domain.CallLog
	Ticket *domain.Ticket
}
