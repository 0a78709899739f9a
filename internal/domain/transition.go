package domain

// MessageAuthor classifies who appended a message for the purposes of the
// status transition function. Bot messages count as operator-side.
type MessageAuthor string

const (
	AuthorClient   MessageAuthor = "CLIENT"
	AuthorOperator MessageAuthor = "OPERATOR_OR_BOT"
)

// NextStatusOnMessage is the message-driven status transition function. It is
// memoryless: the next status depends only on the current status and the
// author side, never on the message history.
//
// A client reply to a RESOLVED ticket reopens it into the operator queue; the
// auto-resolution disclaimer explicitly invites that reply. CLOSED is
// terminal and must be rejected before this function is consulted.
func NextStatusOnMessage(current TicketStatus, author MessageAuthor) TicketStatus {
	switch {
	case author == AuthorClient && current == TicketStatusWaitingClient:
		return TicketStatusWaitingOperator
	case author == AuthorClient && current == TicketStatusResolved:
		return TicketStatusWaitingOperator
	case author != AuthorClient && current == TicketStatusWaitingOperator:
		return TicketStatusWaitingClient
	case author != AuthorClient && current == TicketStatusOpen:
		return TicketStatusInProgress
	}
	return current
}

// AuthorSide maps a user role onto the transition function's author axis.
func AuthorSide(role UserRole) MessageAuthor {
	if role == UserRoleClient {
		return AuthorClient
	}
	return AuthorOperator
}
