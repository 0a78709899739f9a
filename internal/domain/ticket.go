package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen            TicketStatus = "OPEN"
	TicketStatusInProgress      TicketStatus = "IN_PROGRESS"
	TicketStatusWaitingClient   TicketStatus = "WAITING_CLIENT"
	TicketStatusWaitingOperator TicketStatus = "WAITING_OPERATOR"
	TicketStatusResolved        TicketStatus = "RESOLVED"
	TicketStatusClosed          TicketStatus = "CLOSED"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// TicketChannel identifies the medium a ticket originated from.
type TicketChannel string

const (
	TicketChannelWeb      TicketChannel = "WEB"
	TicketChannelEmail    TicketChannel = "EMAIL"
	TicketChannelPhone    TicketChannel = "PHONE"
	TicketChannelTelegram TicketChannel = "TELEGRAM"
	TicketChannelWhatsApp TicketChannel = "WHATSAPP"
)

// Language enumerates supported client languages.
type Language string

const (
	LanguageRU Language = "RU"
	LanguageKZ Language = "KZ"
	LanguageEN Language = "EN"
)

// Sentiment is the AI-detected emotional tone of a ticket.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID             string
	Subject        string
	Description    string
	Status         TicketStatus
	Priority       TicketPriority
	Channel        TicketChannel
	Language       Language
	Category       *string
	Sentiment      *Sentiment
	Summary        *string
	SuggestedReply *string
	ClientID       string
	OperatorID     *string
	DepartmentID   *string
	SLADeadline    time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ResolvedAt     *time.Time
}

// Resolved reports whether the ticket reached RESOLVED or CLOSED.
func (t *Ticket) Resolved() bool {
	return t.Status == TicketStatusResolved || t.Status == TicketStatusClosed
}
