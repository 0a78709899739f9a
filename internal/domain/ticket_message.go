package domain

import "time"

// TicketMessage captures one utterance in a ticket thread. Messages are
// append-only: once written they are never edited or deleted.
type TicketMessage struct {
	ID            string
	TicketID      string
	SenderID      string
	Content       string
	IsAIGenerated bool
	CreatedAt     time.Time
}
