package domain

import "time"

// CallDirection marks inbound vs outbound PBX calls.
type CallDirection string

const (
	CallDirectionIn  CallDirection = "IN"
	CallDirectionOut CallDirection = "OUT"
)

// CallStatus tracks PBX call lifecycle as reported by webhooks.
type CallStatus string

const (
	CallStatusIncoming     CallStatus = "INCOMING"
	CallStatusOutgoing     CallStatus = "OUTGOING"
	CallStatusAccepted     CallStatus = "ACCEPTED"
	CallStatusCompleted    CallStatus = "COMPLETED"
	CallStatusCancelled    CallStatus = "CANCELLED"
	CallStatusTransferred  CallStatus = "TRANSFERRED"
	CallStatusMissed       CallStatus = "MISSED"
	CallStatusBusy         CallStatus = "BUSY"
	CallStatusNotAvailable CallStatus = "NOT_AVAILABLE"
)

// CallLog is one PBX call record. CallID is the PBX correlation key and the
// TicketID link is what makes re-delivered webhooks idempotent.
type CallLog struct {
	ID           string
	CallID       string
	Phone        string
	Direction    CallDirection
	Status       CallStatus
	TicketID     *string
	OperatorExt  string
	GroupName    string
	Duration     int
	RecordingURL string
	Rating       *int
	StartedAt    time.Time
	AnsweredAt   *time.Time
	EndedAt      *time.Time
	CreatedAt    time.Time
}
