// Package dto defines the HTTP wire types.
package dto

// RegisterRequest is the account registration payload.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateTicketRequest opens a ticket from the web channel.
type CreateTicketRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

// UpdateTicketRequest is a partial ticket update. Absent fields stay as
// they are.
type UpdateTicketRequest struct {
	Subject      *string `json:"subject"`
	Description  *string `json:"description"`
	Status       *string `json:"status"`
	Priority     *string `json:"priority"`
	DepartmentID *string `json:"departmentId"`
	OperatorID   *string `json:"operatorId"`
}

// AddMessageRequest appends a conversation message.
type AddMessageRequest struct {
	Content string `json:"content"`
}

// AssignRequest pins a ticket to an operator.
type AssignRequest struct {
	OperatorID string `json:"operatorId"`
}

// CallEventRequest is the live PBX webhook payload.
type CallEventRequest struct {
	CallID      string `json:"callId"`
	Phone       string `json:"phone"`
	Direction   string `json:"direction"`
	Status      string `json:"status"`
	OperatorExt string `json:"operatorExt"`
	GroupName   string `json:"groupName"`
}

// CallHistoryRequest is the PBX post-call record payload.
type CallHistoryRequest struct {
	CallID       string `json:"callId"`
	Phone        string `json:"phone"`
	Direction    string `json:"direction"`
	Status       string `json:"status"`
	Duration     int    `json:"duration"`
	RecordingURL string `json:"recordingUrl"`
	StartedAt    string `json:"startedAt"`
	AnsweredAt   string `json:"answeredAt"`
	EndedAt      string `json:"endedAt"`
}

// CallRatingRequest is the post-call survey score reported by the PBX.
type CallRatingRequest struct {
	CallID string `json:"callId"`
	Rating int    `json:"rating"`
}

// SimulateEmailRequest injects an email into the development mail feed.
type SimulateEmailRequest struct {
	MessageID string `json:"messageId"`
	From      string `json:"from"`
	FromName  string `json:"fromName"`
	Subject   string `json:"subject"`
	Text      string `json:"text"`
}
