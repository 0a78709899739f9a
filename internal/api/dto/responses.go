package dto

import (
	"time"

	"github.com/qoldai/helpdesk/internal/domain"
)

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

// AuthResponse carries the token after register or login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// TicketResponse is the public view of a ticket.
type TicketResponse struct {
	ID             string  `json:"id"`
	Subject        string  `json:"subject"`
	Description    string  `json:"description"`
	Status         string  `json:"status"`
	Priority       string  `json:"priority"`
	Channel        string  `json:"channel"`
	Language       string  `json:"language"`
	Category       *string `json:"category,omitempty"`
	Sentiment      *string `json:"sentiment,omitempty"`
	Summary        *string `json:"summary,omitempty"`
	SuggestedReply *string `json:"suggestedReply,omitempty"`
	ClientID       string  `json:"clientId"`
	OperatorID     *string `json:"operatorId,omitempty"`
	DepartmentID   *string `json:"departmentId,omitempty"`
	SLADeadline    string  `json:"slaDeadline"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
	ResolvedAt     *string `json:"resolvedAt,omitempty"`
}

// MessageResponse is the public view of one conversation message.
type MessageResponse struct {
	ID            string `json:"id"`
	TicketID      string `json:"ticketId"`
	SenderID      string `json:"senderId"`
	Content       string `json:"content"`
	IsAIGenerated bool   `json:"isAiGenerated"`
	CreatedAt     string `json:"createdAt"`
}

// DepartmentResponse is the public view of a department.
type DepartmentResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// FromUser converts a domain user.
func FromUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// FromTicket converts a domain ticket.
func FromTicket(t *domain.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:             t.ID,
		Subject:        t.Subject,
		Description:    t.Description,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		Channel:        string(t.Channel),
		Language:       string(t.Language),
		Category:       t.Category,
		Summary:        t.Summary,
		SuggestedReply: t.SuggestedReply,
		ClientID:       t.ClientID,
		OperatorID:     t.OperatorID,
		DepartmentID:   t.DepartmentID,
		SLADeadline:    t.SLADeadline.Format(time.RFC3339),
		CreatedAt:      t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      t.UpdatedAt.Format(time.RFC3339),
	}
	if t.Sentiment != nil {
		sentiment := string(*t.Sentiment)
		resp.Sentiment = &sentiment
	}
	if t.ResolvedAt != nil {
		resolved := t.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &resolved
	}
	return resp
}

// FromTickets converts a slice of domain tickets.
func FromTickets(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, FromTicket(&tickets[i]))
	}
	return out
}

// FromMessage converts a domain message.
func FromMessage(m *domain.TicketMessage) MessageResponse {
	return MessageResponse{
		ID:            m.ID,
		TicketID:      m.TicketID,
		SenderID:      m.SenderID,
		Content:       m.Content,
		IsAIGenerated: m.IsAIGenerated,
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
	}
}

// FromMessages converts a slice of domain messages.
func FromMessages(msgs []domain.TicketMessage) []MessageResponse {
	out := make([]MessageResponse, 0, len(msgs))
	for i := range msgs {
		out = append(out, FromMessage(&msgs[i]))
	}
	return out
}
