package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/qoldai/helpdesk/internal/ai"
	"github.com/qoldai/helpdesk/internal/observability"
	"github.com/qoldai/helpdesk/internal/repository"
	"github.com/qoldai/helpdesk/pkg/util"
)

// transcriptWindow is how many trailing messages feed the suggester.
const transcriptWindow = 10

// AssistService exposes the operator-facing AI tooling: reply suggestions
// and conversation summaries. Unlike intake, failures here propagate to the
// caller.
type AssistService struct {
	tickets   repository.TicketRepository
	messages  repository.TicketMessageRepository
	suggester ai.Suggester
	summarize ai.Summarizer
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewAssistService creates the operator assist service.
func NewAssistService(
	tickets repository.TicketRepository,
	messages repository.TicketMessageRepository,
	suggester ai.Suggester,
	summarizer ai.Summarizer,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *AssistService {
	return &AssistService{
		tickets:   tickets,
		messages:  messages,
		suggester: suggester,
		summarize: summarizer,
		metrics:   metrics,
		logger:    logger,
	}
}

// SuggestReply drafts a response for the operator from the ticket and its
// recent conversation.
func (s *AssistService) SuggestReply(ctx context.Context, ticketID string) (string, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return "", util.MapError(err)
	}
	recent, err := s.messages.ListRecent(ctx, ticketID, transcriptWindow)
	if err != nil {
		return "", util.MapError(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Ticket subject: %s\n", ticket.Subject)
	fmt.Fprintf(&b, "Ticket description: %s\n", ticket.Description)
	if len(recent) > 0 {
		b.WriteString("\nConversation:\n")
		for _, msg := range recent {
			label := "User"
			if msg.IsAIGenerated {
				label = "AI"
			}
			fmt.Fprintf(&b, "%s: %s\n", label, msg.Content)
		}
	}

	reply, err := s.suggester.Suggest(ctx, b.String())
	if err != nil {
		s.metrics.AIFailure()
		return "", util.MapError(err)
	}

	suggested := reply
	ticket.SuggestedReply = &suggested
	if err := s.tickets.Update(ctx, ticket); err != nil {
		s.logger.Warn("suggested reply not persisted",
			zap.String("ticket_id", ticketID),
			zap.Error(err))
	}
	return reply, nil
}

// Summarize condenses the whole conversation and persists the summary on
// the ticket.
func (s *AssistService) Summarize(ctx context.Context, ticketID string) (string, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return "", util.MapError(err)
	}
	msgs, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return "", util.MapError(err)
	}

	parts := make([]string, 0, len(msgs)+1)
	parts = append(parts, fmt.Sprintf("Subject: %s\nDescription: %s", ticket.Subject, ticket.Description))
	for _, msg := range msgs {
		parts = append(parts, msg.Content)
	}

	summary, err := s.summarize.Summarize(ctx, strings.Join(parts, "\n---\n"))
	if err != nil {
		s.metrics.AIFailure()
		return "", util.MapError(err)
	}

	if err := s.tickets.UpdateSummary(ctx, ticketID, summary); err != nil {
		return "", util.MapError(err)
	}
	return summary, nil
}
