// Package ai wraps the external language-model capabilities the pipeline
// consumes. Every call is fallible and bounded; callers decide whether a
// failure degrades (intake) or propagates (operator tooling).
package ai

import (
	"context"
	"errors"

	"github.com/qoldai/helpdesk/internal/domain"
)

// ClassificationResult is the transient value object returned by Classify.
// Its fields are copied onto the ticket at creation time; it is never
// persisted as-is.
type ClassificationResult struct {
	Category            string
	Priority            domain.TicketPriority
	Sentiment           domain.Sentiment
	Language            domain.Language
	SuggestedDepartment string
	AutoReply           string
	CanAutoResolve      bool
	Confidence          float64
}

// DefaultClassification is the conservative substitute used when the
// classifier is unavailable. Classification failure is never fatal to ticket
// creation.
func DefaultClassification() ClassificationResult {
	return ClassificationResult{
		Category:   "general",
		Priority:   domain.TicketPriorityMedium,
		Sentiment:  domain.SentimentNeutral,
		Language:   domain.LanguageRU,
		Confidence: 0.5,
	}
}

// ErrUnavailable marks capability failures (timeout, transport, bad payload).
var ErrUnavailable = errors.New("ai capability unavailable")

// Classifier turns free ticket text into a structured classification.
type Classifier interface {
	Classify(ctx context.Context, subject, description string) (ClassificationResult, error)
}

// Summarizer produces a short summary of a conversation transcript.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Suggester drafts an operator reply from a conversation transcript.
type Suggester interface {
	Suggest(ctx context.Context, prompt string) (string, error)
}
