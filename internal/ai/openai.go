package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/qoldai/helpdesk/internal/domain"
)

const classifySystemPrompt = `You are an AI assistant that classifies support tickets.
Analyze the ticket and respond ONLY with a JSON object in this exact format:
{
  "category": "one of: billing, technical, account, general, complaint, feature_request",
  "priority": "one of: LOW, MEDIUM, HIGH, URGENT",
  "sentiment": "one of: positive, neutral, negative",
  "language": "detected language code: RU, KZ, or EN",
  "suggestedDepartment": "suggested department name or null",
  "autoReply": "a helpful initial response to the client in their language (2-3 sentences)",
  "canAutoResolve": true/false (true if this is a simple FAQ question that can be answered without human help),
  "confidence": 0.0-1.0 (your confidence in the classification)
}`

const suggestSystemPrompt = `You are a helpful support assistant. Based on the ticket and conversation history, suggest a professional response for the support operator.
The response should be in the same language as the conversation.
Be helpful, professional, and try to resolve the issue.`

const summarizeSystemPrompt = `Summarize this support ticket conversation in 2-3 sentences. Include the main issue and current status.`

// OpenAIOptions configures the OpenAI-backed capability implementation.
type OpenAIOptions struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// OpenAI implements Classifier, Summarizer and Suggester over the chat
// completions API. Every request carries a hard deadline so a stuck upstream
// surfaces as an explicit failure instead of a hang.
type OpenAI struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewOpenAI constructs the capability client.
func NewOpenAI(opts OpenAIOptions, logger *zap.Logger) *OpenAI {
	model := opts.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &OpenAI{
		client:  openai.NewClient(opts.APIKey),
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// classificationWire is the tolerant decode target for the model's JSON.
type classificationWire struct {
	Category            string   `json:"category"`
	Priority            string   `json:"priority"`
	Sentiment           string   `json:"sentiment"`
	Language            string   `json:"language"`
	SuggestedDepartment *string  `json:"suggestedDepartment"`
	AutoReply           *string  `json:"autoReply"`
	CanAutoResolve      bool     `json:"canAutoResolve"`
	Confidence          *float64 `json:"confidence"`
}

// Classify sends the subject and description through the classification
// prompt and normalizes the JSON reply.
func (c *OpenAI) Classify(ctx context.Context, subject, description string) (ClassificationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Subject: %s\n\nDescription: %s", subject, description)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Temperature:    0.3,
	})
	if err != nil {
		return ClassificationResult{}, fmt.Errorf("%w: classify: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return ClassificationResult{}, fmt.Errorf("%w: classify: empty response", ErrUnavailable)
	}

	var wire classificationWire
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &wire); err != nil {
		return ClassificationResult{}, fmt.Errorf("%w: classify: decode: %v", ErrUnavailable, err)
	}
	return normalizeClassification(wire), nil
}

// Suggest drafts an operator reply for the given transcript prompt.
func (c *OpenAI) Suggest(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, suggestSystemPrompt, prompt, 0.7)
}

// Summarize condenses the given transcript prompt.
func (c *OpenAI) Summarize(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, summarizeSystemPrompt, prompt, 0.3)
}

func (c *OpenAI) complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrUnavailable)
	}
	c.logger.Debug("ai completion",
		zap.String("model", c.model),
		zap.Int64("latency_ms", time.Since(start).Milliseconds()),
		zap.Int("tokens_out", resp.Usage.CompletionTokens))
	return resp.Choices[0].Message.Content, nil
}

func normalizeClassification(wire classificationWire) ClassificationResult {
	result := DefaultClassification()

	if wire.Category != "" {
		result.Category = strings.ToLower(strings.TrimSpace(wire.Category))
	}
	switch domain.TicketPriority(strings.ToUpper(wire.Priority)) {
	case domain.TicketPriorityLow, domain.TicketPriorityMedium, domain.TicketPriorityHigh, domain.TicketPriorityUrgent:
		result.Priority = domain.TicketPriority(strings.ToUpper(wire.Priority))
	}
	switch domain.Sentiment(strings.ToLower(wire.Sentiment)) {
	case domain.SentimentPositive, domain.SentimentNeutral, domain.SentimentNegative:
		result.Sentiment = domain.Sentiment(strings.ToLower(wire.Sentiment))
	}
	switch domain.Language(strings.ToUpper(wire.Language)) {
	case domain.LanguageRU, domain.LanguageKZ, domain.LanguageEN:
		result.Language = domain.Language(strings.ToUpper(wire.Language))
	}
	if wire.SuggestedDepartment != nil {
		result.SuggestedDepartment = strings.TrimSpace(*wire.SuggestedDepartment)
	}
	if wire.AutoReply != nil {
		result.AutoReply = strings.TrimSpace(*wire.AutoReply)
	}
	result.CanAutoResolve = wire.CanAutoResolve
	if wire.Confidence != nil && *wire.Confidence >= 0 && *wire.Confidence <= 1 {
		result.Confidence = *wire.Confidence
	}
	return result
}
