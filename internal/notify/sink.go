// Package notify delivers outbound client notifications.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// OutboundEmail is a notification ready for delivery.
type OutboundEmail struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sink delivers outbound email.
type Sink interface {
	Send(ctx context.Context, email OutboundEmail) error
}

// LogSink records notifications without delivering them. Used when no
// delivery provider is configured.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a non-delivering sink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Send(_ context.Context, email OutboundEmail) error {
	s.logger.Info("email notification (delivery disabled)",
		zap.String("to", email.To),
		zap.String("subject", email.Subject))
	return nil
}

// ResendSink delivers email through the Resend HTTP API.
type ResendSink struct {
	apiKey string
	from   string
	client *http.Client
	logger *zap.Logger
}

// NewResendSink creates a Resend-backed sink.
func NewResendSink(apiKey, from string, logger *zap.Logger) *ResendSink {
	return &ResendSink{
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (s *ResendSink) Send(ctx context.Context, email OutboundEmail) error {
	payload := map[string]any{
		"from":    s.from,
		"to":      []string{email.To},
		"subject": email.Subject,
	}
	if email.HTML != "" {
		payload["html"] = email.HTML
	}
	if email.Text != "" {
		payload["text"] = email.Text
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("resend: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://api.resend.com/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("resend: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("resend: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("resend: status %d: %s", resp.StatusCode, snippet)
	}
	s.logger.Debug("email sent",
		zap.String("to", email.To),
		zap.String("subject", email.Subject))
	return nil
}
