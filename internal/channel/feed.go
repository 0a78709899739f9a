// Package channel adapts external communication channels (mailbox, PBX)
// onto the ticket pipeline.
package channel

import (
	"context"
	"time"
)

// InboundEmail is one message pulled from the support mailbox.
type InboundEmail struct {
	MessageID string
	From      string
	FromName  string
	Subject   string
	Text      string
	Date      time.Time
}

// MailFeed fetches unread messages from the support mailbox. Implementations
// must honor ctx cancellation; the poller caps each fetch with a deadline.
type MailFeed interface {
	Fetch(ctx context.Context) ([]InboundEmail, error)
}
