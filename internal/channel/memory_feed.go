package channel

import (
	"context"
	"sync"
)

// MemoryFeed is an in-process MailFeed fed through Enqueue. It backs the
// development setup and the simulate endpoint; production deployments plug
// in a real mailbox feed behind the same interface.
type MemoryFeed struct {
	mu    sync.Mutex
	queue []InboundEmail
}

// NewMemoryFeed creates an empty feed.
func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{}
}

// Enqueue adds an email for the next Fetch.
func (f *MemoryFeed) Enqueue(email InboundEmail) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, email)
}

// Fetch drains and returns everything queued so far.
func (f *MemoryFeed) Fetch(_ context.Context) ([]InboundEmail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	emails := f.queue
	f.queue = nil
	return emails, nil
}
