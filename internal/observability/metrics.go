package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects lightweight in-process counters exposed on /metrics.
type Metrics struct {
	startedAt time.Time

	requestsTotal  atomic.Int64
	requestsFailed atomic.Int64

	ticketsCreated      atomic.Int64
	ticketsAutoResolved atomic.Int64
	aiFailures          atomic.Int64
	mailPolls           atomic.Int64
	mailSkipped         atomic.Int64

	mu         sync.Mutex
	statusHits map[int]int64
}

// NewMetrics returns an initialized collector.
func NewMetrics() *Metrics {
	return &Metrics{
		startedAt:  time.Now(),
		statusHits: make(map[int]int64),
	}
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(status int) {
	m.requestsTotal.Add(1)
	if status >= 500 {
		m.requestsFailed.Add(1)
	}
	m.mu.Lock()
	m.statusHits[status]++
	m.mu.Unlock()
}

// TicketCreated records a new ticket; autoResolved marks the FAQ/AI path.
func (m *Metrics) TicketCreated(autoResolved bool) {
	m.ticketsCreated.Add(1)
	if autoResolved {
		m.ticketsAutoResolved.Add(1)
	}
}

// AIFailure records a degraded or failed language-model call.
func (m *Metrics) AIFailure() {
	m.aiFailures.Add(1)
}

// MailPoll records one mailbox fetch attempt; skipped marks overlap skips.
func (m *Metrics) MailPoll(skipped bool) {
	m.mailPolls.Add(1)
	if skipped {
		m.mailSkipped.Add(1)
	}
}

// Snapshot returns a point-in-time view for the metrics endpoint.
func (m *Metrics) Snapshot() map[string]any {
	m.mu.Lock()
	statuses := make(map[int]int64, len(m.statusHits))
	for code, n := range m.statusHits {
		statuses[code] = n
	}
	m.mu.Unlock()

	return map[string]any{
		"uptime_seconds":        int64(time.Since(m.startedAt).Seconds()),
		"requests_total":        m.requestsTotal.Load(),
		"requests_failed":       m.requestsFailed.Load(),
		"requests_by_status":    statuses,
		"tickets_created":       m.ticketsCreated.Load(),
		"tickets_auto_resolved": m.ticketsAutoResolved.Load(),
		"ai_failures":           m.aiFailures.Load(),
		"mail_polls":            m.mailPolls.Load(),
		"mail_polls_skipped":    m.mailSkipped.Load(),
	}
}
