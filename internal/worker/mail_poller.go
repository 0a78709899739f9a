// Package worker hosts the background loops that run alongside the HTTP
// server.
package worker

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/qoldai/helpdesk/internal/channel"
	"github.com/qoldai/helpdesk/internal/observability"
)

// MailPoller periodically drains the support mailbox through the email
// channel adapter.
type MailPoller struct {
	channel      *channel.EmailChannel
	interval     time.Duration
	fetchTimeout time.Duration
	metrics      *observability.Metrics
	logger       *zap.Logger
	running      atomic.Bool
}

// NewMailPoller creates the poller.
func NewMailPoller(
	ch *channel.EmailChannel,
	interval, fetchTimeout time.Duration,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *MailPoller {
	return &MailPoller{
		channel:      ch,
		interval:     interval,
		fetchTimeout: fetchTimeout,
		metrics:      metrics,
		logger:       logger,
	}
}

// Run polls until ctx is cancelled. A cycle that is still in flight when the
// next tick fires is not doubled; the tick is skipped.
func (p *MailPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("mail poller started", zap.Duration("interval", p.interval))
	p.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("mail poller stopped")
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// Poll runs one cycle on demand. Returns the number of processed emails;
// a cycle already in flight yields zero.
func (p *MailPoller) Poll(ctx context.Context) (int, error) {
	if !p.running.CompareAndSwap(false, true) {
		p.metrics.MailPoll(true)
		return 0, nil
	}
	defer p.running.Store(false)

	p.metrics.MailPoll(false)
	fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()
	return p.channel.Process(fetchCtx)
}

func (p *MailPoller) poll(ctx context.Context) {
	handled, err := p.Poll(ctx)
	if err != nil {
		p.logger.Error("mail poll failed", zap.Error(err))
		return
	}
	if handled > 0 {
		p.logger.Info("mail poll complete", zap.Int("handled", handled))
	}
}
