package service

import (
	"context"

	"github.com/qoldai/helpdesk/internal/repository"
	"github.com/qoldai/helpdesk/pkg/util"
)

// StatsService serves the operator dashboard aggregates.
type StatsService struct {
	tickets repository.TicketRepository
}

// NewStatsService creates the stats service.
func NewStatsService(tickets repository.TicketRepository) *StatsService {
	return &StatsService{tickets: tickets}
}

// StatsOverview is the dashboard payload: raw counters plus derived rates.
type StatsOverview struct {
	*repository.TicketStats
	AutoResolveRate   float64
	SLAComplianceRate float64
}

// Overview returns ticket counters grouped by status, priority, channel and
// language, with auto-resolution and SLA compliance rates over all tickets.
func (s *StatsService) Overview(ctx context.Context) (*StatsOverview, error) {
	stats, err := s.tickets.Stats(ctx)
	if err != nil {
		return nil, util.MapError(err)
	}
	overview := &StatsOverview{TicketStats: stats, SLAComplianceRate: 1}
	if stats.Total > 0 {
		overview.AutoResolveRate = float64(stats.AutoResolved) / float64(stats.Total)
		overview.SLAComplianceRate = 1 - float64(stats.SLABreached)/float64(stats.Total)
	}
	return overview, nil
}
