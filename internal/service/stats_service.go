package service

import (
	"context"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/repository"
)

// StatsService serves the aggregate ticket counts behind staff dashboards.
type StatsService struct {
	tickets repository.TicketRepository
}

// NewStatsService constructs the service.
func NewStatsService(tickets repository.TicketRepository) *StatsService {
	return &StatsService{tickets: tickets}
}

// TicketStats aggregates the ticket population, optionally scoped to one
// assigned agent. An agent id that matches nothing produces zero counts
// and empty maps rather than an error.
func (s *StatsService) TicketStats(ctx context.Context, agentID *string) (*domain.TicketStats, error) {
	return s.tickets.Stats(ctx, agentID)
}
