package repository

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
)

// MemoryTicketRepository implements TicketRepository in memory for tests.
type MemoryTicketRepository struct {
	mu      sync.RWMutex
	tickets []*domain.Ticket
	byID    map[string]*domain.Ticket
}

// NewMemoryTicketRepository creates an empty in-memory ticket repository.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{byID: make(map[string]*domain.Ticket)}
}

func (r *MemoryTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now

	stored := cloneTicket(ticket)
	r.tickets = append(r.tickets, stored)
	r.byID[stored.ID] = stored
	return nil
}

func (r *MemoryTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}

	now := time.Now()
	updated := cloneTicket(ticket)
	updated.Reference = stored.Reference
	updated.CustomerID = stored.CustomerID
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = now
	*stored = *updated

	ticket.UpdatedAt = now
	return nil
}

func (r *MemoryTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneTicket(stored), nil
}

func (r *MemoryTicketRepository) GetByReference(ctx context.Context, reference string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, stored := range r.tickets {
		if stored.Reference == reference {
			return cloneTicket(stored), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryTicketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.matchTickets(filter)
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	result := make([]domain.Ticket, 0, end-offset)
	for _, stored := range matched[offset:end] {
		result = append(result, *cloneTicket(stored))
	}
	return result, nil
}

func (r *MemoryTicketRepository) CountWithFilter(ctx context.Context, filter TicketFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matchTickets(filter)), nil
}

func (r *MemoryTicketRepository) TouchUpdated(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryTicketRepository) Stats(ctx context.Context, agentID *string) (*domain.TicketStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := domain.NewTicketStats()
	for _, stored := range r.tickets {
		if agentID != nil && (stored.AssignedAgentID == nil || *stored.AssignedAgentID != *agentID) {
			continue
		}
		stats.AddStatus(stored.Status, 1)
		stats.ByCategory[stored.Category]++
		stats.ByPriority[stored.Priority]++
	}
	return stats, nil
}

func (r *MemoryTicketRepository) matchTickets(filter TicketFilter) []*domain.Ticket {
	var matched []*domain.Ticket
	for _, stored := range r.tickets {
		if filter.CustomerID != nil && stored.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.AssignedAgentID != nil &&
			(stored.AssignedAgentID == nil || *stored.AssignedAgentID != *filter.AssignedAgentID) {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, stored.Status) {
			continue
		}
		if len(filter.Priorities) > 0 && !slices.Contains(filter.Priorities, stored.Priority) {
			continue
		}
		if len(filter.Categories) > 0 && !slices.Contains(filter.Categories, stored.Category) {
			continue
		}
		if filter.CreatedFrom != nil && stored.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && stored.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		if filter.SearchTerm != nil {
			term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
			if term != "" &&
				!strings.Contains(strings.ToLower(stored.Subject), term) &&
				!strings.Contains(strings.ToLower(stored.Description), term) &&
				!strings.Contains(strings.ToLower(stored.Reference), term) {
				continue
			}
		}
		matched = append(matched, stored)
	}
	return matched
}

func cloneTicket(ticket *domain.Ticket) *domain.Ticket {
	clone := *ticket
	if ticket.AssignedAgentID != nil {
		agentID := *ticket.AssignedAgentID
		clone.AssignedAgentID = &agentID
	}
	if ticket.ResolvedAt != nil {
		resolvedAt := *ticket.ResolvedAt
		clone.ResolvedAt = &resolvedAt
	}
	if ticket.OutageDetail != nil {
		detail := *ticket.OutageDetail
		if detail.RestoredAt != nil {
			restoredAt := *detail.RestoredAt
			detail.RestoredAt = &restoredAt
		}
		detail.AffectedServices = append([]string(nil), detail.AffectedServices...)
		clone.OutageDetail = &detail
	}
	return &clone
}
