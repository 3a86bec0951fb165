package repository

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
)

// MemoryActivityRepository implements ActivityRepository in memory for tests.
type MemoryActivityRepository struct {
	mu      sync.RWMutex
	entries []*domain.TicketActivity
}

// NewMemoryActivityRepository creates an empty in-memory activity repository.
func NewMemoryActivityRepository() *MemoryActivityRepository {
	return &MemoryActivityRepository{}
}

func (r *MemoryActivityRepository) Create(ctx context.Context, activity *domain.TicketActivity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	activity.ID = uuid.NewString()
	activity.CreatedAt = time.Now()

	stored := cloneActivity(activity)
	r.entries = append(r.entries, stored)
	return nil
}

func (r *MemoryActivityRepository) ListByTicket(ctx context.Context, ticketID string, limit, offset int) ([]domain.TicketActivity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var matched []*domain.TicketActivity
	for _, stored := range r.entries {
		if stored.TicketID == ticketID {
			matched = append(matched, stored)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	result := make([]domain.TicketActivity, 0, end-offset)
	for _, stored := range matched[offset:end] {
		result = append(result, *cloneActivity(stored))
	}
	return result, nil
}

func cloneActivity(activity *domain.TicketActivity) *domain.TicketActivity {
	clone := *activity
	if activity.ActorID != nil {
		actorID := *activity.ActorID
		clone.ActorID = &actorID
	}
	if activity.OldValue != nil {
		clone.OldValue = maps.Clone(activity.OldValue)
	}
	if activity.NewValue != nil {
		clone.NewValue = maps.Clone(activity.NewValue)
	}
	return &clone
}
