package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
)

// MemoryCommentRepository implements CommentRepository in memory for tests.
// Insertion order doubles as created_at order, matching the ASC listing of
// the Postgres implementation.
type MemoryCommentRepository struct {
	mu       sync.RWMutex
	comments []*domain.Comment
	byID     map[string]*domain.Comment
}

// NewMemoryCommentRepository creates an empty in-memory comment repository.
func NewMemoryCommentRepository() *MemoryCommentRepository {
	return &MemoryCommentRepository{byID: make(map[string]*domain.Comment)}
}

func (r *MemoryCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	comment.ID = uuid.NewString()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	stored := *comment
	r.comments = append(r.comments, &stored)
	r.byID[stored.ID] = &stored
	return nil
}

func (r *MemoryCommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[comment.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Content = comment.Content
	stored.IsInternal = comment.IsInternal
	stored.UpdatedAt = time.Now()
	comment.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *MemoryCommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *stored
	return &clone, nil
}

func (r *MemoryCommentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Comment
	for _, stored := range r.comments {
		if stored.TicketID == ticketID {
			result = append(result, *stored)
		}
	}
	return result, nil
}
