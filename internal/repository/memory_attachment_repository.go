package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
)

// MemoryAttachmentRepository implements AttachmentRepository in memory for
// tests.
type MemoryAttachmentRepository struct {
	mu          sync.RWMutex
	attachments []*domain.Attachment
	byID        map[string]*domain.Attachment
}

// NewMemoryAttachmentRepository creates an empty in-memory attachment repository.
func NewMemoryAttachmentRepository() *MemoryAttachmentRepository {
	return &MemoryAttachmentRepository{byID: make(map[string]*domain.Attachment)}
}

func (r *MemoryAttachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	attachment.ID = uuid.NewString()
	attachment.CreatedAt = time.Now()

	stored := *attachment
	r.attachments = append(r.attachments, &stored)
	r.byID[stored.ID] = &stored
	return nil
}

func (r *MemoryAttachmentRepository) GetByID(ctx context.Context, id string) (*domain.Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *stored
	return &clone, nil
}

func (r *MemoryAttachmentRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.byID, id)
	for i, stored := range r.attachments {
		if stored.ID == id {
			r.attachments = append(r.attachments[:i], r.attachments[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryAttachmentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Attachment
	for _, stored := range r.attachments {
		if stored.TicketID == ticketID {
			result = append(result, *stored)
		}
	}
	return result, nil
}
