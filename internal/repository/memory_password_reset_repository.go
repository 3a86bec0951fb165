package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MemoryPasswordResetRepository implements PasswordResetRepository in memory
// for tests.
type MemoryPasswordResetRepository struct {
	mu     sync.RWMutex
	tokens map[string]*PasswordResetToken
}

// NewMemoryPasswordResetRepository creates an empty in-memory token repository.
func NewMemoryPasswordResetRepository() *MemoryPasswordResetRepository {
	return &MemoryPasswordResetRepository{tokens: make(map[string]*PasswordResetToken)}
}

func (r *MemoryPasswordResetRepository) Create(ctx context.Context, token *PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token.ID = uuid.NewString()
	token.CreatedAt = time.Now()

	stored := *token
	r.tokens[stored.ID] = &stored
	return nil
}

func (r *MemoryPasswordResetRepository) GetByToken(ctx context.Context, tokenStr string) (*PasswordResetToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, stored := range r.tokens {
		if stored.Token == tokenStr {
			clone := *stored
			if stored.UsedAt != nil {
				usedAt := *stored.UsedAt
				clone.UsedAt = &usedAt
			}
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryPasswordResetRepository) MarkUsed(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tokens[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	stored.UsedAt = &now
	return nil
}

func (r *MemoryPasswordResetRepository) InvalidateForUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, stored := range r.tokens {
		if stored.UserID == userID && stored.UsedAt == nil {
			usedAt := now
			stored.UsedAt = &usedAt
		}
	}
	return nil
}
