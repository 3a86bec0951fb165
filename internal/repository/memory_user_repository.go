package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
)

// MemoryUserRepository implements UserRepository with in-memory storage.
// It is used by tests and speaks the same error language as the Postgres
// implementation: pgx.ErrNoRows for missing rows and a pgconn unique
// violation for duplicate emails.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users []*domain.User
	byID  map[string]*domain.User
}

// NewMemoryUserRepository creates an empty in-memory user repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{byID: make(map[string]*domain.User)}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		}
	}

	now := time.Now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := cloneUser(user)
	r.users = append(r.users, stored)
	r.byID[stored.ID] = stored
	return nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Name = user.Name
	stored.Email = user.Email
	stored.PasswordHash = user.PasswordHash
	stored.UpdatedAt = time.Now()
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneUser(stored), nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, stored := range r.users {
		if strings.EqualFold(stored.Email, email) {
			return cloneUser(stored), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryUserRepository) ListWithFilter(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.matchUsers(filter)

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

	result := make([]domain.User, 0, end-offset)
	for _, stored := range matched[offset:end] {
		result = append(result, *cloneUser(stored))
	}
	return result, nil
}

func (r *MemoryUserRepository) CountWithFilter(ctx context.Context, filter UserFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matchUsers(filter)), nil
}

// matchUsers returns matching rows newest first, mirroring the SQL
// ORDER BY created_at DESC.
func (r *MemoryUserRepository) matchUsers(filter UserFilter) []*domain.User {
	var matched []*domain.User
	for i := len(r.users) - 1; i >= 0; i-- {
		stored := r.users[i]
		if filter.Role != nil && stored.Role != *filter.Role {
			continue
		}
		if filter.SearchTerm != nil {
			term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
			if term != "" &&
				!strings.Contains(strings.ToLower(stored.Name), term) &&
				!strings.Contains(strings.ToLower(stored.Email), term) {
				continue
			}
		}
		matched = append(matched, stored)
	}
	return matched
}

func cloneUser(user *domain.User) *domain.User {
	clone := *user
	return &clone
}
