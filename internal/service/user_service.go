package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/auth"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/config"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/repository"
	apperrors "github.com/appdotbuilder/isp-helpdesk-rfo/pkg/util"
)

// UserService manages accounts on behalf of administrators. Customer
// self-registration lives in AuthService; this service provisions agents
// and admins and backs the admin user listing.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

// UserListFilter defines admin listing parameters.
type UserListFilter struct {
	Role       *domain.UserRole
	SearchTerm *string
	Limit      int
	Offset     int
}

// NewUserService constructs the service.
func NewUserService(cfg config.Config, users repository.UserRepository) *UserService {
	return &UserService{
		users:      users,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Create provisions an account with an explicit role. Duplicate emails
// surface from the unique index as constraint violations.
func (s *UserService) Create(ctx context.Context, name, email, password string, role domain.UserRole) (*domain.User, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// List returns a page of users plus the total match count.
func (s *UserService) List(ctx context.Context, filter UserListFilter) ([]domain.User, int, error) {
	repoFilter := repository.UserFilter{
		Role:       filter.Role,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	users, err := s.users.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.users.CountWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Get returns one user by id.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, err
	}
	return user, nil
}
