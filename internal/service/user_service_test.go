package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/repository"
	apperrors "github.com/appdotbuilder/isp-helpdesk-rfo/pkg/util"
)

func newUserService() (*UserService, *repository.MemoryUserRepository) {
	users := repository.NewMemoryUserRepository()
	return NewUserService(testAuthConfig(), users), users
}

func TestUserServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a user with the requested role", func(t *testing.T) {
		svc, _ := newUserService()

		agent, err := svc.Create(ctx, "Alex Agent", "alex@example.net", "s3cret", domain.UserRoleAgent)
		require.NoError(t, err)
		assert.NotEmpty(t, agent.ID)
		assert.Equal(t, domain.UserRoleAgent, agent.Role)
		assert.NotEqual(t, "s3cret", agent.PasswordHash)
	})

	t.Run("duplicate email bubbles from the store", func(t *testing.T) {
		svc, _ := newUserService()

		_, err := svc.Create(ctx, "Alex", "alex@example.net", "x", domain.UserRoleAgent)
		require.NoError(t, err)

		_, err = svc.Create(ctx, "Other Alex", "alex@example.net", "y", domain.UserRoleCustomer)
		require.Error(t, err)
		de := apperrors.ToDomainError(err)
		assert.Equal(t, "CONSTRAINT_VIOLATION", de.Code)
	})
}

func TestUserServiceList(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, svc *UserService) {
		t.Helper()
		_, err := svc.Create(ctx, "Alex Agent", "alex@example.net", "x", domain.UserRoleAgent)
		require.NoError(t, err)
		_, err = svc.Create(ctx, "Blake Agent", "blake@example.net", "x", domain.UserRoleAgent)
		require.NoError(t, err)
		_, err = svc.Create(ctx, "Dana Customer", "dana@example.net", "x", domain.UserRoleCustomer)
		require.NoError(t, err)
	}

	t.Run("role filter narrows the page and the total", func(t *testing.T) {
		svc, _ := newUserService()
		seed(t, svc)

		role := domain.UserRoleAgent
		users, total, err := svc.List(ctx, UserListFilter{Role: &role})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, users, 2)
		for _, u := range users {
			assert.Equal(t, domain.UserRoleAgent, u.Role)
		}
	})

	t.Run("search matches name and email", func(t *testing.T) {
		svc, _ := newUserService()
		seed(t, svc)

		term := "blake"
		users, total, err := svc.List(ctx, UserListFilter{SearchTerm: &term})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, users, 1)
		assert.Equal(t, "Blake Agent", users[0].Name)
	})

	t.Run("pagination trims the page but not the total", func(t *testing.T) {
		svc, _ := newUserService()
		seed(t, svc)

		users, total, err := svc.List(ctx, UserListFilter{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, users, 2)

		users, _, err = svc.List(ctx, UserListFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})
}

func TestUserServiceGet(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the stored user", func(t *testing.T) {
		svc, _ := newUserService()
		created, err := svc.Create(ctx, "Alex Agent", "alex@example.net", "x", domain.UserRoleAgent)
		require.NoError(t, err)

		got, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Email, got.Email)
	})

	t.Run("missing user reports not found", func(t *testing.T) {
		svc, _ := newUserService()

		_, err := svc.Get(ctx, "no-such-user")
		var de *apperrors.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "NOT_FOUND", de.Code)
		assert.Equal(t, "no-such-user", de.Details["user_id"])
	})
}
