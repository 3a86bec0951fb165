package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()

	storeUser := func(t *testing.T, repo *MemoryUserRepository, name, email string, role domain.UserRole) *domain.User {
		t.Helper()
		user := &domain.User{Name: name, Email: email, PasswordHash: "hash", Role: role}
		require.NoError(t, repo.Create(ctx, user))
		return user
	}

	t.Run("Create assigns id and rejects duplicate emails", func(t *testing.T) {
		repo := NewMemoryUserRepository()
		user := storeUser(t, repo, "Dana", "dana@example.net", domain.UserRoleCustomer)
		assert.NotEmpty(t, user.ID)

		err := repo.Create(ctx, &domain.User{Name: "Dupe", Email: "DANA@example.net"})
		var pgErr *pgconn.PgError
		require.ErrorAs(t, err, &pgErr)
		assert.Equal(t, "23505", pgErr.Code)
		assert.Equal(t, "users_email_key", pgErr.ConstraintName)
	})

	t.Run("GetByEmail matches case-insensitive", func(t *testing.T) {
		repo := NewMemoryUserRepository()
		user := storeUser(t, repo, "Dana", "dana@example.net", domain.UserRoleCustomer)

		got, err := repo.GetByEmail(ctx, "Dana@Example.NET")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		_, err = repo.GetByEmail(ctx, "nobody@example.net")
		assert.ErrorIs(t, err, pgx.ErrNoRows)
	})

	t.Run("Update touches only the mutable columns", func(t *testing.T) {
		repo := NewMemoryUserRepository()
		user := storeUser(t, repo, "Dana", "dana@example.net", domain.UserRoleCustomer)

		modified, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		modified.Name = "Dana Renamed"
		modified.Role = domain.UserRoleAdmin
		require.NoError(t, repo.Update(ctx, modified))

		stored, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dana Renamed", stored.Name)
		assert.Equal(t, domain.UserRoleCustomer, stored.Role, "role is not an updatable column")

		assert.ErrorIs(t, repo.Update(ctx, &domain.User{ID: "missing"}), pgx.ErrNoRows)
	})

	t.Run("ListWithFilter returns newest first", func(t *testing.T) {
		repo := NewMemoryUserRepository()
		storeUser(t, repo, "First", "first@example.net", domain.UserRoleAgent)
		storeUser(t, repo, "Second", "second@example.net", domain.UserRoleAgent)
		last := storeUser(t, repo, "Third", "third@example.net", domain.UserRoleAgent)

		listed, err := repo.ListWithFilter(ctx, UserFilter{})
		require.NoError(t, err)
		require.Len(t, listed, 3)
		assert.Equal(t, last.ID, listed[0].ID)
	})

	t.Run("role and search filters apply together", func(t *testing.T) {
		repo := NewMemoryUserRepository()
		storeUser(t, repo, "Alex Agent", "alex@example.net", domain.UserRoleAgent)
		storeUser(t, repo, "Alexandra Customer", "alexandra@example.net", domain.UserRoleCustomer)

		role := domain.UserRoleAgent
		term := "alex"
		listed, err := repo.ListWithFilter(ctx, UserFilter{Role: &role, SearchTerm: &term})
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, "Alex Agent", listed[0].Name)

		total, err := repo.CountWithFilter(ctx, UserFilter{SearchTerm: &term})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
	})
}
