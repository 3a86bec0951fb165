package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/config"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/repository"
	apperrors "github.com/appdotbuilder/isp-helpdesk-rfo/pkg/util"
)

func testAuthConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret",
			AccessTokenTTLMinutes:   60,
			PasswordResetTTLMinutes: 30,
			BcryptCost:              bcrypt.MinCost,
		},
	}
}

func newAuthFixture() (*AuthService, *repository.MemoryUserRepository, *repository.MemoryPasswordResetRepository) {
	users := repository.NewMemoryUserRepository()
	resets := repository.NewMemoryPasswordResetRepository()
	svc := NewAuthService(testAuthConfig(), AuthDependencies{
		UserRepo:          users,
		PasswordResetRepo: resets,
	})
	return svc, users, resets
}

func TestAuthServiceRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("registration creates a customer and signs it in", func(t *testing.T) {
		svc, _, _ := newAuthFixture()

		user, token, exp, err := svc.Register(ctx, "Dana", "dana@example.net", "hunter22")
		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, domain.UserRoleCustomer, user.Role)
		assert.NotEqual(t, "hunter22", user.PasswordHash)
		assert.NotEmpty(t, token)
		assert.True(t, exp.After(time.Now()))

		claims, err := svc.TokenManager().ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.Subject)
		assert.Equal(t, domain.UserRoleCustomer, claims.Role)
	})

	t.Run("duplicate email surfaces as constraint violation", func(t *testing.T) {
		svc, _, _ := newAuthFixture()

		_, _, _, err := svc.Register(ctx, "Dana", "dana@example.net", "hunter22")
		require.NoError(t, err)

		_, _, _, err = svc.Register(ctx, "Other Dana", "Dana@Example.net", "different")
		require.Error(t, err)
		de := apperrors.ToDomainError(err)
		assert.Equal(t, "CONSTRAINT_VIOLATION", de.Code)
		assert.Equal(t, "users_email_key", de.Details["constraint"])
	})
}

func TestAuthServiceLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials sign in", func(t *testing.T) {
		svc, _, _ := newAuthFixture()
		registered, _, _, err := svc.Register(ctx, "Dana", "dana@example.net", "hunter22")
		require.NoError(t, err)

		user, token, _, err := svc.Login(ctx, "dana@example.net", "hunter22")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		svc, _, _ := newAuthFixture()
		_, _, _, err := svc.Register(ctx, "Dana", "dana@example.net", "hunter22")
		require.NoError(t, err)

		_, _, _, wrongPass := svc.Login(ctx, "dana@example.net", "wrong")
		_, _, _, unknown := svc.Login(ctx, "nobody@example.net", "hunter22")

		for _, err := range []error{wrongPass, unknown} {
			var de *apperrors.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, "UNAUTHORIZED", de.Code)
			assert.Equal(t, "invalid credentials", de.Message)
		}
	})
}

func TestAuthServicePasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("full reset flow", func(t *testing.T) {
		svc, _, _ := newAuthFixture()
		_, _, _, err := svc.Register(ctx, "Dana", "dana@example.net", "old-password")
		require.NoError(t, err)

		token, err := svc.RequestPasswordReset(ctx, "dana@example.net")
		require.NoError(t, err)
		assert.NotEmpty(t, token.Token)
		assert.True(t, token.ExpiresAt.After(time.Now()))

		require.NoError(t, svc.ConfirmPasswordReset(ctx, token.Token, "new-password"))

		_, _, _, err = svc.Login(ctx, "dana@example.net", "old-password")
		assert.Error(t, err)
		_, _, _, err = svc.Login(ctx, "dana@example.net", "new-password")
		assert.NoError(t, err)
	})

	t.Run("unknown email reports not found", func(t *testing.T) {
		svc, _, _ := newAuthFixture()

		_, err := svc.RequestPasswordReset(ctx, "nobody@example.net")
		var de *apperrors.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "NOT_FOUND", de.Code)
	})

	t.Run("a newer request supersedes older tokens", func(t *testing.T) {
		svc, _, _ := newAuthFixture()
		_, _, _, err := svc.Register(ctx, "Dana", "dana@example.net", "old-password")
		require.NoError(t, err)

		first, err := svc.RequestPasswordReset(ctx, "dana@example.net")
		require.NoError(t, err)
		second, err := svc.RequestPasswordReset(ctx, "dana@example.net")
		require.NoError(t, err)

		err = svc.ConfirmPasswordReset(ctx, first.Token, "sneaky-password")
		var de *apperrors.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "VALIDATION_FAILED", de.Code)

		require.NoError(t, svc.ConfirmPasswordReset(ctx, second.Token, "new-password"))
		_, _, _, err = svc.Login(ctx, "dana@example.net", "new-password")
		assert.NoError(t, err)
	})

	t.Run("token cannot be used twice", func(t *testing.T) {
		svc, _, _ := newAuthFixture()
		_, _, _, err := svc.Register(ctx, "Dana", "dana@example.net", "old-password")
		require.NoError(t, err)

		token, err := svc.RequestPasswordReset(ctx, "dana@example.net")
		require.NoError(t, err)
		require.NoError(t, svc.ConfirmPasswordReset(ctx, token.Token, "first-new"))

		err = svc.ConfirmPasswordReset(ctx, token.Token, "second-new")
		var de *apperrors.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "VALIDATION_FAILED", de.Code)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		users := repository.NewMemoryUserRepository()
		resets := repository.NewMemoryPasswordResetRepository()
		svc := NewAuthService(testAuthConfig(), AuthDependencies{
			UserRepo:          users,
			PasswordResetRepo: resets,
		})

		user, _, _, err := svc.Register(ctx, "Dana", "dana@example.net", "old-password")
		require.NoError(t, err)

		stale := &repository.PasswordResetToken{
			UserID:    user.ID,
			Token:     "stale-token",
			ExpiresAt: time.Now().Add(-time.Minute),
		}
		require.NoError(t, resets.Create(ctx, stale))

		err = svc.ConfirmPasswordReset(ctx, "stale-token", "new-password")
		var de *apperrors.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "VALIDATION_FAILED", de.Code)
	})

	t.Run("unknown token reports not found", func(t *testing.T) {
		svc, _, _ := newAuthFixture()

		err := svc.ConfirmPasswordReset(ctx, "no-such-token", "whatever")
		var de *apperrors.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "NOT_FOUND", de.Code)
	})
}

func TestAuthServiceChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("current password gates the change", func(t *testing.T) {
		svc, _, _ := newAuthFixture()
		user, _, _, err := svc.Register(ctx, "Dana", "dana@example.net", "original")
		require.NoError(t, err)

		err = svc.ChangePassword(ctx, user.ID, "wrong", "next")
		var de *apperrors.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "UNAUTHORIZED", de.Code)

		require.NoError(t, svc.ChangePassword(ctx, user.ID, "original", "next"))

		_, _, _, err = svc.Login(ctx, "dana@example.net", "next")
		assert.NoError(t, err)
	})
}
