package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/auth"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/config"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/observability"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/persistence"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/repository"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the default admin and agent accounts if missing",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()

	users := repository.NewUserRepository(pg.PoolHandle())

	seeds := []struct {
		name     string
		email    string
		password string
		role     domain.UserRole
	}{
		{"Helpdesk Admin", "admin@helpdesk.local", "admin-change-me", domain.UserRoleAdmin},
		{"First Line Agent", "agent@helpdesk.local", "agent-change-me", domain.UserRoleAgent},
	}

	for _, s := range seeds {
		if _, err := users.GetByEmail(ctx, s.email); err == nil {
			logger.Info("seed user already present", zap.String("email", s.email))
			continue
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("lookup %s: %w", s.email, err)
		}

		hash, err := auth.HashPassword(s.password, cfg.Auth.BcryptCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", s.email, err)
		}

		user := &domain.User{
			Name:         s.name,
			Email:        s.email,
			PasswordHash: hash,
			Role:         s.role,
		}
		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("create %s: %w", s.email, err)
		}
		logger.Info("seeded user", zap.String("email", s.email), zap.String("role", string(s.role)))
	}

	return nil
}
