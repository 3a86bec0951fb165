package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/appdotbuilder/isp-helpdesk-rfo/internal/api/http"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/api/http/handlers"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/auth"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/config"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/events"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/observability"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/persistence"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/repository"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/service"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/storage"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("configuration loaded",
		zap.String("env", cfg.App.Env),
		zap.String("addr", cfg.App.Addr()),
		zap.Bool("postgres_configured", cfg.Postgres.DSN != ""),
		zap.String("redis_addr", cfg.Redis.Addr),
		zap.Bool("events_mirror", cfg.Events.RedisEnabled),
		zap.String("storage_dir", cfg.Storage.Dir),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	fileStore := storage.NewLocalStore(cfg.Storage.Dir)

	var dispatcher events.Dispatcher = events.NewInMemoryDispatcher()
	if cfg.Events.RedisEnabled {
		dispatcher = events.NewRedisDispatcher(dispatcher, redis.Client, cfg.Events.RedisChannel, logger)
	}

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
	})
	userService := service.NewUserService(*cfg, userRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		UserRepo:     userRepo,
		ActivityRepo: activityRepo,
		Dispatcher:   dispatcher,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:   ticketRepo,
		UserRepo:     userRepo,
		ActivityRepo: activityRepo,
		Dispatcher:   dispatcher,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		CommentRepo: commentRepo,
		TicketRepo:  ticketRepo,
		UserRepo:    userRepo,
		Dispatcher:  dispatcher,
	})
	attachmentService := service.NewAttachmentService(service.AttachmentDependencies{
		AttachmentRepo: attachmentRepo,
		TicketRepo:     ticketRepo,
		UserRepo:       userRepo,
		Store:          fileStore,
		Logger:         logger,
	})
	statsService := service.NewStatsService(ticketRepo)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(logger, notificationService)

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, fileStore)
	metaHandler := handlers.NewMetaHandler()
	authHandler := handlers.NewAuthHandler(authService)
	ticketsHandler := handlers.NewTicketsHandler(ticketService, assignmentService, statsService)
	commentsHandler := handlers.NewCommentsHandler(commentService, ticketService)
	attachmentsHandler := handlers.NewAttachmentsHandler(attachmentService, ticketService, fileStore)
	usersHandler := handlers.NewUsersHandler(userService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Meta:           metaHandler,
		Auth:           authHandler,
		Tickets:        ticketsHandler,
		Comments:       commentsHandler,
		Attachments:    attachmentsHandler,
		Users:          usersHandler,
		Metrics:        metrics.Handler(),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	return app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
