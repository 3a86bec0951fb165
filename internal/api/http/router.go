package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/api/http/handlers"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/auth"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Meta           *handlers.MetaHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Attachments    *handlers.AttachmentsHandler
	Users          *handlers.UsersHandler
	Metrics        fiber.Handler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	app.Get("/meta/enums", cfg.Meta.Enums)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	// the static stats path must be registered before the :id routes
	tickets.Get("/stats", auth.RequireStaff(), cfg.Tickets.Stats)
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/", cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Patch("/:id", cfg.Tickets.Update)
	tickets.Post("/:id/assign", auth.RequireStaff(), cfg.Tickets.Assign)
	tickets.Get("/:id/activity", auth.RequireStaff(), cfg.Tickets.ListActivity)
	tickets.Post("/:id/comments", cfg.Comments.Create)
	tickets.Get("/:id/comments", cfg.Comments.List)
	tickets.Post("/:id/attachments", cfg.Attachments.Create)
	tickets.Get("/:id/attachments", cfg.Attachments.List)

	comments := app.Group("/comments", cfg.AuthMiddleware.Handle, auth.RequireStaff())
	comments.Patch("/:id", cfg.Comments.Update)

	attachments := app.Group("/attachments", cfg.AuthMiddleware.Handle, auth.RequireStaff())
	attachments.Delete("/:id", cfg.Attachments.Delete)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.UserRoleAdmin))
	admin.Post("/users", cfg.Users.Create)
	admin.Get("/users", cfg.Users.List)
	admin.Get("/users/:id", cfg.Users.Get)
}
