package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/persistence"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/storage"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    *persistence.Postgres
	redis       *persistence.Redis
	store       *storage.LocalStore
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis, store *storage.LocalStore) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, postgres: postgres, redis: redis, store: store}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness. All dependencies are checked even
// after the first failure; the response carries a status per dependency.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	probes := []struct {
		name  string
		check func(context.Context) error
	}{
		{"postgres", h.postgres.Ping},
		{"redis", h.redis.Ping},
		{"storage", func(context.Context) error { return h.store.Check() }},
	}

	depStatus := fiber.Map{}
	ready := true
	for _, dep := range probes {
		if err := dep.check(ctx); err != nil {
			depStatus[dep.name] = err.Error()
			ready = false
			continue
		}
		depStatus[dep.name] = "ok"
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}
