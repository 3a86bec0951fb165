package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
)

// MetaHandler serves static API metadata such as the enum values behind
// client dropdowns.
type MetaHandler struct{}

// NewMetaHandler constructs handler.
func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

// Enums handles GET /meta/enums.
func (h *MetaHandler) Enums(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"roles":      domain.UserRoles,
			"categories": domain.TicketCategories,
			"priorities": domain.TicketPriorities,
			"statuses":   domain.TicketStatuses,
		},
	})
}
