package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/api/dto"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/auth"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/service"
	apperrors "github.com/appdotbuilder/isp-helpdesk-rfo/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	tickets     *service.TicketService
	assignments *service.AssignmentService
	stats       *service.StatsService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, assignments *service.AssignmentService, stats *service.StatsService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, assignments: assignments, stats: stats}
}

// Create handles POST /tickets. Customers always open tickets for
// themselves; staff may open one on a customer's behalf by naming the
// customer id.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Description) == "" {
		return apperrors.NewValidationError("subject and description required", nil)
	}
	if !req.Category.Valid() {
		return apperrors.NewValidationError("invalid category", map[string]any{"category": req.Category})
	}
	if req.Priority != "" && !req.Priority.Valid() {
		return apperrors.NewValidationError("invalid priority", map[string]any{"priority": req.Priority})
	}

	customerID := req.CustomerID
	if principal.User.Role == domain.UserRoleCustomer {
		customerID = principal.User.ID
	} else if customerID == "" {
		return apperrors.NewValidationError("customer_id required", nil)
	}

	ticket, err := h.tickets.Create(c.Context(), service.TicketCreateInput{
		CustomerID:   customerID,
		Subject:      req.Subject,
		Description:  req.Description,
		Category:     req.Category,
		Priority:     req.Priority,
		OutageDetail: req.OutageDetail,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// List handles GET /tickets. Customers only ever see their own tickets;
// staff see everything and may filter further.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	filter, err := parseTicketListQuery(c)
	if err != nil {
		return err
	}
	if principal.User.Role == domain.UserRoleCustomer {
		customerID := principal.User.ID
		filter.CustomerID = &customerID
	}

	tickets, total, err := h.tickets.List(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	page := filter.Offset/filter.Limit + 1
	return c.JSON(fiber.Map{
		"data": items,
		"meta": dto.ListMeta{Page: page, PageSize: filter.Limit, Total: total},
	})
}

// Get handles GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.tickets.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if principal.User.Role == domain.UserRoleCustomer && ticket.CustomerID != principal.User.ID {
		return apperrors.NewForbidden("access denied")
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Update handles PATCH /tickets/:id. Only supplied fields change;
// assigned_agent_id and outage_detail accept explicit null to clear.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Category != nil && !req.Category.Valid() {
		return apperrors.NewValidationError("invalid category", map[string]any{"category": *req.Category})
	}
	if req.Priority != nil && !req.Priority.Valid() {
		return apperrors.NewValidationError("invalid priority", map[string]any{"priority": *req.Priority})
	}
	if req.Status != nil && !req.Status.Valid() {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": *req.Status})
	}

	if principal.User.Role == domain.UserRoleCustomer {
		ticket, err := h.tickets.Get(c.Context(), c.Params("id"))
		if err != nil {
			return err
		}
		if ticket.CustomerID != principal.User.ID {
			return apperrors.NewForbidden("access denied")
		}
	}

	actorID := principal.User.ID
	input := service.TicketUpdateInput{
		Subject:     req.Subject,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Status:      req.Status,
		ActorID:     &actorID,
	}
	if req.AssignedAgentID.Set {
		input.AssignedAgentIDSet = true
		if !req.AssignedAgentID.Null {
			agentID := req.AssignedAgentID.Value
			input.AssignedAgentID = &agentID
		}
	}
	if req.OutageDetail.Set {
		input.OutageDetailSet = true
		if !req.OutageDetail.Null {
			detail := req.OutageDetail.Value
			input.OutageDetail = &detail
		}
	}

	ticket, err := h.tickets.Update(c.Context(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Assign handles POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AgentID == "" {
		return apperrors.NewValidationError("agent_id required", nil)
	}

	actorID := principal.User.ID
	ticket, err := h.assignments.Assign(c.Context(), c.Params("id"), req.AgentID, &actorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Stats handles GET /tickets/stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	var agentID *string
	if val := c.Query("agent_id"); val != "" {
		agentID = &val
	}
	stats, err := h.stats.TicketStats(c.Context(), agentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": statsResponse(stats)})
}

// ListActivity handles GET /tickets/:id/activity.
func (h *TicketsHandler) ListActivity(c *fiber.Ctx) error {
	limit := parseInt(c.Query("limit"), 50)
	offset := parseOffset(c.Query("offset"))
	entries, err := h.tickets.ListActivity(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.TicketActivityResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.TicketActivityResponse{
			ID:         entry.ID,
			ChangeType: entry.ChangeType,
			ActorID:    entry.ActorID,
			OldValue:   entry.OldValue,
			NewValue:   entry.NewValue,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseTicketListQuery(c *fiber.Ctx) (service.TicketListFilter, error) {
	filter := service.TicketListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			status := domain.TicketStatus(strings.TrimSpace(part))
			if !status.Valid() {
				return filter, apperrors.NewValidationError("invalid status", map[string]any{"status": status})
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			priority := domain.TicketPriority(strings.TrimSpace(part))
			if !priority.Valid() {
				return filter, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
			}
			filter.Priorities = append(filter.Priorities, priority)
		}
	}
	if categoryStr := c.Query("category"); categoryStr != "" {
		for _, part := range strings.Split(categoryStr, ",") {
			category := domain.TicketCategory(strings.TrimSpace(part))
			if !category.Valid() {
				return filter, apperrors.NewValidationError("invalid category", map[string]any{"category": category})
			}
			filter.Categories = append(filter.Categories, category)
		}
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.SearchTerm = &search
	}
	if agentID := c.Query("agent_id"); agentID != "" {
		filter.AssignedAgentID = &agentID
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		filter.CustomerID = &customerID
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter, nil
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func parseOffset(val string) int {
	if val == "" {
		return 0
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:              ticket.ID,
		Reference:       ticket.Reference,
		Subject:         ticket.Subject,
		Description:     ticket.Description,
		Category:        ticket.Category,
		Priority:        ticket.Priority,
		Status:          ticket.Status,
		CustomerID:      ticket.CustomerID,
		AssignedAgentID: ticket.AssignedAgentID,
		OutageDetail:    ticket.OutageDetail,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
		ResolvedAt:      ticket.ResolvedAt,
	}
}

func statsResponse(stats *domain.TicketStats) dto.TicketStatsResponse {
	return dto.TicketStatsResponse{
		Total: stats.Total,
		ByStatus: dto.StatusCountsResponse{
			Open:       stats.ByStatus.Open,
			InProgress: stats.ByStatus.InProgress,
			OnHold:     stats.ByStatus.OnHold,
			Resolved:   stats.ByStatus.Resolved,
			Closed:     stats.ByStatus.Closed,
		},
		ByCategory: stats.ByCategory,
		ByPriority: stats.ByPriority,
	}
}
