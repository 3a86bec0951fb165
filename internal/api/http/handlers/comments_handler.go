package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/api/dto"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/auth"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/service"
	apperrors "github.com/appdotbuilder/isp-helpdesk-rfo/pkg/util"
)

// CommentsHandler manages ticket comment endpoints.
type CommentsHandler struct {
	comments *service.CommentService
	tickets  *service.TicketService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(comments *service.CommentService, tickets *service.TicketService) *CommentsHandler {
	return &CommentsHandler{comments: comments, tickets: tickets}
}

// Create handles POST /tickets/:id/comments. Internal comments are a staff
// tool; customers can only post visible ones, and only on their own
// tickets.
func (h *CommentsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Content) == "" {
		return apperrors.NewValidationError("content required", nil)
	}

	isInternal := req.IsInternal != nil && *req.IsInternal
	if isInternal && !principal.Staff() {
		return apperrors.NewForbidden("internal comments are restricted to staff")
	}
	if principal.User.Role == domain.UserRoleCustomer {
		if err := h.requireOwnership(c, principal); err != nil {
			return err
		}
	}

	comment, err := h.comments.Create(c.Context(), service.CommentCreateInput{
		TicketID:   c.Params("id"),
		AuthorID:   principal.User.ID,
		Content:    req.Content,
		IsInternal: isInternal,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// List handles GET /tickets/:id/comments. The include_internal flag is
// honored for staff only; everyone else gets the public thread. A ticket
// id that matches nothing yields an empty list.
func (h *CommentsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	if principal.User.Role == domain.UserRoleCustomer {
		ticket, err := h.tickets.Get(c.Context(), c.Params("id"))
		if err != nil {
			var domainErr *apperrors.DomainError
			if errors.As(err, &domainErr) && domainErr.Code == "NOT_FOUND" {
				return c.JSON(fiber.Map{"data": []dto.CommentResponse{}})
			}
			return err
		}
		if ticket.CustomerID != principal.User.ID {
			return apperrors.NewForbidden("access denied")
		}
	}

	includeInternal := c.QueryBool("include_internal") && principal.Staff()
	comments, err := h.comments.ListForTicket(c.Context(), c.Params("id"), includeInternal)
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, commentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Update handles PATCH /comments/:id.
func (h *CommentsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Content != nil && strings.TrimSpace(*req.Content) == "" {
		return apperrors.NewValidationError("content cannot be empty", nil)
	}

	comment, err := h.comments.Update(c.Context(), c.Params("id"), service.CommentUpdateInput{
		Content:    req.Content,
		IsInternal: req.IsInternal,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": commentResponse(comment)})
}

func (h *CommentsHandler) requireOwnership(c *fiber.Ctx, principal *auth.Principal) error {
	ticket, err := h.tickets.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if ticket.CustomerID != principal.User.ID {
		return apperrors.NewForbidden("access denied")
	}
	return nil
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         comment.ID,
		TicketID:   comment.TicketID,
		AuthorID:   comment.AuthorID,
		Content:    comment.Content,
		IsInternal: comment.IsInternal,
		CreatedAt:  comment.CreatedAt,
		UpdatedAt:  comment.UpdatedAt,
	}
}
