package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/api/dto"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/auth"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/service"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/storage"
	apperrors "github.com/appdotbuilder/isp-helpdesk-rfo/pkg/util"
)

// AttachmentsHandler manages ticket attachment endpoints.
type AttachmentsHandler struct {
	attachments *service.AttachmentService
	tickets     *service.TicketService
	store       *storage.LocalStore
}

// NewAttachmentsHandler constructs handler.
func NewAttachmentsHandler(attachments *service.AttachmentService, tickets *service.TicketService, store *storage.LocalStore) *AttachmentsHandler {
	return &AttachmentsHandler{attachments: attachments, tickets: tickets, store: store}
}

// Create handles POST /tickets/:id/attachments. A multipart request with a
// "file" part stores the file through the local store; a JSON body
// registers metadata for content that already lives elsewhere.
func (h *AttachmentsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
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

	input := service.AttachmentCreateInput{
		TicketID:   c.Params("id"),
		UploaderID: principal.User.ID,
	}

	if fileHeader, err := c.FormFile("file"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			return apperrors.NewValidationError("unreadable file upload", nil)
		}
		defer file.Close()

		path, size, err := h.store.Save(fileHeader.Filename, file)
		if err != nil {
			return err
		}
		input.FileName = fileHeader.Filename
		input.StoragePath = path
		input.SizeBytes = size
		input.MimeType = fileHeader.Header.Get("Content-Type")
		if input.MimeType == "" {
			input.MimeType = "application/octet-stream"
		}
	} else {
		var req dto.CreateAttachmentRequest
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		if strings.TrimSpace(req.FileName) == "" {
			return apperrors.NewValidationError("file_name required", nil)
		}
		input.FileName = req.FileName
		input.StoragePath = req.StoragePath
		input.MimeType = req.MimeType
		input.SizeBytes = req.SizeBytes
	}

	attachment, err := h.attachments.Create(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": attachmentResponse(attachment)})
}

// List handles GET /tickets/:id/attachments. Unlike comments, a missing
// ticket is an error here.
func (h *AttachmentsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
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

	attachments, err := h.attachments.ListForTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		items = append(items, attachmentResponse(&attachments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Delete handles DELETE /attachments/:id. A missing attachment reports
// deleted=false instead of an error.
func (h *AttachmentsHandler) Delete(c *fiber.Ctx) error {
	deleted, err := h.attachments.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DeleteAttachmentResponse{Deleted: deleted}})
}

func attachmentResponse(attachment *domain.Attachment) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		ID:         attachment.ID,
		TicketID:   attachment.TicketID,
		UploaderID: attachment.UploaderID,
		FileName:   attachment.FileName,
		MimeType:   attachment.MimeType,
		SizeBytes:  attachment.SizeBytes,
		CreatedAt:  attachment.CreatedAt,
	}
}
