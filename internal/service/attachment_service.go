package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/repository"
	apperrors "github.com/appdotbuilder/isp-helpdesk-rfo/pkg/util"
)

// AttachmentStore removes stored attachment files once their metadata rows
// are gone.
type AttachmentStore interface {
	Remove(path string) error
}

// AttachmentService manages file metadata under tickets. The database row
// is the authoritative record; the file on disk follows it best effort.
type AttachmentService struct {
	attachments repository.AttachmentRepository
	tickets     repository.TicketRepository
	users       repository.UserRepository
	store       AttachmentStore
	logger      *zap.Logger
}

// AttachmentDependencies bundles collaborators.
type AttachmentDependencies struct {
	AttachmentRepo repository.AttachmentRepository
	TicketRepo     repository.TicketRepository
	UserRepo       repository.UserRepository
	Store          AttachmentStore
	Logger         *zap.Logger
}

// AttachmentCreateInput describes attachment metadata registration.
type AttachmentCreateInput struct {
	TicketID    string
	UploaderID  string
	FileName    string
	StoragePath string
	MimeType    string
	SizeBytes   int64
}

// NewAttachmentService constructs the service.
func NewAttachmentService(deps AttachmentDependencies) *AttachmentService {
	return &AttachmentService{
		attachments: deps.AttachmentRepo,
		tickets:     deps.TicketRepo,
		users:       deps.UserRepo,
		store:       deps.Store,
		logger:      deps.Logger,
	}
}

// Create registers attachment metadata on a ticket. Both the ticket and the
// uploader must exist. No size or content-type policy is applied here.
func (s *AttachmentService) Create(ctx context.Context, input AttachmentCreateInput) (*domain.Attachment, error) {
	ticket, err := s.tickets.GetByID(ctx, input.TicketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": input.TicketID})
		}
		return nil, err
	}
	uploader, err := s.users.GetByID(ctx, input.UploaderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": input.UploaderID})
		}
		return nil, err
	}

	attachment := &domain.Attachment{
		TicketID:    ticket.ID,
		UploaderID:  uploader.ID,
		FileName:    input.FileName,
		StoragePath: input.StoragePath,
		MimeType:    input.MimeType,
		SizeBytes:   input.SizeBytes,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, err
	}
	return attachment, nil
}

// Delete removes an attachment. A missing id reports (false, nil) rather
// than an error. The row is deleted first; removing the underlying file is
// best effort and a failure there is logged, never surfaced, because the
// database deletion must stand.
func (s *AttachmentService) Delete(ctx context.Context, id string) (bool, error) {
	attachment, err := s.attachments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	if err := s.attachments.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	if s.store != nil {
		if err := s.store.Remove(attachment.StoragePath); err != nil {
			s.logger.Warn("attachment file removal failed",
				zap.String("attachment_id", attachment.ID),
				zap.String("path", attachment.StoragePath),
				zap.Error(err),
			)
		}
	}
	return true, nil
}

// ListForTicket returns a ticket's attachments oldest first. Unlike the
// comment listing, a missing ticket is an error here.
func (s *AttachmentService) ListForTicket(ctx context.Context, ticketID string) ([]domain.Attachment, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	return s.attachments.ListByTicket(ctx, ticketID)
}
