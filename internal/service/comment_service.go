package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/events"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/repository"
	apperrors "github.com/appdotbuilder/isp-helpdesk-rfo/pkg/util"
)

// CommentService manages the message thread under a ticket.
type CommentService struct {
	comments   repository.CommentRepository
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// CommentDependencies bundles collaborators.
type CommentDependencies struct {
	CommentRepo repository.CommentRepository
	TicketRepo  repository.TicketRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
}

// CommentCreateInput describes comment creation payload.
type CommentCreateInput struct {
	TicketID   string
	AuthorID   string
	Content    string
	IsInternal bool
}

// CommentUpdateInput carries the mutable comment fields; nil means leave
// unchanged.
type CommentUpdateInput struct {
	Content    *string
	IsInternal *bool
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		comments:   deps.CommentRepo,
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Create appends a comment to a ticket thread. Both the ticket and the
// author must exist. Posting a comment counts as ticket activity, so the
// parent ticket's UpdatedAt is refreshed alongside.
func (s *CommentService) Create(ctx context.Context, input CommentCreateInput) (*domain.Comment, error) {
	ticket, err := s.tickets.GetByID(ctx, input.TicketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": input.TicketID})
		}
		return nil, err
	}
	author, err := s.users.GetByID(ctx, input.AuthorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": input.AuthorID})
		}
		return nil, err
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		AuthorID:   author.ID,
		Content:    strings.TrimSpace(input.Content),
		IsInternal: input.IsInternal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	if err := s.tickets.TouchUpdated(ctx, ticket.ID); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticket.ID,
		Actor:    userActor(author),
		Payload: events.CommentAddedPayload{
			CommentID:      comment.ID,
			AuthorID:       author.ID,
			IsInternal:     comment.IsInternal,
			ContentPreview: stringPreview(comment.Content, 120),
		},
	})
	return comment, nil
}

// Update modifies a comment in place. Only supplied fields change; an
// empty input returns the stored comment untouched. CreatedAt never moves.
func (s *CommentService) Update(ctx context.Context, commentID string, input CommentUpdateInput) (*domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("comment", map[string]any{"comment_id": commentID})
		}
		return nil, err
	}

	if input.Content == nil && input.IsInternal == nil {
		return comment, nil
	}

	if input.Content != nil {
		comment.Content = strings.TrimSpace(*input.Content)
	}
	if input.IsInternal != nil {
		comment.IsInternal = *input.IsInternal
	}
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListForTicket returns a ticket's comments oldest first. Internal comments
// are stripped unless includeInternal is set. A ticket id that matches
// nothing yields an empty list, never an error.
func (s *CommentService) ListForTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.Comment, error) {
	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if includeInternal {
		return comments, nil
	}
	visible := make([]domain.Comment, 0, len(comments))
	for _, comment := range comments {
		if comment.IsInternal {
			continue
		}
		visible = append(visible, comment)
	}
	return visible, nil
}
