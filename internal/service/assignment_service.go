package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/events"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/repository"
	apperrors "github.com/appdotbuilder/isp-helpdesk-rfo/pkg/util"
)

// AssignmentService handles agent assignment, the one operation that moves
// ticket status automatically.
type AssignmentService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	activity   repository.ActivityRepository
	dispatcher events.Dispatcher
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	TicketRepo   repository.TicketRepository
	UserRepo     repository.UserRepository
	ActivityRepo repository.ActivityRepository
	Dispatcher   events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		activity:   deps.ActivityRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Assign puts a ticket into an agent's hands. The agent must exist and hold
// the agent role. A ticket still open advances to in_progress; any other
// status stays as it is, so assignment never un-resolves or reopens work.
func (s *AssignmentService) Assign(ctx context.Context, ticketID, agentID string, actorID *string) (*domain.Ticket, error) {
	agent, err := s.users.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": agentID})
		}
		return nil, err
	}
	if agent.Role != domain.UserRoleAgent {
		return nil, apperrors.NewInvalidRole("assigned user must have the agent role", map[string]any{
			"user_id": agent.ID,
			"role":    agent.Role,
		})
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}

	oldStatus := ticket.Status
	oldAgentID := ticket.AssignedAgentID
	ticket.AssignedAgentID = &agent.ID
	if ticket.Status == domain.TicketStatusOpen {
		ticket.Status = domain.TicketStatusInProgress
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	if !equalStringPtr(ticket.AssignedAgentID, oldAgentID) {
		if err := s.recordActivity(ctx, ticket.ID, actorID, domain.ChangeTypeAssignment,
			map[string]any{"assigned_agent_id": oldAgentID},
			map[string]any{"assigned_agent_id": ticket.AssignedAgentID},
		); err != nil {
			return nil, err
		}
	}
	if ticket.Status != oldStatus {
		if err := s.recordActivity(ctx, ticket.ID, actorID, domain.ChangeTypeStatus,
			map[string]any{"status": oldStatus},
			map[string]any{"status": ticket.Status},
		); err != nil {
			return nil, err
		}
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: actorID},
		Payload: events.TicketAssignedPayload{
			AgentID:   agent.ID,
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
	return ticket, nil
}

func (s *AssignmentService) recordActivity(ctx context.Context, ticketID string, actorID *string, changeType domain.TicketChangeType, oldValue, newValue map[string]any) error {
	if s.activity == nil {
		return nil
	}
	entry := &domain.TicketActivity{
		TicketID:   ticketID,
		ActorID:    actorID,
		ChangeType: changeType,
		OldValue:   oldValue,
		NewValue:   newValue,
	}
	return s.activity.Create(ctx, entry)
}
