package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/events"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/repository"
	apperrors "github.com/appdotbuilder/isp-helpdesk-rfo/pkg/util"
)

// TicketService coordinates the ticket lifecycle: creation, field updates
// and the reads backing ticket lists and audit trails.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	activity   repository.ActivityRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	UserRepo     repository.UserRepository
	ActivityRepo repository.ActivityRepository
	Dispatcher   events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	CustomerID   string
	Subject      string
	Description  string
	Category     domain.TicketCategory
	Priority     domain.TicketPriority
	OutageDetail *domain.OutageDetail
}

// TicketUpdateInput carries the mutable ticket fields. Nil pointers mean
// "leave unchanged". AssignedAgentID and OutageDetail are nullable columns,
// so they carry an extra Set flag: Set with a nil value clears the column.
type TicketUpdateInput struct {
	Subject            *string
	Description        *string
	Category           *domain.TicketCategory
	Priority           *domain.TicketPriority
	Status             *domain.TicketStatus
	AssignedAgentID    *string
	AssignedAgentIDSet bool
	OutageDetail       *domain.OutageDetail
	OutageDetailSet    bool
	ActorID            *string
}

// TicketListFilter describes listing filters for tickets.
type TicketListFilter struct {
	CustomerID      *string
	AssignedAgentID *string
	Statuses        []domain.TicketStatus
	Priorities      []domain.TicketPriority
	Categories      []domain.TicketCategory
	SearchTerm      *string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
	Limit           int
	Offset          int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		activity:   deps.ActivityRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Create opens a new ticket for a customer. The customer must exist and
// hold the customer role; status always starts at open with no agent and
// no resolution timestamp. An outage detail is stored whenever supplied,
// whatever the category.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	customer, err := s.users.GetByID(ctx, input.CustomerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": input.CustomerID})
		}
		return nil, err
	}
	if customer.Role != domain.UserRoleCustomer {
		return nil, apperrors.NewInvalidRole("ticket customer must have the customer role", map[string]any{
			"user_id": customer.ID,
			"role":    customer.Role,
		})
	}

	ticket := &domain.Ticket{
		Reference:    generateTicketReference(),
		Subject:      strings.TrimSpace(input.Subject),
		Description:  strings.TrimSpace(input.Description),
		Category:     input.Category,
		Priority:     input.Priority,
		Status:       domain.TicketStatusOpen,
		CustomerID:   customer.ID,
		OutageDetail: input.OutageDetail,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    userActor(customer),
		Payload: events.TicketCreatedPayload{
			Reference: ticket.Reference,
			Category:  ticket.Category,
			Priority:  ticket.Priority,
			Subject:   ticket.Subject,
		},
	})
	return ticket, nil
}

// Update applies a partial modification to a ticket. Only supplied fields
// change. A supplied resolved status stamps ResolvedAt with the current
// time; moving away from resolved never clears it.
func (s *TicketService) Update(ctx context.Context, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}

	if input.AssignedAgentIDSet && input.AssignedAgentID != nil {
		if err := s.requireAgent(ctx, *input.AssignedAgentID); err != nil {
			return nil, err
		}
	}

	oldStatus := ticket.Status
	oldPriority := ticket.Priority
	oldAgentID := ticket.AssignedAgentID

	var changed []string
	if input.Subject != nil {
		ticket.Subject = strings.TrimSpace(*input.Subject)
		changed = append(changed, "subject")
	}
	if input.Description != nil {
		ticket.Description = strings.TrimSpace(*input.Description)
		changed = append(changed, "description")
	}
	if input.Category != nil {
		ticket.Category = *input.Category
		changed = append(changed, "category")
	}
	if input.Priority != nil {
		ticket.Priority = *input.Priority
		changed = append(changed, "priority")
	}
	if input.Status != nil {
		ticket.Status = *input.Status
		changed = append(changed, "status")
		if *input.Status == domain.TicketStatusResolved {
			now := time.Now()
			ticket.ResolvedAt = &now
		}
	}
	if input.AssignedAgentIDSet {
		ticket.AssignedAgentID = input.AssignedAgentID
		changed = append(changed, "assigned_agent_id")
	}
	if input.OutageDetailSet {
		ticket.OutageDetail = input.OutageDetail
		changed = append(changed, "outage_detail")
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	if ticket.Status != oldStatus {
		if err := s.recordActivity(ctx, ticket.ID, input.ActorID, domain.ChangeTypeStatus,
			map[string]any{"status": oldStatus},
			map[string]any{"status": ticket.Status},
		); err != nil {
			return nil, err
		}
	}
	if ticket.Priority != oldPriority {
		if err := s.recordActivity(ctx, ticket.ID, input.ActorID, domain.ChangeTypePriority,
			map[string]any{"priority": oldPriority},
			map[string]any{"priority": ticket.Priority},
		); err != nil {
			return nil, err
		}
	}
	if !equalStringPtr(ticket.AssignedAgentID, oldAgentID) {
		if err := s.recordActivity(ctx, ticket.ID, input.ActorID, domain.ChangeTypeAssignment,
			map[string]any{"assigned_agent_id": oldAgentID},
			map[string]any{"assigned_agent_id": ticket.AssignedAgentID},
		); err != nil {
			return nil, err
		}
	}

	var statusPtr *domain.TicketStatus
	if input.Status != nil {
		status := ticket.Status
		statusPtr = &status
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: input.ActorID},
		Payload: events.TicketUpdatedPayload{
			ChangedFields: changed,
			Status:        statusPtr,
		},
	})
	return ticket, nil
}

// Get returns one ticket by id.
func (s *TicketService) Get(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	return ticket, nil
}

// List returns a page of tickets plus the total match count.
func (s *TicketService) List(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, int, error) {
	repoFilter := repository.TicketFilter{
		CustomerID:      filter.CustomerID,
		AssignedAgentID: filter.AssignedAgentID,
		Statuses:        filter.Statuses,
		Priorities:      filter.Priorities,
		Categories:      filter.Categories,
		SearchTerm:      filter.SearchTerm,
		CreatedFrom:     filter.CreatedFrom,
		CreatedTo:       filter.CreatedTo,
		Limit:           filter.Limit,
		Offset:          filter.Offset,
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.tickets.CountWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

// ListActivity returns the audit trail for a ticket, oldest first.
func (s *TicketService) ListActivity(ctx context.Context, ticketID string, limit, offset int) ([]domain.TicketActivity, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	return s.activity.ListByTicket(ctx, ticketID, limit, offset)
}

// requireAgent verifies the referenced user exists and holds the agent role.
func (s *TicketService) requireAgent(ctx context.Context, agentID string) error {
	agent, err := s.users.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": agentID})
		}
		return err
	}
	if agent.Role != domain.UserRoleAgent {
		return apperrors.NewInvalidRole("assigned user must have the agent role", map[string]any{
			"user_id": agent.ID,
			"role":    agent.Role,
		})
	}
	return nil
}

func (s *TicketService) recordActivity(ctx context.Context, ticketID string, actorID *string, changeType domain.TicketChangeType, oldValue, newValue map[string]any) error {
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

func generateTicketReference() string {
	return "HD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}

func userActor(user *domain.User) events.Actor {
	if user == nil {
		return events.Actor{}
	}
	role := user.Role
	return events.Actor{UserID: &user.ID, Role: &role}
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
