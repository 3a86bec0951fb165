package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/events"
	apperrors "github.com/appdotbuilder/isp-helpdesk-rfo/pkg/util"
)

func TestAssignmentServiceAssign(t *testing.T) {
	ctx := context.Background()

	t.Run("assigning an open ticket moves it to in_progress", func(t *testing.T) {
		f := newFixture()
		customer := f.seedUser(t, "Dana Customer", domain.UserRoleCustomer)
		agent := f.seedUser(t, "Alex Agent", domain.UserRoleAgent)
		ticket := f.seedTicket(t, customer.ID, nil)

		assigned, err := f.assignmentSvc.Assign(ctx, ticket.ID, agent.ID, nil)
		require.NoError(t, err)
		require.NotNil(t, assigned.AssignedAgentID)
		assert.Equal(t, agent.ID, *assigned.AssignedAgentID)
		assert.Equal(t, domain.TicketStatusInProgress, assigned.Status)
	})

	t.Run("non-open status stays as it is", func(t *testing.T) {
		f := newFixture()
		customer := f.seedUser(t, "Dana Customer", domain.UserRoleCustomer)
		agent := f.seedUser(t, "Alex Agent", domain.UserRoleAgent)

		for _, status := range []domain.TicketStatus{
			domain.TicketStatusInProgress,
			domain.TicketStatusOnHold,
			domain.TicketStatusResolved,
			domain.TicketStatusClosed,
		} {
			ticket := f.seedTicket(t, customer.ID, func(tk *domain.Ticket) {
				tk.Status = status
			})

			assigned, err := f.assignmentSvc.Assign(ctx, ticket.ID, agent.ID, nil)
			require.NoError(t, err)
			assert.Equal(t, status, assigned.Status, "status %s must not move", status)
		}
	})

	t.Run("assignment never clears the resolution stamp", func(t *testing.T) {
		f := newFixture()
		customer := f.seedUser(t, "Dana Customer", domain.UserRoleCustomer)
		agent := f.seedUser(t, "Alex Agent", domain.UserRoleAgent)
		ticket := f.seedTicket(t, customer.ID, nil)

		_, err := f.ticketSvc.Update(ctx, ticket.ID, TicketUpdateInput{
			Status: statusPtr(domain.TicketStatusResolved),
		})
		require.NoError(t, err)

		assigned, err := f.assignmentSvc.Assign(ctx, ticket.ID, agent.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusResolved, assigned.Status)
		assert.NotNil(t, assigned.ResolvedAt)
	})

	t.Run("unknown agent reports not found before the ticket is touched", func(t *testing.T) {
		f := newFixture()
		customer := f.seedUser(t, "Dana Customer", domain.UserRoleCustomer)
		ticket := f.seedTicket(t, customer.ID, nil)

		_, err := f.assignmentSvc.Assign(ctx, ticket.ID, "no-such-agent", nil)
		var de *apperrors.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "NOT_FOUND", de.Code)
		assert.Equal(t, "no-such-agent", de.Details["user_id"])

		unchanged, err := f.ticketSvc.Get(ctx, ticket.ID)
		require.NoError(t, err)
		assert.Nil(t, unchanged.AssignedAgentID)
		assert.Equal(t, domain.TicketStatusOpen, unchanged.Status)
	})

	t.Run("customer as assignee reports invalid role", func(t *testing.T) {
		f := newFixture()
		customer := f.seedUser(t, "Dana Customer", domain.UserRoleCustomer)
		ticket := f.seedTicket(t, customer.ID, nil)

		_, err := f.assignmentSvc.Assign(ctx, ticket.ID, customer.ID, nil)
		var de *apperrors.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_ROLE", de.Code)
	})

	t.Run("admin as assignee reports invalid role", func(t *testing.T) {
		f := newFixture()
		customer := f.seedUser(t, "Dana Customer", domain.UserRoleCustomer)
		admin := f.seedUser(t, "Ava Admin", domain.UserRoleAdmin)
		ticket := f.seedTicket(t, customer.ID, nil)

		_, err := f.assignmentSvc.Assign(ctx, ticket.ID, admin.ID, nil)
		var de *apperrors.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_ROLE", de.Code)
	})

	t.Run("missing ticket reports not found", func(t *testing.T) {
		f := newFixture()
		agent := f.seedUser(t, "Alex Agent", domain.UserRoleAgent)

		_, err := f.assignmentSvc.Assign(ctx, "no-such-ticket", agent.ID, nil)
		var de *apperrors.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "NOT_FOUND", de.Code)
		assert.Equal(t, "no-such-ticket", de.Details["ticket_id"])
	})

	t.Run("records assignment and status activity", func(t *testing.T) {
		f := newFixture()
		customer := f.seedUser(t, "Dana Customer", domain.UserRoleCustomer)
		agent := f.seedUser(t, "Alex Agent", domain.UserRoleAgent)
		admin := f.seedUser(t, "Ava Admin", domain.UserRoleAdmin)
		ticket := f.seedTicket(t, customer.ID, nil)

		_, err := f.assignmentSvc.Assign(ctx, ticket.ID, agent.ID, &admin.ID)
		require.NoError(t, err)

		entries, err := f.activity.ListByTicket(ctx, ticket.ID, 50, 0)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, domain.ChangeTypeAssignment, entries[0].ChangeType)
		assert.Equal(t, domain.ChangeTypeStatus, entries[1].ChangeType)
		require.NotNil(t, entries[0].ActorID)
		assert.Equal(t, admin.ID, *entries[0].ActorID)
	})

	t.Run("reassigning the same agent skips the assignment entry", func(t *testing.T) {
		f := newFixture()
		customer := f.seedUser(t, "Dana Customer", domain.UserRoleCustomer)
		agent := f.seedUser(t, "Alex Agent", domain.UserRoleAgent)
		ticket := f.seedTicket(t, customer.ID, nil)

		_, err := f.assignmentSvc.Assign(ctx, ticket.ID, agent.ID, nil)
		require.NoError(t, err)
		_, err = f.assignmentSvc.Assign(ctx, ticket.ID, agent.ID, nil)
		require.NoError(t, err)

		entries, err := f.activity.ListByTicket(ctx, ticket.ID, 50, 0)
		require.NoError(t, err)
		// first assign: assignment + status move; second assign: nothing new
		assert.Len(t, entries, 2)
	})

	t.Run("publishes ticket_assigned with old and new status", func(t *testing.T) {
		f := newFixture()
		customer := f.seedUser(t, "Dana Customer", domain.UserRoleCustomer)
		agent := f.seedUser(t, "Alex Agent", domain.UserRoleAgent)
		ticket := f.seedTicket(t, customer.ID, nil)

		_, err := f.assignmentSvc.Assign(ctx, ticket.ID, agent.ID, nil)
		require.NoError(t, err)

		published := f.dispatcher.byType(events.EventTicketAssigned)
		require.Len(t, published, 1)
		payload, ok := published[0].Payload.(events.TicketAssignedPayload)
		require.True(t, ok)
		assert.Equal(t, agent.ID, payload.AgentID)
		assert.Equal(t, domain.TicketStatusOpen, payload.OldStatus)
		assert.Equal(t, domain.TicketStatusInProgress, payload.NewStatus)
	})
}

// TestTicketLifecycleWalkthrough follows one ticket from creation through
// assignment to resolution.
func TestTicketLifecycleWalkthrough(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	customer := f.seedUser(t, "Dana Customer", domain.UserRoleCustomer)
	agent := f.seedUser(t, "Alex Agent", domain.UserRoleAgent)

	ticket, err := f.ticketSvc.Create(ctx, TicketCreateInput{
		CustomerID:  customer.ID,
		Subject:     "area-wide outage",
		Description: "whole street offline",
		Category:    domain.TicketCategoryNetworkOutage,
		Priority:    domain.TicketPriorityUrgent,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Nil(t, ticket.AssignedAgentID)

	assigned, err := f.assignmentSvc.Assign(ctx, ticket.ID, agent.ID, &agent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, assigned.Status)
	require.NotNil(t, assigned.AssignedAgentID)
	assert.Equal(t, agent.ID, *assigned.AssignedAgentID)

	resolved, err := f.ticketSvc.Update(ctx, ticket.ID, TicketUpdateInput{
		Status:  statusPtr(domain.TicketStatusResolved),
		ActorID: &agent.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)

	entries, err := f.ticketSvc.ListActivity(ctx, ticket.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, domain.ChangeTypeAssignment, entries[0].ChangeType)
	assert.Equal(t, domain.ChangeTypeStatus, entries[1].ChangeType)
	assert.Equal(t, domain.ChangeTypeStatus, entries[2].ChangeType)
	assert.Equal(t, domain.TicketStatusResolved, entries[2].NewValue["status"])
}
