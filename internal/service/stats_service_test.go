package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
)

func TestStatsServiceTicketStats(t *testing.T) {
	ctx := context.Background()

	t.Run("empty system reports zeros with initialized maps", func(t *testing.T) {
		f := newFixture()

		stats, err := f.statsSvc.TicketStats(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Total)
		assert.Equal(t, domain.StatusCounts{}, stats.ByStatus)
		assert.NotNil(t, stats.ByCategory)
		assert.NotNil(t, stats.ByPriority)
		assert.Empty(t, stats.ByCategory)
		assert.Empty(t, stats.ByPriority)
	})

	t.Run("buckets follow the ticket population", func(t *testing.T) {
		f := newFixture()
		customer := f.seedUser(t, "Dana Customer", domain.UserRoleCustomer)

		f.seedTicket(t, customer.ID, nil)
		f.seedTicket(t, customer.ID, func(tk *domain.Ticket) {
			tk.Status = domain.TicketStatusInProgress
			tk.Priority = domain.TicketPriorityHigh
		})
		f.seedTicket(t, customer.ID, func(tk *domain.Ticket) {
			tk.Status = domain.TicketStatusResolved
			tk.Category = domain.TicketCategoryBillingIssue
		})

		stats, err := f.statsSvc.TicketStats(ctx, nil)
		require.NoError(t, err)

		assert.Equal(t, 3, stats.Total)
		assert.Equal(t, 1, stats.ByStatus.Open)
		assert.Equal(t, 1, stats.ByStatus.InProgress)
		assert.Equal(t, 1, stats.ByStatus.Resolved)
		assert.Equal(t, 0, stats.ByStatus.OnHold)
		assert.Equal(t, 0, stats.ByStatus.Closed)

		assert.Equal(t, 2, stats.ByCategory[domain.TicketCategoryTechnicalSupport])
		assert.Equal(t, 1, stats.ByCategory[domain.TicketCategoryBillingIssue])
		assert.Equal(t, 2, stats.ByPriority[domain.TicketPriorityMedium])
		assert.Equal(t, 1, stats.ByPriority[domain.TicketPriorityHigh])

		// Sparse maps: untouched values never appear.
		_, present := stats.ByCategory[domain.TicketCategoryNetworkOutage]
		assert.False(t, present)
		_, present = stats.ByPriority[domain.TicketPriorityUrgent]
		assert.False(t, present)

		categoryTotal := 0
		for _, n := range stats.ByCategory {
			categoryTotal += n
		}
		assert.Equal(t, stats.Total, categoryTotal)
	})

	t.Run("agent scope counts only that agent's tickets", func(t *testing.T) {
		f := newFixture()
		customer := f.seedUser(t, "Dana Customer", domain.UserRoleCustomer)
		alex := f.seedUser(t, "Alex Agent", domain.UserRoleAgent)
		blake := f.seedUser(t, "Blake Agent", domain.UserRoleAgent)

		mine := f.seedTicket(t, customer.ID, nil)
		other := f.seedTicket(t, customer.ID, nil)
		f.seedTicket(t, customer.ID, nil)

		_, err := f.assignmentSvc.Assign(ctx, mine.ID, alex.ID, nil)
		require.NoError(t, err)
		_, err = f.assignmentSvc.Assign(ctx, other.ID, blake.ID, nil)
		require.NoError(t, err)

		stats, err := f.statsSvc.TicketStats(ctx, &alex.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Total)
		assert.Equal(t, 1, stats.ByStatus.InProgress)
		assert.Equal(t, 0, stats.ByStatus.Open)

		all, err := f.statsSvc.TicketStats(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, all.Total)
	})

	t.Run("unknown agent reports zero stats", func(t *testing.T) {
		f := newFixture()
		customer := f.seedUser(t, "Dana Customer", domain.UserRoleCustomer)
		f.seedTicket(t, customer.ID, nil)

		unknown := "no-such-agent"
		stats, err := f.statsSvc.TicketStats(ctx, &unknown)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Total)
		assert.Empty(t, stats.ByCategory)
	})
}
