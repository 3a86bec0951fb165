package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/events"
	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/repository"
)

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (d *recordingDispatcher) byType(t events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var matched []events.Event
	for _, e := range d.events {
		if e.Type == t {
			matched = append(matched, e)
		}
	}
	return matched
}

// fixture wires every service onto in-memory repositories.
type fixture struct {
	users       *repository.MemoryUserRepository
	tickets     *repository.MemoryTicketRepository
	comments    *repository.MemoryCommentRepository
	attachments *repository.MemoryAttachmentRepository
	activity    *repository.MemoryActivityRepository
	dispatcher  *recordingDispatcher

	ticketSvc     *TicketService
	assignmentSvc *AssignmentService
	commentSvc    *CommentService
	statsSvc      *StatsService
}

func newFixture() *fixture {
	f := &fixture{
		users:       repository.NewMemoryUserRepository(),
		tickets:     repository.NewMemoryTicketRepository(),
		comments:    repository.NewMemoryCommentRepository(),
		attachments: repository.NewMemoryAttachmentRepository(),
		activity:    repository.NewMemoryActivityRepository(),
		dispatcher:  &recordingDispatcher{},
	}
	f.ticketSvc = NewTicketService(TicketDependencies{
		TicketRepo:   f.tickets,
		UserRepo:     f.users,
		ActivityRepo: f.activity,
		Dispatcher:   f.dispatcher,
	})
	f.assignmentSvc = NewAssignmentService(AssignmentDependencies{
		TicketRepo:   f.tickets,
		UserRepo:     f.users,
		ActivityRepo: f.activity,
		Dispatcher:   f.dispatcher,
	})
	f.commentSvc = NewCommentService(CommentDependencies{
		CommentRepo: f.comments,
		TicketRepo:  f.tickets,
		UserRepo:    f.users,
		Dispatcher:  f.dispatcher,
	})
	f.statsSvc = NewStatsService(f.tickets)
	return f
}

func (f *fixture) attachmentService(store AttachmentStore) *AttachmentService {
	return NewAttachmentService(AttachmentDependencies{
		AttachmentRepo: f.attachments,
		TicketRepo:     f.tickets,
		UserRepo:       f.users,
		Store:          store,
		Logger:         zap.NewNop(),
	})
}

func (f *fixture) seedUser(t *testing.T, name string, role domain.UserRole) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:         name,
		Email:        strings.ReplaceAll(strings.ToLower(name), " ", ".") + "@example.net",
		PasswordHash: "irrelevant",
		Role:         role,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *fixture) seedTicket(t *testing.T, customerID string, mutate func(*domain.Ticket)) *domain.Ticket {
	t.Helper()
	ticket, err := f.ticketSvc.Create(context.Background(), TicketCreateInput{
		CustomerID:  customerID,
		Subject:     "no connection since this morning",
		Description: "modem LEDs are all red",
		Category:    domain.TicketCategoryTechnicalSupport,
	})
	require.NoError(t, err)
	if mutate != nil {
		mutate(ticket)
		require.NoError(t, f.tickets.Update(context.Background(), ticket))
	}
	return ticket
}

func strPtr(s string) *string { return &s }

func statusPtr(s domain.TicketStatus) *domain.TicketStatus { return &s }

func priorityPtr(p domain.TicketPriority) *domain.TicketPriority { return &p }

func categoryPtr(c domain.TicketCategory) *domain.TicketCategory { return &c }
