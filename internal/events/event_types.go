package events

import (
	"time"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketUpdated  EventType = "ticket_updated"
	EventTicketAssigned EventType = "ticket_assigned"
	EventCommentAdded   EventType = "comment_added"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID *string          `json:"user_id,omitempty"`
	Role   *domain.UserRole `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Reference string                `json:"reference"`
	Category  domain.TicketCategory `json:"category"`
	Priority  domain.TicketPriority `json:"priority"`
	Subject   string                `json:"subject"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	ChangedFields []string             `json:"changed_fields"`
	Status        *domain.TicketStatus `json:"status,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AgentID   string              `json:"agent_id"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID      string `json:"comment_id"`
	AuthorID       string `json:"author_id"`
	IsInternal     bool   `json:"is_internal"`
	ContentPreview string `json:"content_preview"`
}
