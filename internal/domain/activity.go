package domain

import "time"

// TicketChangeType captures what changed in an activity entry.
type TicketChangeType string

const (
	ChangeTypeStatus     TicketChangeType = "status_change"
	ChangeTypeAssignment TicketChangeType = "assignment_change"
	ChangeTypePriority   TicketChangeType = "priority_change"
)

// TicketActivity is an immutable audit trail entry recorded whenever a
// ticket's status, priority or assignee changes.
type TicketActivity struct {
	ID         string
	TicketID   string
	ActorID    *string
	ChangeType TicketChangeType
	OldValue   map[string]any
	NewValue   map[string]any
	CreatedAt  time.Time
}
