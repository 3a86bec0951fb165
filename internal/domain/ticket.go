package domain

import (
	"slices"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusOnHold     TicketStatus = "on_hold"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketStatuses lists every status the API accepts.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusOnHold,
	TicketStatusResolved,
	TicketStatusClosed,
}

func (s TicketStatus) Valid() bool {
	return slices.Contains(TicketStatuses, s)
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// TicketPriorities lists every priority the API accepts.
var TicketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityUrgent,
}

func (p TicketPriority) Valid() bool {
	return slices.Contains(TicketPriorities, p)
}

// TicketCategory classifies the kind of help being asked for. "rfo" tickets
// carry the reason-for-outage reports sent to business customers after an
// incident.
type TicketCategory string

const (
	TicketCategoryNetworkOutage    TicketCategory = "network_outage"
	TicketCategoryBillingIssue     TicketCategory = "billing_issue"
	TicketCategoryTechnicalSupport TicketCategory = "technical_support"
	TicketCategoryServiceUpgrade   TicketCategory = "service_upgrade"
	TicketCategoryRFO              TicketCategory = "rfo"
)

// TicketCategories lists every category the API accepts.
var TicketCategories = []TicketCategory{
	TicketCategoryNetworkOutage,
	TicketCategoryBillingIssue,
	TicketCategoryTechnicalSupport,
	TicketCategoryServiceUpgrade,
	TicketCategoryRFO,
}

func (c TicketCategory) Valid() bool {
	return slices.Contains(TicketCategories, c)
}

// OutageDetail is the structured incident record attached to outage and RFO
// tickets. It is stored whenever the caller supplies one, whatever the
// category.
type OutageDetail struct {
	Cause            string     `json:"cause"`
	StartedAt        time.Time  `json:"started_at"`
	RestoredAt       *time.Time `json:"restored_at"`
	AffectedServices []string   `json:"affected_services"`
	Summary          string     `json:"summary"`
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID              string
	Reference       string
	Subject         string
	Description     string
	Category        TicketCategory
	Priority        TicketPriority
	Status          TicketStatus
	CustomerID      string
	AssignedAgentID *string
	OutageDetail    *OutageDetail
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ResolvedAt      *time.Time
}
