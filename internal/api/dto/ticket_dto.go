package dto

import (
	"time"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	CustomerID   string                `json:"customer_id"`
	Subject      string                `json:"subject"`
	Description  string                `json:"description"`
	Category     domain.TicketCategory `json:"category"`
	Priority     domain.TicketPriority `json:"priority"`
	OutageDetail *domain.OutageDetail  `json:"outage_detail"`
}

// UpdateTicketRequest payload. Every field is optional; assigned_agent_id
// and outage_detail additionally distinguish "set to null" from "absent".
type UpdateTicketRequest struct {
	Subject         *string                       `json:"subject"`
	Description     *string                       `json:"description"`
	Category        *domain.TicketCategory        `json:"category"`
	Priority        *domain.TicketPriority        `json:"priority"`
	Status          *domain.TicketStatus          `json:"status"`
	AssignedAgentID Optional[string]              `json:"assigned_agent_id"`
	OutageDetail    Optional[domain.OutageDetail] `json:"outage_detail"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AgentID string `json:"agent_id"`
}

// TicketResponse is the full ticket representation returned by every
// ticket endpoint.
type TicketResponse struct {
	ID              string                `json:"id"`
	Reference       string                `json:"reference"`
	Subject         string                `json:"subject"`
	Description     string                `json:"description"`
	Category        domain.TicketCategory `json:"category"`
	Priority        domain.TicketPriority `json:"priority"`
	Status          domain.TicketStatus   `json:"status"`
	CustomerID      string                `json:"customer_id"`
	AssignedAgentID *string               `json:"assigned_agent_id"`
	OutageDetail    *domain.OutageDetail  `json:"outage_detail,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	ResolvedAt      *time.Time            `json:"resolved_at"`
}

// ListMeta carries pagination info for list responses.
type ListMeta struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// TicketActivityResponse represents an audit trail entry.
type TicketActivityResponse struct {
	ID         string                  `json:"id"`
	ChangeType domain.TicketChangeType `json:"change_type"`
	ActorID    *string                 `json:"actor_id"`
	OldValue   map[string]any          `json:"old_value"`
	NewValue   map[string]any          `json:"new_value"`
	CreatedAt  time.Time               `json:"created_at"`
}
