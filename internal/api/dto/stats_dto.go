package dto

import "github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"

// StatusCountsResponse always carries all five status buckets.
type StatusCountsResponse struct {
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	OnHold     int `json:"on_hold"`
	Resolved   int `json:"resolved"`
	Closed     int `json:"closed"`
}

// TicketStatsResponse is the aggregate returned by the stats endpoint.
// Category and priority maps only list values with at least one ticket.
type TicketStatsResponse struct {
	Total      int                           `json:"total"`
	ByStatus   StatusCountsResponse          `json:"by_status"`
	ByCategory map[domain.TicketCategory]int `json:"by_category"`
	ByPriority map[domain.TicketPriority]int `json:"by_priority"`
}
