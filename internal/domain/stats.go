package domain

// StatusCounts carries one bucket per lifecycle status. Every bucket is
// always present so dashboards render a stable shape even when zero.
type StatusCounts struct {
	Open       int
	InProgress int
	OnHold     int
	Resolved   int
	Closed     int
}

// TicketStats aggregates the ticket population, optionally scoped to one
// assigned agent. Category and priority maps are sparse: only values with
// at least one ticket appear.
type TicketStats struct {
	Total      int
	ByStatus   StatusCounts
	ByCategory map[TicketCategory]int
	ByPriority map[TicketPriority]int
}

// NewTicketStats returns an empty aggregate with initialized maps.
func NewTicketStats() *TicketStats {
	return &TicketStats{
		ByCategory: make(map[TicketCategory]int),
		ByPriority: make(map[TicketPriority]int),
	}
}

// AddStatus folds n tickets with status s into the aggregate, growing the
// total alongside the per-status bucket.
func (t *TicketStats) AddStatus(s TicketStatus, n int) {
	switch s {
	case TicketStatusOpen:
		t.ByStatus.Open += n
	case TicketStatusInProgress:
		t.ByStatus.InProgress += n
	case TicketStatusOnHold:
		t.ByStatus.OnHold += n
	case TicketStatusResolved:
		t.ByStatus.Resolved += n
	case TicketStatusClosed:
		t.ByStatus.Closed += n
	}
	t.Total += n
}
