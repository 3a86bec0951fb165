package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/appdotbuilder/isp-helpdesk-rfo/internal/domain"
)

// ActivityRepository stores the ticket audit trail.
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.TicketActivity) error
	ListByTicket(ctx context.Context, ticketID string, limit, offset int) ([]domain.TicketActivity, error)
}

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository builds repository.
func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Create(ctx context.Context, activity *domain.TicketActivity) error {
	const query = `
        INSERT INTO ticket_activity (ticket_id, actor_id, change_type, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		activity.TicketID,
		activity.ActorID,
		activity.ChangeType,
		activity.OldValue,
		activity.NewValue,
	).Scan(&activity.ID, &activity.CreatedAt)
}

// ListByTicket returns activity entries oldest first.
func (r *activityRepository) ListByTicket(ctx context.Context, ticketID string, limit, offset int) ([]domain.TicketActivity, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, ticket_id, actor_id, change_type, old_value, new_value, created_at
        FROM ticket_activity WHERE ticket_id=$1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, ticketID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketActivity
	for rows.Next() {
		var activity domain.TicketActivity
		if err := rows.Scan(
			&activity.ID,
			&activity.TicketID,
			&activity.ActorID,
			&activity.ChangeType,
			&activity.OldValue,
			&activity.NewValue,
			&activity.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, activity)
	}
	return result, rows.Err()
}
