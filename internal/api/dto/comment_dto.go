package dto

import "time"

// CreateCommentRequest payload. The author is always the authenticated
// caller.
type CreateCommentRequest struct {
	Content    string `json:"content"`
	IsInternal *bool  `json:"is_internal"`
}

// UpdateCommentRequest payload; only supplied fields change.
type UpdateCommentRequest struct {
	Content    *string `json:"content"`
	IsInternal *bool   `json:"is_internal"`
}

// CommentResponse represents a ticket comment.
type CommentResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	AuthorID   string    `json:"author_id"`
	Content    string    `json:"content"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
