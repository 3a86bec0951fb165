package domain

import "time"

// Attachment stores metadata for a file uploaded onto a ticket. The row
// owns the metadata only; the bytes live on disk under StoragePath.
type Attachment struct {
	ID          string
	TicketID    string
	UploaderID  string
	FileName    string
	StoragePath string
	MimeType    string
	SizeBytes   int64
	CreatedAt   time.Time
}
