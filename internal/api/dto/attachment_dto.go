package dto

import "time"

// CreateAttachmentRequest registers metadata for a file that already lives
// in storage. Multipart uploads do not use this payload; the handler saves
// the file itself and fills the metadata in.
type CreateAttachmentRequest struct {
	FileName    string `json:"file_name"`
	StoragePath string `json:"storage_path"`
	MimeType    string `json:"mime_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

// AttachmentResponse metadata. The storage path stays server-side.
type AttachmentResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	UploaderID string    `json:"uploader_id"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
}

// DeleteAttachmentResponse reports whether a row was removed.
type DeleteAttachmentResponse struct {
	Deleted bool `json:"deleted"`
}
