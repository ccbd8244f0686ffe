package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crestline/ticketdesk/internal/models"
)

// AttachmentKind distinguishes plain file uploads from screen recordings.
type AttachmentKind string

const (
	AttachmentKindFile      AttachmentKind = "file"
	AttachmentKindRecording AttachmentKind = "recording"
)

// Attachment represents a file or screen recording attached to a ticket.
type Attachment struct {
	ID              models.AttachmentID `json:"id"`
	TicketID        models.TicketID     `json:"ticket_id"`
	Kind            AttachmentKind      `json:"kind"`
	FileName        string              `json:"file_name"`
	ContentType     string              `json:"content_type"`
	SizeBytes       int64               `json:"size_bytes"`
	DurationSeconds *int                `json:"duration_seconds,omitempty"`
	UploadedBy      models.UserID       `json:"uploaded_by"`
	CreatedAt       time.Time           `json:"created_at"`
}

// AttachmentStore provides access to ticket attachments.
type AttachmentStore struct {
	db *sql.DB
}

// NewAttachmentStore creates an AttachmentStore on the given pool.
func NewAttachmentStore(db *sql.DB) *AttachmentStore {
	return &AttachmentStore{db: db}
}

const attachmentSelectColumns = "id, ticket_id, kind, file_name, content_type, size_bytes, duration_seconds, uploaded_by, created_at"

// CreateAttachmentInput defines the input for recording an attachment.
type CreateAttachmentInput struct {
	TicketID        models.TicketID
	Kind            AttachmentKind
	FileName        string
	ContentType     string
	SizeBytes       int64
	DurationSeconds *int
	UploadedBy      models.UserID
}

// Create records an attachment row.
func (s *AttachmentStore) Create(ctx context.Context, input CreateAttachmentInput) (*Attachment, error) {
	query := `INSERT INTO attachments (
		id, ticket_id, kind, file_name, content_type, size_bytes, duration_seconds, uploaded_by
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING ` + attachmentSelectColumns

	var duration interface{}
	if input.DurationSeconds != nil {
		duration = *input.DurationSeconds
	}

	attachment, err := scanAttachment(s.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		string(input.TicketID),
		string(input.Kind),
		input.FileName,
		input.ContentType,
		input.SizeBytes,
		duration,
		string(input.UploadedBy),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment: %w", err)
	}
	return &attachment, nil
}

// ListByTicket returns a ticket's attachments, newest first.
func (s *AttachmentStore) ListByTicket(ctx context.Context, ticketID models.TicketID) ([]Attachment, error) {
	query := "SELECT " + attachmentSelectColumns + " FROM attachments WHERE ticket_id = $1 ORDER BY created_at DESC"
	rows, err := s.db.QueryContext(ctx, query, string(ticketID))
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	attachments := make([]Attachment, 0)
	for rows.Next() {
		attachment, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, attachment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading attachments: %w", err)
	}
	return attachments, nil
}

// Delete removes an attachment row.
func (s *AttachmentStore) Delete(ctx context.Context, id models.AttachmentID) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM attachments WHERE id = $1", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAttachment(scanner interface{ Scan(...any) error }) (Attachment, error) {
	var attachment Attachment
	var duration sql.NullInt64

	err := scanner.Scan(
		&attachment.ID,
		&attachment.TicketID,
		&attachment.Kind,
		&attachment.FileName,
		&attachment.ContentType,
		&attachment.SizeBytes,
		&duration,
		&attachment.UploadedBy,
		&attachment.CreatedAt,
	)
	if err != nil {
		return attachment, err
	}

	if duration.Valid {
		d := int(duration.Int64)
		attachment.DurationSeconds = &d
	}

	return attachment, nil
}
