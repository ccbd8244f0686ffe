package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crestline/ticketdesk/internal/models"
	"github.com/crestline/ticketdesk/internal/store"
)

func newAttachmentRouter(t *testing.T, handler *AttachmentHandler) http.Handler {
	t.Helper()
	return testRouter("uploader", models.RoleDeveloper, func(r chi.Router) {
		r.Post("/api/tickets/{id}/attachments", handler.Create)
	})
}

func TestCreateRecordingRejectsDurationOverCap(t *testing.T) {
	db, mock := newMockDB(t)
	handler := &AttachmentHandler{
		Attachments:          store.NewAttachmentStore(db),
		Tickets:              store.NewTicketStore(db),
		RecordingMaxDuration: 3 * time.Minute,
	}
	router := newAttachmentRouter(t, handler)

	rec := doJSON(t, router, http.MethodPost, "/api/tickets/t1/attachments",
		`{"kind":"recording","file_name":"capture.webm","content_type":"video/webm","size_bytes":1024,"duration_seconds":181}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "duration_seconds must be between 0 and 180")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRecordingRequiresDuration(t *testing.T) {
	db, _ := newMockDB(t)
	handler := &AttachmentHandler{
		Attachments:          store.NewAttachmentStore(db),
		Tickets:              store.NewTicketStore(db),
		RecordingMaxDuration: 3 * time.Minute,
	}
	router := newAttachmentRouter(t, handler)

	rec := doJSON(t, router, http.MethodPost, "/api/tickets/t1/attachments",
		`{"kind":"recording","file_name":"capture.webm","content_type":"video/webm","size_bytes":1024}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRecordingAtCapSucceeds(t *testing.T) {
	db, mock := newMockDB(t)
	handler := &AttachmentHandler{
		Attachments:          store.NewAttachmentStore(db),
		Tickets:              store.NewTicketStore(db),
		RecordingMaxDuration: 3 * time.Minute,
	}
	router := newAttachmentRouter(t, handler)

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM tickets WHERE id = \\$1").
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows(ticketColumns).
			AddRow("t1", 1, "ticket", nil, "open", "low", nil, nil, nil, nil, now, now))
	mock.ExpectQuery("INSERT INTO attachments").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "ticket_id", "kind", "file_name", "content_type",
			"size_bytes", "duration_seconds", "uploaded_by", "created_at",
		}).AddRow("a1", "t1", "recording", "capture.webm", "video/webm", 1024, 180, "uploader", now))

	rec := doJSON(t, router, http.MethodPost, "/api/tickets/t1/attachments",
		`{"kind":"recording","file_name":"capture.webm","content_type":"video/webm","size_bytes":1024,"duration_seconds":180}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var attachment store.Attachment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &attachment))
	require.NotNil(t, attachment.DurationSeconds)
	assert.Equal(t, 180, *attachment.DurationSeconds)
	assert.Equal(t, store.AttachmentKindRecording, attachment.Kind)
}

func TestCreateAttachmentRejectsUnknownKind(t *testing.T) {
	db, _ := newMockDB(t)
	handler := &AttachmentHandler{
		Attachments:          store.NewAttachmentStore(db),
		Tickets:              store.NewTicketStore(db),
		RecordingMaxDuration: 3 * time.Minute,
	}
	router := newAttachmentRouter(t, handler)

	rec := doJSON(t, router, http.MethodPost, "/api/tickets/t1/attachments",
		`{"kind":"hologram","file_name":"x","content_type":"application/octet-stream","size_bytes":1}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
