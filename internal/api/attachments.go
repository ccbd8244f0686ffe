package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crestline/ticketdesk/internal/middleware"
	"github.com/crestline/ticketdesk/internal/models"
	"github.com/crestline/ticketdesk/internal/store"
)

// AttachmentHandler manages ticket attachment metadata, including screen
// recordings.
type AttachmentHandler struct {
	Attachments          *store.AttachmentStore
	Tickets              *store.TicketStore
	RecordingMaxDuration time.Duration
}

type createAttachmentRequest struct {
	Kind            string `json:"kind"`
	FileName        string `json:"file_name"`
	ContentType     string `json:"content_type"`
	SizeBytes       int64  `json:"size_bytes"`
	DurationSeconds *int   `json:"duration_seconds,omitempty"`
}

// ListByTicket handles GET /api/tickets/{id}/attachments.
func (h *AttachmentHandler) ListByTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := models.TicketID(chi.URLParam(r, "id"))
	attachments, err := h.Attachments.ListByTicket(r.Context(), ticketID)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{"attachments": attachments})
}

// Create handles POST /api/tickets/{id}/attachments. Recordings must
// carry a duration and it may not exceed the configured cap.
func (h *AttachmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ticketID := models.TicketID(chi.URLParam(r, "id"))

	var req createAttachmentRequest
	if err := decodeJSON(r, &req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	kind := store.AttachmentKind(strings.ToLower(strings.TrimSpace(req.Kind)))
	if kind == "" {
		kind = store.AttachmentKindFile
	}
	if kind != store.AttachmentKindFile && kind != store.AttachmentKindRecording {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid attachment kind"})
		return
	}

	if strings.TrimSpace(req.FileName) == "" {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "file_name is required"})
		return
	}
	if req.SizeBytes < 0 {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "size_bytes must not be negative"})
		return
	}

	if kind == store.AttachmentKindRecording {
		if req.DurationSeconds == nil {
			sendJSON(w, http.StatusBadRequest, errorResponse{Error: "duration_seconds is required for recordings"})
			return
		}
		maxSeconds := int(h.RecordingMaxDuration / time.Second)
		if *req.DurationSeconds < 0 || *req.DurationSeconds > maxSeconds {
			sendJSON(w, http.StatusBadRequest, errorResponse{
				Error: fmt.Sprintf("duration_seconds must be between 0 and %d", maxSeconds),
			})
			return
		}
	}

	// Confirm the ticket exists before attaching anything to it.
	if _, err := h.Tickets.GetByID(r.Context(), ticketID); err != nil {
		handleStoreError(w, err)
		return
	}

	attachment, err := h.Attachments.Create(r.Context(), store.CreateAttachmentInput{
		TicketID:        ticketID,
		Kind:            kind,
		FileName:        strings.TrimSpace(req.FileName),
		ContentType:     strings.TrimSpace(req.ContentType),
		SizeBytes:       req.SizeBytes,
		DurationSeconds: req.DurationSeconds,
		UploadedBy:      middleware.UserFromContext(r.Context()),
	})
	if err != nil {
		handleStoreError(w, err)
		return
	}

	sendJSON(w, http.StatusCreated, attachment)
}

// Delete handles DELETE /api/attachments/{id}.
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !requireTicketManager(w, r) {
		return
	}

	id := models.AttachmentID(chi.URLParam(r, "id"))
	if err := h.Attachments.Delete(r.Context(), id); err != nil {
		handleStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{"ok": true})
}
