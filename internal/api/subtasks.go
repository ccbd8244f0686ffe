package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/crestline/ticketdesk/internal/middleware"
	"github.com/crestline/ticketdesk/internal/models"
	"github.com/crestline/ticketdesk/internal/ws"
)

type createSubtaskRequest struct {
	Title string `json:"title"`
}

type setSubtaskDoneRequest struct {
	Done bool `json:"done"`
}

type createCommentRequest struct {
	Body string `json:"body"`
}

// ListSubtasks handles GET /api/tickets/{id}/subtasks.
func (h *TicketHandler) ListSubtasks(w http.ResponseWriter, r *http.Request) {
	ticketID := models.TicketID(chi.URLParam(r, "id"))
	subtasks, err := h.Tickets.ListSubtasks(r.Context(), ticketID)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{"subtasks": subtasks})
}

// CreateSubtask handles POST /api/tickets/{id}/subtasks.
func (h *TicketHandler) CreateSubtask(w http.ResponseWriter, r *http.Request) {
	var req createSubtaskRequest
	if err := decodeJSON(r, &req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "title is required"})
		return
	}

	ticketID := models.TicketID(chi.URLParam(r, "id"))
	if _, err := h.Tickets.GetByID(r.Context(), ticketID); err != nil {
		handleStoreError(w, err)
		return
	}

	subtask, err := h.Tickets.CreateSubtask(r.Context(), ticketID, title)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, subtask)
}

// SetSubtaskDone handles PATCH /api/subtasks/{id}.
func (h *TicketHandler) SetSubtaskDone(w http.ResponseWriter, r *http.Request) {
	var req setSubtaskDoneRequest
	if err := decodeJSON(r, &req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	subtask, err := h.Tickets.SetSubtaskDone(r.Context(), models.SubtaskID(chi.URLParam(r, "id")), req.Done)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, subtask)
}

// DeleteSubtask handles DELETE /api/subtasks/{id}.
func (h *TicketHandler) DeleteSubtask(w http.ResponseWriter, r *http.Request) {
	if err := h.Tickets.DeleteSubtask(r.Context(), models.SubtaskID(chi.URLParam(r, "id"))); err != nil {
		handleStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// ListComments handles GET /api/tickets/{id}/comments.
func (h *TicketHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	ticketID := models.TicketID(chi.URLParam(r, "id"))
	comments, err := h.Tickets.ListComments(r.Context(), ticketID, h.CommentPageSize)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

// CreateComment handles POST /api/tickets/{id}/comments and pushes the
// new comment to clients watching the ticket.
func (h *TicketHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "body is required"})
		return
	}

	ticketID := models.TicketID(chi.URLParam(r, "id"))
	if _, err := h.Tickets.GetByID(r.Context(), ticketID); err != nil {
		handleStoreError(w, err)
		return
	}

	comment, err := h.Tickets.CreateComment(r.Context(), ticketID, middleware.UserFromContext(r.Context()), body)
	if err != nil {
		handleStoreError(w, err)
		return
	}

	h.Hub.PublishTopic("ticket:"+string(ticketID), ws.MessageCommentAdded, comment)
	sendJSON(w, http.StatusCreated, comment)
}
