package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/crestline/ticketdesk/internal/listview"
	"github.com/crestline/ticketdesk/internal/models"
	"github.com/crestline/ticketdesk/internal/store"
	"github.com/crestline/ticketdesk/internal/ws"
)

// ProjectHandler manages project endpoints.
type ProjectHandler struct {
	Projects *store.ProjectStore
	Hub      *ws.Hub
}

type projectWriteRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Status      string  `json:"status,omitempty"`
	ClientID    *string `json:"client_id,omitempty"`
}

type addMembersRequest struct {
	UserIDs []string `json:"user_ids"`
}

// List handles GET /api/projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.ProjectFilter{
		Status: models.ProjectStatus(listview.NormalizeFilterValue(r.URL.Query().Get("status"))),
	}
	if v := listview.NormalizeFilterValue(r.URL.Query().Get("client_id")); v != "" {
		id := models.ClientID(v)
		filter.ClientID = &id
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid status filter"})
		return
	}

	projects, err := h.Projects.List(r.Context(), filter)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

// Get handles GET /api/projects/{id}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := models.ProjectID(chi.URLParam(r, "id"))
	project, err := h.Projects.GetByID(r.Context(), id)
	if err != nil {
		handleStoreError(w, err)
		return
	}

	members, err := h.Projects.ListMembers(r.Context(), id)
	if err != nil {
		handleStoreError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, map[string]any{"project": project, "members": members})
}

// Create handles POST /api/projects.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !requireTicketManager(w, r) {
		return
	}

	input, ok := h.decodeProjectWrite(w, r)
	if !ok {
		return
	}

	project, err := h.Projects.Create(r.Context(), store.CreateProjectInput(input))
	if err != nil {
		handleStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, project)
}

// Update handles PUT /api/projects/{id}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !requireTicketManager(w, r) {
		return
	}

	input, ok := h.decodeProjectWrite(w, r)
	if !ok {
		return
	}

	id := models.ProjectID(chi.URLParam(r, "id"))
	project, err := h.Projects.Update(r.Context(), id, store.UpdateProjectInput(input))
	if err != nil {
		handleStoreError(w, err)
		return
	}

	h.Hub.Publish(ws.MessageProjectUpdated, project)
	sendJSON(w, http.StatusOK, project)
}

// Delete handles DELETE /api/projects/{id}.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !requireTicketManager(w, r) {
		return
	}

	id := models.ProjectID(chi.URLParam(r, "id"))
	if err := h.Projects.Delete(r.Context(), id); err != nil {
		handleStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// AddMembers handles POST /api/projects/{id}/members. Backs the
// "add to project" bulk action; users already on the project are skipped.
func (h *ProjectHandler) AddMembers(w http.ResponseWriter, r *http.Request) {
	if !requireTicketManager(w, r) {
		return
	}

	var req addMembersRequest
	if err := decodeJSON(r, &req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	ids := make([]models.UserID, 0, len(req.UserIDs))
	for _, raw := range req.UserIDs {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			ids = append(ids, models.UserID(trimmed))
		}
	}
	if len(ids) == 0 {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "no users given"})
		return
	}

	id := models.ProjectID(chi.URLParam(r, "id"))
	added, err := h.Projects.AddMembers(r.Context(), id, ids)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{"added_count": added})
}

type projectInput struct {
	Name        string
	Description *string
	Status      models.ProjectStatus
	ClientID    *models.ClientID
}

func (h *ProjectHandler) decodeProjectWrite(w http.ResponseWriter, r *http.Request) (projectInput, bool) {
	var req projectWriteRequest
	if err := decodeJSON(r, &req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return projectInput{}, false
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return projectInput{}, false
	}

	status := models.ProjectStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if status == "" {
		status = models.ProjectStatusActive
	}
	if !status.IsValid() {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid status"})
		return projectInput{}, false
	}

	input := projectInput{Name: name, Description: req.Description, Status: status}
	if req.ClientID != nil && *req.ClientID != "" {
		id := models.ClientID(*req.ClientID)
		input.ClientID = &id
	}
	return input, true
}
