package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/crestline/ticketdesk/internal/i18n"
	"github.com/crestline/ticketdesk/internal/models"
	"github.com/crestline/ticketdesk/internal/store"
)

// ClientHandler manages client endpoints.
type ClientHandler struct {
	Clients *store.ClientStore
}

type clientWriteRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Company *string `json:"company,omitempty"`
}

// List handles GET /api/clients.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Clients.List(r.Context())
	if err != nil {
		handleStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{"clients": clients})
}

// Get handles GET /api/clients/{id}.
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	client, err := h.Clients.GetByID(r.Context(), models.ClientID(chi.URLParam(r, "id")))
	if err != nil {
		handleStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, client)
}

// Create handles POST /api/clients.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !requireTicketManager(w, r) {
		return
	}

	input, ok := decodeClientWrite(w, r)
	if !ok {
		return
	}

	client, err := h.Clients.Create(r.Context(), store.CreateClientInput(input))
	if err != nil {
		handleStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, client)
}

// Update handles PUT /api/clients/{id}.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !requireTicketManager(w, r) {
		return
	}

	input, ok := decodeClientWrite(w, r)
	if !ok {
		return
	}

	client, err := h.Clients.Update(r.Context(), models.ClientID(chi.URLParam(r, "id")), store.UpdateClientInput(input))
	if err != nil {
		handleStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, client)
}

// BulkDelete handles POST /api/clients/bulk-delete.
func (h *ClientHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	tr := i18n.ForLanguage(r.Header.Get("Accept-Language"))

	if !requireTicketManager(w, r) {
		return
	}

	var req bulkDeleteRequest
	if err := decodeJSON(r, &req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	ids := make([]models.ClientID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			ids = append(ids, models.ClientID(trimmed))
		}
	}
	if len(ids) == 0 {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: tr.T(i18n.KeyNoValidSelection)})
		return
	}

	outcome, err := h.Clients.BulkDelete(r.Context(), ids)
	if err != nil {
		handleStoreError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, bulkDeleteResponse{
		DeletedCount: outcome.DeletedCount,
		Failed:       outcome.Failed,
		Errors:       outcome.Errors,
		Notice:       classifyBulkDelete(tr, outcome),
	})
}

type clientInput struct {
	Name    string
	Email   string
	Company *string
}

func decodeClientWrite(w http.ResponseWriter, r *http.Request) (clientInput, bool) {
	var req clientWriteRequest
	if err := decodeJSON(r, &req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return clientInput{}, false
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "name and email are required"})
		return clientInput{}, false
	}

	return clientInput{Name: name, Email: email, Company: req.Company}, true
}
