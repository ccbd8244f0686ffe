package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/crestline/ticketdesk/internal/i18n"
	"github.com/crestline/ticketdesk/internal/middleware"
	"github.com/crestline/ticketdesk/internal/models"
	"github.com/crestline/ticketdesk/internal/notice"
	"github.com/crestline/ticketdesk/internal/roles"
	"github.com/crestline/ticketdesk/internal/store"
	"github.com/crestline/ticketdesk/internal/ws"
)

// UserHandler manages user administration endpoints.
type UserHandler struct {
	Users *store.UserStore
	Hub   *ws.Hub
}

type createUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type userBulkDeleteResponse struct {
	DeletedCount int               `json:"deleted_count"`
	FailedEmails []string          `json:"failed_emails"`
	Errors       map[string]string `json:"errors"`
	Notice       notice.Notice     `json:"notice"`
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.UserFilter{
		Role: models.Role(strings.TrimSpace(r.URL.Query().Get("role"))),
	}
	if filter.Role != "" && !filter.Role.IsValid() {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid role filter"})
		return
	}

	users, err := h.Users.List(r.Context(), filter)
	if err != nil {
		handleStoreError(w, err)
		return
	}

	payload := make([]userPayload, len(users))
	for i := range users {
		payload[i] = toUserPayload(&users[i])
	}
	sendJSON(w, http.StatusOK, map[string]any{"users": payload})
}

// Create handles POST /api/users. Admin only.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !requireUserAdmin(w, r) {
		return
	}

	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Name) == "" {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "email and name are required"})
		return
	}
	if len(req.Password) < 8 {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "password must be at least 8 characters"})
		return
	}
	role := models.NormalizeRole(req.Role)
	if !role.IsValid() {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid role"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		sendJSON(w, http.StatusInternalServerError, errorResponse{Error: "operation failed"})
		return
	}

	user, err := h.Users.Create(r.Context(), store.CreateUserInput{
		Email:        req.Email,
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		PasswordHash: string(hash),
	})
	if err != nil {
		handleStoreError(w, err)
		return
	}

	sendJSON(w, http.StatusCreated, toUserPayload(user))
}

// Update handles PUT /api/users/{id}. Admin only.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !requireUserAdmin(w, r) {
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	role := models.NormalizeRole(req.Role)
	if !role.IsValid() {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid role"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}

	user, err := h.Users.Update(r.Context(), models.UserID(chi.URLParam(r, "id")), store.UpdateUserInput{
		Name: strings.TrimSpace(req.Name),
		Role: role,
	})
	if err != nil {
		handleStoreError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, toUserPayload(user))
}

// BulkDelete handles POST /api/users/bulk-delete. Admin only. Failures
// are reported by email because that is what the admin screen lists.
func (h *UserHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	tr := i18n.ForLanguage(r.Header.Get("Accept-Language"))

	if !requireUserAdmin(w, r) {
		return
	}

	var req bulkDeleteRequest
	if err := decodeJSON(r, &req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	callerID := middleware.UserFromContext(r.Context())
	ids := make([]models.UserID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || trimmed == string(callerID) {
			// Nobody gets to bulk-delete themselves.
			continue
		}
		ids = append(ids, models.UserID(trimmed))
	}
	if len(ids) == 0 {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: tr.T(i18n.KeyNoValidSelection)})
		return
	}

	outcome, err := h.Users.BulkDelete(r.Context(), ids)
	if err != nil {
		handleStoreError(w, err)
		return
	}

	resp := userBulkDeleteResponse{
		DeletedCount: outcome.DeletedCount,
		FailedEmails: outcome.Failed,
		Errors:       outcome.Errors,
		Notice:       classifyBulkDelete(tr, outcome),
	}

	h.Hub.Publish(ws.MessageUsersBulkDeleted, resp)
	sendJSON(w, http.StatusOK, resp)
}

func requireUserAdmin(w http.ResponseWriter, r *http.Request) bool {
	flags := roles.Derive(middleware.RoleFromContext(r.Context()))
	if !flags.CanAdministerUsers() {
		sendJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return false
	}
	return true
}
