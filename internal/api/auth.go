package api

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/crestline/ticketdesk/internal/i18n"
	"github.com/crestline/ticketdesk/internal/middleware"
	"github.com/crestline/ticketdesk/internal/roles"
	"github.com/crestline/ticketdesk/internal/store"
)

// AuthHandler manages login, logout, and the current-user endpoint.
type AuthHandler struct {
	Users    *store.UserStore
	Sessions *store.SessionStore
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type userPayload struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  string      `json:"role"`
	Flags roles.Flags `json:"flags"`
}

func toUserPayload(u *store.User) userPayload {
	return userPayload{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
		Role:  string(u.Role),
		Flags: roles.Derive(u.Role),
	}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	tr := i18n.ForLanguage(r.Header.Get("Accept-Language"))

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: "email and password are required"})
		return
	}

	user, err := h.Users.GetByEmail(r.Context(), email)
	if err != nil {
		// Unknown email and wrong password produce the same response.
		sendJSON(w, http.StatusUnauthorized, errorResponse{Error: tr.T(i18n.KeyInvalidCredentials)})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		sendJSON(w, http.StatusUnauthorized, errorResponse{Error: tr.T(i18n.KeyInvalidCredentials)})
		return
	}

	token, err := h.Sessions.Create(r.Context(), user.ID)
	if err != nil {
		handleStoreError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, loginResponse{Token: token, User: toUserPayload(user)})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerTokenFromRequest(r)
	if token != "" {
		if err := h.Sessions.Delete(r.Context(), token); err != nil {
			handleStoreError(w, err)
			return
		}
	}
	sendJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Me handles GET /api/auth/me. Requires a valid session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserFromContext(r.Context())
	user, err := h.Users.GetByID(r.Context(), userID)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, toUserPayload(user))
}

func bearerTokenFromRequest(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}
