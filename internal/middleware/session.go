// Package middleware provides HTTP middleware for session authentication.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/crestline/ticketdesk/internal/models"
)

// ContextKey is the type for context keys in this package.
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user ID.
	UserIDKey ContextKey = "user_id"
	// RoleKey is the context key for the authenticated user's role.
	RoleKey ContextKey = "role"
)

// SessionValidator resolves a bearer token to the user it belongs to.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (models.UserID, models.Role, error)
}

// UserFromContext retrieves the authenticated user ID from the request
// context. Returns empty string if not set.
func UserFromContext(ctx context.Context) models.UserID {
	if v := ctx.Value(UserIDKey); v != nil {
		if id, ok := v.(models.UserID); ok {
			return id
		}
	}
	return ""
}

// RoleFromContext retrieves the authenticated user's role from the request
// context. Returns empty role if not set.
func RoleFromContext(ctx context.Context) models.Role {
	if v := ctx.Value(RoleKey); v != nil {
		if role, ok := v.(models.Role); ok {
			return role
		}
	}
	return ""
}

// MustUserFromContext returns the authenticated user ID and panics when the
// session middleware was not mounted on the route. That is a programmer
// error, not a request error, and must fail loudly.
func MustUserFromContext(ctx context.Context) models.UserID {
	id := UserFromContext(ctx)
	if id == "" {
		panic("middleware: no authenticated user in context; is RequireSession mounted?")
	}
	return id
}

// RequireSession authenticates the request via its Bearer token and places
// the user ID and role in the context. Requests without a valid session
// get 401.
func RequireSession(validator SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w)
				return
			}

			userID, role, err := validator.ValidateSession(r.Context(), token)
			if err != nil || userID == "" {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, RoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalSession resolves the session when a token is present but lets
// anonymous requests through. Useful for endpoints that only personalize
// their response.
func OptionalSession(validator SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, role, err := validator.ValidateSession(r.Context(), token)
			if err != nil || userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, RoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"missing or invalid session"}`))
}
