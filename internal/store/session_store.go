package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/crestline/ticketdesk/internal/models"
)

// SessionStore issues and validates opaque session tokens.
type SessionStore struct {
	db  *sql.DB
	ttl time.Duration
}

// NewSessionStore creates a SessionStore with the given session lifetime.
func NewSessionStore(db *sql.DB, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &SessionStore{db: db, ttl: ttl}
}

// Create issues a new session token for the user.
func (s *SessionStore) Create(ctx context.Context, userID models.UserID) (string, error) {
	token, err := generateToken(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	expiresAt := time.Now().UTC().Add(s.ttl)
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3)",
		token, string(userID), expiresAt)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	return token, nil
}

// ValidateSession resolves a token to its user and role. Expired and
// unknown tokens both return ErrNoSession.
func (s *SessionStore) ValidateSession(ctx context.Context, token string) (models.UserID, models.Role, error) {
	query := `SELECT u.id, u.role
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = $1 AND s.expires_at > NOW()`

	var userID models.UserID
	var role models.Role
	err := s.db.QueryRowContext(ctx, query, token).Scan(&userID, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", ErrNoSession
		}
		return "", "", fmt.Errorf("failed to validate session: %w", err)
	}

	return userID, role, nil
}

// Delete revokes a session token. Revoking an unknown token is not an
// error; logout is idempotent.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = $1", token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes expired sessions; called opportunistically by the
// server on a timer.
func (s *SessionStore) DeleteExpired(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= NOW()")
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check delete result: %w", err)
	}
	return int(rowsAffected), nil
}

func generateToken(bytes int) (string, error) {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
