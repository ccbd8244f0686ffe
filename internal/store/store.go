// Package store provides Postgres data access for TicketDesk entities.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")
	// ErrForbidden is returned when access to an entity is denied.
	ErrForbidden = errors.New("access denied")
	// ErrNoSession is returned when a session token is invalid or expired.
	ErrNoSession = errors.New("session not found or expired")
)

// Open connects to Postgres and verifies the connection. The pool is owned
// by the caller and passed to each store explicitly; there is no package
// global.
func Open(databaseURL string) (*sql.DB, error) {
	databaseURL = strings.TrimSpace(databaseURL)
	if databaseURL == "" {
		return nil, errors.New("database URL is empty")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// Querier is an interface for database query execution.
// *sql.DB, *sql.Conn, and *sql.Tx all implement this interface.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// BulkOutcome is the per-item result of a bulk delete: how many rows were
// removed, which identifiers failed, and why.
type BulkOutcome struct {
	DeletedCount int               `json:"deleted_count"`
	Failed       []string          `json:"failed"`
	Errors       map[string]string `json:"errors"`
}

// nullableString converts a *string to a sql-compatible value.
func nullableString(value *string) interface{} {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return trimmed
}

// nullableTime converts a *time.Time to a sql-compatible value.
func nullableTime(value *time.Time) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
