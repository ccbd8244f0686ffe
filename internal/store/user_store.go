package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/crestline/ticketdesk/internal/models"
)

// User represents a workspace user.
type User struct {
	ID           models.UserID `json:"id"`
	Email        string        `json:"email"`
	Name         string        `json:"name"`
	Role         models.Role   `json:"role"`
	PasswordHash string        `json:"-"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// UserStore provides access to users.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a UserStore on the given pool.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// UserFilter defines filtering options for listing users.
type UserFilter struct {
	Role       models.Role
	SortColumn string
	SortDesc   bool
}

const userSelectColumns = "id, email, name, role, password_hash, created_at, updated_at"

var sortableUserColumns = map[string]string{
	"name":    "name",
	"email":   "email",
	"role":    "role",
	"created": "created_at",
}

// GetByID retrieves a user by ID.
func (s *UserStore) GetByID(ctx context.Context, id models.UserID) (*User, error) {
	query := "SELECT " + userSelectColumns + " FROM users WHERE id = $1"
	user, err := scanUser(s.db.QueryRowContext(ctx, query, string(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email, matched case-insensitively.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := "SELECT " + userSelectColumns + " FROM users WHERE LOWER(email) = LOWER($1)"
	user, err := scanUser(s.db.QueryRowContext(ctx, query, strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// List retrieves users matching the filter.
func (s *UserStore) List(ctx context.Context, filter UserFilter) ([]User, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}

	if filter.Role != "" {
		args = append(args, string(filter.Role))
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	}

	orderBy := "name ASC"
	if column, ok := sortableUserColumns[filter.SortColumn]; ok {
		direction := "ASC"
		if filter.SortDesc {
			direction = "DESC"
		}
		orderBy = column + " " + direction
	}

	query := "SELECT " + userSelectColumns + " FROM users WHERE " +
		strings.Join(conditions, " AND ") + " ORDER BY " + orderBy

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading users: %w", err)
	}
	return users, nil
}

// CreateUserInput defines the input for creating a user.
type CreateUserInput struct {
	Email        string
	Name         string
	Role         models.Role
	PasswordHash string
}

// Create creates a new user.
func (s *UserStore) Create(ctx context.Context, input CreateUserInput) (*User, error) {
	query := `INSERT INTO users (id, email, name, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userSelectColumns

	user, err := scanUser(s.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		strings.ToLower(strings.TrimSpace(input.Email)),
		input.Name,
		string(input.Role),
		input.PasswordHash,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// UpdateUserInput defines the input for updating a user.
type UpdateUserInput struct {
	Name string
	Role models.Role
}

// Update replaces a user's mutable fields.
func (s *UserStore) Update(ctx context.Context, id models.UserID, input UpdateUserInput) (*User, error) {
	query := `UPDATE users SET name = $1, role = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + userSelectColumns

	user, err := scanUser(s.db.QueryRowContext(ctx, query, input.Name, string(input.Role), string(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &user, nil
}

// BulkDelete deletes each given user and reports a per-item outcome keyed
// by email, matching what the admin UI displays. Unknown IDs fail with
// "not found" under their raw identifier.
func (s *UserStore) BulkDelete(ctx context.Context, ids []models.UserID) (BulkOutcome, error) {
	outcome := BulkOutcome{Failed: []string{}, Errors: map[string]string{}}

	for _, id := range ids {
		var email string
		err := s.db.QueryRowContext(ctx, "SELECT email FROM users WHERE id = $1", string(id)).Scan(&email)
		if errors.Is(err, sql.ErrNoRows) {
			outcome.Failed = append(outcome.Failed, string(id))
			outcome.Errors[string(id)] = "not found"
			continue
		}
		if err != nil {
			return BulkOutcome{}, fmt.Errorf("failed to bulk delete users: %w", err)
		}

		result, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", string(id))
		if err != nil {
			return BulkOutcome{}, fmt.Errorf("failed to bulk delete users: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return BulkOutcome{}, fmt.Errorf("failed to check delete result: %w", err)
		}
		if rowsAffected == 0 {
			outcome.Failed = append(outcome.Failed, email)
			outcome.Errors[email] = "not found"
			continue
		}
		outcome.DeletedCount++
	}

	return outcome, nil
}

func scanUser(scanner interface{ Scan(...any) error }) (User, error) {
	var user User
	err := scanner.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}
