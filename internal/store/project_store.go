package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/crestline/ticketdesk/internal/models"
)

// Project represents a project row.
type Project struct {
	ID          models.ProjectID     `json:"id"`
	Name        string               `json:"name"`
	Description *string              `json:"description,omitempty"`
	Status      models.ProjectStatus `json:"status"`
	ClientID    *models.ClientID     `json:"client_id,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// ProjectMember links a user to a project.
type ProjectMember struct {
	ProjectID models.ProjectID `json:"project_id"`
	UserID    models.UserID    `json:"user_id"`
	AddedAt   time.Time        `json:"added_at"`
}

// ProjectStore provides access to projects and their memberships.
type ProjectStore struct {
	db *sql.DB
}

// NewProjectStore creates a ProjectStore on the given pool.
func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// ProjectFilter defines filtering options for listing projects.
type ProjectFilter struct {
	Status   models.ProjectStatus
	ClientID *models.ClientID
}

const projectSelectColumns = "id, name, description, status, client_id, created_at, updated_at"

// GetByID retrieves a project by ID.
func (s *ProjectStore) GetByID(ctx context.Context, id models.ProjectID) (*Project, error) {
	query := "SELECT " + projectSelectColumns + " FROM projects WHERE id = $1"
	project, err := scanProject(s.db.QueryRowContext(ctx, query, string(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &project, nil
}

// List retrieves projects matching the filter, newest first.
func (s *ProjectStore) List(ctx context.Context, filter ProjectFilter) ([]Project, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.ClientID != nil {
		args = append(args, string(*filter.ClientID))
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", len(args)))
	}

	query := "SELECT " + projectSelectColumns + " FROM projects WHERE " +
		strings.Join(conditions, " AND ") + " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading projects: %w", err)
	}
	return projects, nil
}

// CreateProjectInput defines the input for creating a project.
type CreateProjectInput struct {
	Name        string
	Description *string
	Status      models.ProjectStatus
	ClientID    *models.ClientID
}

// Create creates a new project.
func (s *ProjectStore) Create(ctx context.Context, input CreateProjectInput) (*Project, error) {
	query := `INSERT INTO projects (id, name, description, status, client_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + projectSelectColumns

	project, err := scanProject(s.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		input.Name,
		nullableString(input.Description),
		string(input.Status),
		nullableClientID(input.ClientID),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return &project, nil
}

// UpdateProjectInput defines the input for updating a project.
type UpdateProjectInput struct {
	Name        string
	Description *string
	Status      models.ProjectStatus
	ClientID    *models.ClientID
}

// Update replaces a project's mutable fields.
func (s *ProjectStore) Update(ctx context.Context, id models.ProjectID, input UpdateProjectInput) (*Project, error) {
	query := `UPDATE projects SET
		name = $1, description = $2, status = $3, client_id = $4, updated_at = NOW()
	WHERE id = $5
	RETURNING ` + projectSelectColumns

	project, err := scanProject(s.db.QueryRowContext(ctx, query,
		input.Name,
		nullableString(input.Description),
		string(input.Status),
		nullableClientID(input.ClientID),
		string(id),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return &project, nil
}

// Delete removes a project.
func (s *ProjectStore) Delete(ctx context.Context, id models.ProjectID) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = $1", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddMembers adds the given users to a project, ignoring ones already
// present, and returns the number actually added. Backs the "add to
// project" bulk action.
func (s *ProjectStore) AddMembers(ctx context.Context, projectID models.ProjectID, userIDs []models.UserID) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	raw := make([]string, len(userIDs))
	for i, id := range userIDs {
		raw[i] = string(id)
	}

	query := `INSERT INTO project_members (project_id, user_id)
		SELECT $1, unnest($2::text[])
		ON CONFLICT (project_id, user_id) DO NOTHING`
	result, err := s.db.ExecContext(ctx, query, string(projectID), pq.Array(raw))
	if err != nil {
		return 0, fmt.Errorf("failed to add project members: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check member insert result: %w", err)
	}
	return int(rowsAffected), nil
}

// ListMembers returns the user IDs of a project's members.
func (s *ProjectStore) ListMembers(ctx context.Context, projectID models.ProjectID) ([]ProjectMember, error) {
	query := `SELECT project_id, user_id, added_at
		FROM project_members WHERE project_id = $1 ORDER BY added_at`
	rows, err := s.db.QueryContext(ctx, query, string(projectID))
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	defer rows.Close()

	members := make([]ProjectMember, 0)
	for rows.Next() {
		var m ProjectMember
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading project members: %w", err)
	}
	return members, nil
}

func scanProject(scanner interface{ Scan(...any) error }) (Project, error) {
	var project Project
	var description sql.NullString
	var clientID sql.NullString

	err := scanner.Scan(
		&project.ID,
		&project.Name,
		&description,
		&project.Status,
		&clientID,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return project, err
	}

	if description.Valid {
		project.Description = &description.String
	}
	if clientID.Valid {
		id := models.ClientID(clientID.String)
		project.ClientID = &id
	}

	return project, nil
}
