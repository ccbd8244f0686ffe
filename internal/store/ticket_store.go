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

// Ticket represents a ticket row.
type Ticket struct {
	ID          models.TicketID       `json:"id"`
	Number      int32                 `json:"number"`
	Title       string                `json:"title"`
	Description *string               `json:"description,omitempty"`
	Status      models.TicketStatus   `json:"status"`
	Priority    models.TicketPriority `json:"priority"`
	ProjectID   *models.ProjectID     `json:"project_id,omitempty"`
	AssigneeID  *models.UserID        `json:"assignee_id,omitempty"`
	ClientID    *models.ClientID      `json:"client_id,omitempty"`
	DueDate     *time.Time            `json:"due_date,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// Subtask represents a checklist item under a ticket.
type Subtask struct {
	ID        models.SubtaskID `json:"id"`
	TicketID  models.TicketID  `json:"ticket_id"`
	Title     string           `json:"title"`
	Done      bool             `json:"done"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Comment represents a comment on a ticket.
type Comment struct {
	ID        models.CommentID `json:"id"`
	TicketID  models.TicketID  `json:"ticket_id"`
	AuthorID  models.UserID    `json:"author_id"`
	Body      string           `json:"body"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// TicketStore provides access to tickets, their subtasks, and comments.
type TicketStore struct {
	db *sql.DB
}

// NewTicketStore creates a TicketStore on the given pool.
func NewTicketStore(db *sql.DB) *TicketStore {
	return &TicketStore{db: db}
}

// TicketFilter defines filtering and sorting options for listing tickets.
type TicketFilter struct {
	Status     models.TicketStatus
	Priority   models.TicketPriority
	ProjectID  *models.ProjectID
	AssigneeID *models.UserID
	SortColumn string
	SortDesc   bool
	Limit      int
}

const ticketSelectColumns = "id, number, title, description, status, priority, project_id, assignee_id, client_id, due_date, created_at, updated_at"

// sortableTicketColumns whitelists columns the list endpoint may sort by.
var sortableTicketColumns = map[string]string{
	"number":   "number",
	"title":    "title",
	"status":   "status",
	"priority": "priority",
	"due_date": "due_date",
	"created":  "created_at",
	"updated":  "updated_at",
}

// GetByID retrieves a ticket by ID.
func (s *TicketStore) GetByID(ctx context.Context, id models.TicketID) (*Ticket, error) {
	query := "SELECT " + ticketSelectColumns + " FROM tickets WHERE id = $1"
	ticket, err := scanTicket(s.db.QueryRowContext(ctx, query, string(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return &ticket, nil
}

// List retrieves tickets matching the filter.
func (s *TicketStore) List(ctx context.Context, filter TicketFilter) ([]Ticket, error) {
	query, args := buildTicketListQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading tickets: %w", err)
	}

	return tickets, nil
}

// CreateTicketInput defines the input for creating a ticket.
type CreateTicketInput struct {
	Title       string
	Description *string
	Status      models.TicketStatus
	Priority    models.TicketPriority
	ProjectID   *models.ProjectID
	AssigneeID  *models.UserID
	ClientID    *models.ClientID
	DueDate     *time.Time
}

// Create creates a new ticket.
func (s *TicketStore) Create(ctx context.Context, input CreateTicketInput) (*Ticket, error) {
	query := `INSERT INTO tickets (
		id, title, description, status, priority, project_id, assignee_id, client_id, due_date
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING ` + ticketSelectColumns

	args := []interface{}{
		uuid.NewString(),
		input.Title,
		nullableString(input.Description),
		string(input.Status),
		string(input.Priority),
		nullableProjectID(input.ProjectID),
		nullableUserID(input.AssigneeID),
		nullableClientID(input.ClientID),
		nullableTime(input.DueDate),
	}

	ticket, err := scanTicket(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}
	return &ticket, nil
}

// UpdateTicketInput defines the input for updating a ticket.
type UpdateTicketInput struct {
	Title       string
	Description *string
	Status      models.TicketStatus
	Priority    models.TicketPriority
	ProjectID   *models.ProjectID
	AssigneeID  *models.UserID
	ClientID    *models.ClientID
	DueDate     *time.Time
}

// Update replaces the mutable fields of a ticket.
func (s *TicketStore) Update(ctx context.Context, id models.TicketID, input UpdateTicketInput) (*Ticket, error) {
	query := `UPDATE tickets SET
		title = $1, description = $2, status = $3, priority = $4,
		project_id = $5, assignee_id = $6, client_id = $7, due_date = $8,
		updated_at = NOW()
	WHERE id = $9
	RETURNING ` + ticketSelectColumns

	args := []interface{}{
		input.Title,
		nullableString(input.Description),
		string(input.Status),
		string(input.Priority),
		nullableProjectID(input.ProjectID),
		nullableUserID(input.AssigneeID),
		nullableClientID(input.ClientID),
		nullableTime(input.DueDate),
		string(id),
	}

	ticket, err := scanTicket(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update ticket: %w", err)
	}
	return &ticket, nil
}

// Delete deletes a single ticket.
func (s *TicketStore) Delete(ctx context.Context, id models.TicketID) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tickets WHERE id = $1", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
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

// BulkDelete deletes each given ticket and reports a per-item outcome.
// Missing rows fail individually rather than failing the whole request.
func (s *TicketStore) BulkDelete(ctx context.Context, ids []models.TicketID) (BulkOutcome, error) {
	outcome := BulkOutcome{Failed: []string{}, Errors: map[string]string{}}

	for _, id := range ids {
		result, err := s.db.ExecContext(ctx, "DELETE FROM tickets WHERE id = $1", string(id))
		if err != nil {
			return BulkOutcome{}, fmt.Errorf("failed to bulk delete tickets: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return BulkOutcome{}, fmt.Errorf("failed to check delete result: %w", err)
		}
		if rowsAffected == 0 {
			outcome.Failed = append(outcome.Failed, string(id))
			outcome.Errors[string(id)] = "not found"
			continue
		}
		outcome.DeletedCount++
	}

	return outcome, nil
}

// BulkUpdatePriority sets the priority on every given ticket and returns
// the number of rows changed. This path reports no per-item outcome.
func (s *TicketStore) BulkUpdatePriority(ctx context.Context, ids []models.TicketID, priority models.TicketPriority) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = string(id)
	}

	query := "UPDATE tickets SET priority = $1, updated_at = NOW() WHERE id = ANY($2)"
	result, err := s.db.ExecContext(ctx, query, string(priority), pq.Array(raw))
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update priority: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check update result: %w", err)
	}
	return int(rowsAffected), nil
}

// ListSubtasks returns the subtasks of a ticket in creation order.
func (s *TicketStore) ListSubtasks(ctx context.Context, ticketID models.TicketID) ([]Subtask, error) {
	query := `SELECT id, ticket_id, title, done, created_at, updated_at
		FROM subtasks WHERE ticket_id = $1 ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query, string(ticketID))
	if err != nil {
		return nil, fmt.Errorf("failed to list subtasks: %w", err)
	}
	defer rows.Close()

	subtasks := make([]Subtask, 0)
	for rows.Next() {
		var st Subtask
		if err := rows.Scan(&st.ID, &st.TicketID, &st.Title, &st.Done, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subtask: %w", err)
		}
		subtasks = append(subtasks, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading subtasks: %w", err)
	}
	return subtasks, nil
}

// CreateSubtask adds a subtask to a ticket.
func (s *TicketStore) CreateSubtask(ctx context.Context, ticketID models.TicketID, title string) (*Subtask, error) {
	query := `INSERT INTO subtasks (id, ticket_id, title)
		VALUES ($1, $2, $3)
		RETURNING id, ticket_id, title, done, created_at, updated_at`

	var st Subtask
	err := s.db.QueryRowContext(ctx, query, uuid.NewString(), string(ticketID), title).
		Scan(&st.ID, &st.TicketID, &st.Title, &st.Done, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create subtask: %w", err)
	}
	return &st, nil
}

// SetSubtaskDone toggles a subtask's completion state.
func (s *TicketStore) SetSubtaskDone(ctx context.Context, id models.SubtaskID, done bool) (*Subtask, error) {
	query := `UPDATE subtasks SET done = $1, updated_at = NOW() WHERE id = $2
		RETURNING id, ticket_id, title, done, created_at, updated_at`

	var st Subtask
	err := s.db.QueryRowContext(ctx, query, done, string(id)).
		Scan(&st.ID, &st.TicketID, &st.Title, &st.Done, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update subtask: %w", err)
	}
	return &st, nil
}

// DeleteSubtask removes a subtask.
func (s *TicketStore) DeleteSubtask(ctx context.Context, id models.SubtaskID) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM subtasks WHERE id = $1", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete subtask: %w", err)
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

// ListComments returns a ticket's comments oldest first.
func (s *TicketStore) ListComments(ctx context.Context, ticketID models.TicketID, limit int) ([]Comment, error) {
	if limit <= 0 {
		limit = 200
	}
	query := `SELECT id, ticket_id, author_id, body, created_at, updated_at
		FROM ticket_comments WHERE ticket_id = $1 ORDER BY created_at LIMIT $2`
	rows, err := s.db.QueryContext(ctx, query, string(ticketID), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]Comment, 0)
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.TicketID, &c.AuthorID, &c.Body, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading comments: %w", err)
	}
	return comments, nil
}

// CreateComment adds a comment to a ticket.
func (s *TicketStore) CreateComment(ctx context.Context, ticketID models.TicketID, authorID models.UserID, body string) (*Comment, error) {
	query := `INSERT INTO ticket_comments (id, ticket_id, author_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, ticket_id, author_id, body, created_at, updated_at`

	var c Comment
	err := s.db.QueryRowContext(ctx, query, uuid.NewString(), string(ticketID), string(authorID), body).
		Scan(&c.ID, &c.TicketID, &c.AuthorID, &c.Body, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return &c, nil
}

func buildTicketListQuery(filter TicketFilter) (string, []interface{}) {
	conditions := []string{"TRUE"}
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Priority != "" {
		args = append(args, string(filter.Priority))
		conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)))
	}
	if filter.ProjectID != nil {
		args = append(args, string(*filter.ProjectID))
		conditions = append(conditions, fmt.Sprintf("project_id = $%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, string(*filter.AssigneeID))
		conditions = append(conditions, fmt.Sprintf("assignee_id = $%d", len(args)))
	}

	orderBy := "created_at DESC"
	if column, ok := sortableTicketColumns[filter.SortColumn]; ok {
		direction := "ASC"
		if filter.SortDesc {
			direction = "DESC"
		}
		orderBy = column + " " + direction
	}

	query := "SELECT " + ticketSelectColumns + " FROM tickets WHERE " +
		strings.Join(conditions, " AND ") + " ORDER BY " + orderBy

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	return query, args
}

func scanTicket(scanner interface{ Scan(...any) error }) (Ticket, error) {
	var ticket Ticket
	var description sql.NullString
	var projectID sql.NullString
	var assigneeID sql.NullString
	var clientID sql.NullString
	var dueDate sql.NullTime

	err := scanner.Scan(
		&ticket.ID,
		&ticket.Number,
		&ticket.Title,
		&description,
		&ticket.Status,
		&ticket.Priority,
		&projectID,
		&assigneeID,
		&clientID,
		&dueDate,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		return ticket, err
	}

	if description.Valid {
		ticket.Description = &description.String
	}
	if projectID.Valid {
		id := models.ProjectID(projectID.String)
		ticket.ProjectID = &id
	}
	if assigneeID.Valid {
		id := models.UserID(assigneeID.String)
		ticket.AssigneeID = &id
	}
	if clientID.Valid {
		id := models.ClientID(clientID.String)
		ticket.ClientID = &id
	}
	if dueDate.Valid {
		due := dueDate.Time
		ticket.DueDate = &due
	}

	return ticket, nil
}

func nullableProjectID(id *models.ProjectID) interface{} {
	if id == nil {
		return nil
	}
	return string(*id)
}

func nullableUserID(id *models.UserID) interface{} {
	if id == nil {
		return nil
	}
	return string(*id)
}

func nullableClientID(id *models.ClientID) interface{} {
	if id == nil {
		return nil
	}
	return string(*id)
}
