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

// Client represents a customer organization tickets are filed for.
type Client struct {
	ID        models.ClientID `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Company   *string         `json:"company,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ClientStore provides access to clients.
type ClientStore struct {
	db *sql.DB
}

// NewClientStore creates a ClientStore on the given pool.
func NewClientStore(db *sql.DB) *ClientStore {
	return &ClientStore{db: db}
}

const clientSelectColumns = "id, name, email, company, created_at, updated_at"

// GetByID retrieves a client by ID.
func (s *ClientStore) GetByID(ctx context.Context, id models.ClientID) (*Client, error) {
	query := "SELECT " + clientSelectColumns + " FROM clients WHERE id = $1"
	client, err := scanClient(s.db.QueryRowContext(ctx, query, string(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return &client, nil
}

// List retrieves all clients ordered by name.
func (s *ClientStore) List(ctx context.Context) ([]Client, error) {
	query := "SELECT " + clientSelectColumns + " FROM clients ORDER BY name"
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	clients := make([]Client, 0)
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading clients: %w", err)
	}
	return clients, nil
}

// CreateClientInput defines the input for creating a client.
type CreateClientInput struct {
	Name    string
	Email   string
	Company *string
}

// Create creates a new client.
func (s *ClientStore) Create(ctx context.Context, input CreateClientInput) (*Client, error) {
	query := `INSERT INTO clients (id, name, email, company)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + clientSelectColumns

	client, err := scanClient(s.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		input.Name,
		strings.ToLower(strings.TrimSpace(input.Email)),
		nullableString(input.Company),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &client, nil
}

// UpdateClientInput defines the input for updating a client.
type UpdateClientInput struct {
	Name    string
	Email   string
	Company *string
}

// Update replaces a client's mutable fields.
func (s *ClientStore) Update(ctx context.Context, id models.ClientID, input UpdateClientInput) (*Client, error) {
	query := `UPDATE clients SET name = $1, email = $2, company = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING ` + clientSelectColumns

	client, err := scanClient(s.db.QueryRowContext(ctx, query,
		input.Name,
		strings.ToLower(strings.TrimSpace(input.Email)),
		nullableString(input.Company),
		string(id),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return &client, nil
}

// BulkDelete deletes each given client and reports a per-item outcome.
func (s *ClientStore) BulkDelete(ctx context.Context, ids []models.ClientID) (BulkOutcome, error) {
	outcome := BulkOutcome{Failed: []string{}, Errors: map[string]string{}}

	for _, id := range ids {
		result, err := s.db.ExecContext(ctx, "DELETE FROM clients WHERE id = $1", string(id))
		if err != nil {
			return BulkOutcome{}, fmt.Errorf("failed to bulk delete clients: %w", err)
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

func scanClient(scanner interface{ Scan(...any) error }) (Client, error) {
	var client Client
	var company sql.NullString

	err := scanner.Scan(
		&client.ID,
		&client.Name,
		&client.Email,
		&company,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err != nil {
		return client, err
	}

	if company.Valid {
		client.Company = &company.String
	}

	return client, nil
}
