package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crestline/ticketdesk/internal/models"
)

func createTestTicket(t *testing.T, s *TicketStore, title string, status models.TicketStatus, priority models.TicketPriority) *Ticket {
	t.Helper()
	ticket, err := s.Create(context.Background(), CreateTicketInput{
		Title:    title,
		Status:   status,
		Priority: priority,
	})
	require.NoError(t, err)
	return ticket
}

func TestTicketCRUD(t *testing.T) {
	db := setupTestDatabase(t)
	s := NewTicketStore(db)
	ctx := context.Background()

	due := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	description := "printer is on fire"
	created, err := s.Create(ctx, CreateTicketInput{
		Title:       "Fix the printer",
		Description: &description,
		Status:      models.TicketStatusOpen,
		Priority:    models.TicketPriorityHigh,
		DueDate:     &due,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.TicketStatusOpen, created.Status)
	require.NotNil(t, created.DueDate)

	fetched, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Fix the printer", fetched.Title)

	updated, err := s.Update(ctx, created.ID, UpdateTicketInput{
		Title:    "Fix the printer (urgent)",
		Status:   models.TicketStatusInProgress,
		Priority: models.TicketPriorityUrgent,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusInProgress, updated.Status)
	assert.Nil(t, updated.DueDate, "update replaces fields wholesale")

	require.NoError(t, s.Delete(ctx, created.ID))
	_, err = s.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTicketListFilterAndSort(t *testing.T) {
	db := setupTestDatabase(t)
	s := NewTicketStore(db)
	ctx := context.Background()

	createTestTicket(t, s, "alpha", models.TicketStatusOpen, models.TicketPriorityLow)
	createTestTicket(t, s, "bravo", models.TicketStatusClosed, models.TicketPriorityHigh)
	createTestTicket(t, s, "charlie", models.TicketStatusOpen, models.TicketPriorityHigh)

	open, err := s.List(ctx, TicketFilter{Status: models.TicketStatusOpen})
	require.NoError(t, err)
	assert.Len(t, open, 2)

	sorted, err := s.List(ctx, TicketFilter{SortColumn: "title"})
	require.NoError(t, err)
	require.Len(t, sorted, 3)
	assert.Equal(t, "alpha", sorted[0].Title)
	assert.Equal(t, "charlie", sorted[2].Title)

	sortedDesc, err := s.List(ctx, TicketFilter{SortColumn: "title", SortDesc: true})
	require.NoError(t, err)
	assert.Equal(t, "charlie", sortedDesc[0].Title)
}

func TestTicketBulkDeleteOutcomes(t *testing.T) {
	db := setupTestDatabase(t)
	s := NewTicketStore(db)
	ctx := context.Background()

	a := createTestTicket(t, s, "a", models.TicketStatusOpen, models.TicketPriorityLow)
	b := createTestTicket(t, s, "b", models.TicketStatusOpen, models.TicketPriorityLow)

	outcome, err := s.BulkDelete(ctx, []models.TicketID{a.ID, b.ID, "missing-id"})
	require.NoError(t, err)

	assert.Equal(t, 2, outcome.DeletedCount)
	assert.Equal(t, []string{"missing-id"}, outcome.Failed)
	assert.Equal(t, "not found", outcome.Errors["missing-id"])
}

func TestTicketBulkUpdatePriority(t *testing.T) {
	db := setupTestDatabase(t)
	s := NewTicketStore(db)
	ctx := context.Background()

	a := createTestTicket(t, s, "a", models.TicketStatusOpen, models.TicketPriorityLow)
	b := createTestTicket(t, s, "b", models.TicketStatusOpen, models.TicketPriorityMedium)

	count, err := s.BulkUpdatePriority(ctx, []models.TicketID{a.ID, b.ID}, models.TicketPriorityUrgent)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	fetched, err := s.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketPriorityUrgent, fetched.Priority)

	count, err = s.BulkUpdatePriority(ctx, nil, models.TicketPriorityLow)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSubtasksAndComments(t *testing.T) {
	db := setupTestDatabase(t)
	s := NewTicketStore(db)
	users := NewUserStore(db)
	ctx := context.Background()

	ticket := createTestTicket(t, s, "with extras", models.TicketStatusOpen, models.TicketPriorityLow)
	author, err := users.Create(ctx, CreateUserInput{
		Email: "dev@example.com", Name: "Dev", Role: models.RoleDeveloper, PasswordHash: "x",
	})
	require.NoError(t, err)

	st, err := s.CreateSubtask(ctx, ticket.ID, "write repro")
	require.NoError(t, err)
	assert.False(t, st.Done)

	st, err = s.SetSubtaskDone(ctx, st.ID, true)
	require.NoError(t, err)
	assert.True(t, st.Done)

	subtasks, err := s.ListSubtasks(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, subtasks, 1)

	_, err = s.CreateComment(ctx, ticket.ID, author.ID, "looking into it")
	require.NoError(t, err)
	comments, err := s.ListComments(ctx, ticket.ID, 0)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "looking into it", comments[0].Body)

	require.NoError(t, s.DeleteSubtask(ctx, st.ID))
	assert.ErrorIs(t, s.DeleteSubtask(ctx, st.ID), ErrNotFound)
}
