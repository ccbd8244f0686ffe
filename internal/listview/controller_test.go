package listview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/crestline/ticketdesk/internal/i18n"
	"github.com/crestline/ticketdesk/internal/models"
	"github.com/crestline/ticketdesk/internal/notice"
)

type fakeDeleter struct {
	calls   int
	gotIDs  []models.TicketID
	outcome BulkOutcome
	err     error
}

func (f *fakeDeleter) BulkDelete(_ context.Context, ids []models.TicketID) (BulkOutcome, error) {
	f.calls++
	f.gotIDs = ids
	return f.outcome, f.err
}

type fakeUpdater struct {
	calls    int
	gotIDs   []models.TicketID
	gotField string
	gotValue string
	count    int
	err      error
}

func (f *fakeUpdater) BulkUpdate(_ context.Context, ids []models.TicketID, field, value string) (int, error) {
	f.calls++
	f.gotIDs = ids
	f.gotField = field
	f.gotValue = value
	return f.count, f.err
}

func newTestController(deleter *fakeDeleter, updater *fakeUpdater) (*Controller[models.TicketID], *notice.Recorder) {
	rec := &notice.Recorder{}
	ctrl := NewController[models.TicketID](deleter, updater, rec, i18n.ForTag(language.English))
	return ctrl, rec
}

func TestBulkDeleteFullSuccess(t *testing.T) {
	t.Parallel()

	deleter := &fakeDeleter{outcome: BulkOutcome{DeletedCount: 3}}
	ctrl, rec := newTestController(deleter, nil)
	ctrl.SelectAll([]models.TicketID{"a", "b", "c"})
	ctrl.OpenDeleteConfirm()

	require.NoError(t, ctrl.BulkDelete(context.Background()))

	assert.Equal(t, 1, deleter.calls)
	assert.Len(t, deleter.gotIDs, 3)
	assert.Equal(t, notice.LevelSuccess, rec.Last().Level)
	assert.Contains(t, rec.Last().Message, "3")
	assert.Equal(t, 0, ctrl.SelectionCount())
	assert.False(t, ctrl.ConfirmingDelete())
}

func TestBulkDeleteFullFailure(t *testing.T) {
	t.Parallel()

	deleter := &fakeDeleter{outcome: BulkOutcome{
		DeletedCount: 0,
		Failed:       []string{"a", "b", "c"},
		Errors:       map[string]string{"a": "not found"},
	}}
	ctrl, rec := newTestController(deleter, nil)
	ctrl.SelectAll([]models.TicketID{"a", "b", "c"})

	require.NoError(t, ctrl.BulkDelete(context.Background()))

	assert.Equal(t, notice.LevelError, rec.Last().Level)
	assert.Contains(t, rec.Last().Message, "not found")
}

func TestBulkDeleteFullFailureWithoutReason(t *testing.T) {
	t.Parallel()

	deleter := &fakeDeleter{outcome: BulkOutcome{
		Failed: []string{"a"},
		Errors: map[string]string{},
	}}
	ctrl, rec := newTestController(deleter, nil)
	ctrl.SelectAll([]models.TicketID{"a"})

	require.NoError(t, ctrl.BulkDelete(context.Background()))

	assert.Equal(t, notice.LevelError, rec.Last().Level)
	assert.Contains(t, rec.Last().Message, "Something went wrong")
}

func TestBulkDeletePartialSuccess(t *testing.T) {
	t.Parallel()

	deleter := &fakeDeleter{outcome: BulkOutcome{
		DeletedCount: 2,
		Failed:       []string{"c"},
		Errors:       map[string]string{"c": "locked"},
	}}
	ctrl, rec := newTestController(deleter, nil)
	ctrl.SelectAll([]models.TicketID{"a", "b", "c"})

	require.NoError(t, ctrl.BulkDelete(context.Background()))

	assert.Equal(t, notice.LevelWarning, rec.Last().Level)
	assert.Contains(t, rec.Last().Message, "2")
	assert.Contains(t, rec.Last().Message, "locked")
	assert.Equal(t, 0, ctrl.SelectionCount())
}

func TestBulkDeleteEmptySelectionGuard(t *testing.T) {
	t.Parallel()

	deleter := &fakeDeleter{}
	ctrl, rec := newTestController(deleter, nil)
	ctrl.SelectAll([]models.TicketID{"", "   ", "\t"})

	require.NoError(t, ctrl.BulkDelete(context.Background()))

	assert.Equal(t, 0, deleter.calls, "no network call for all-blank selection")
	assert.Equal(t, notice.LevelWarning, rec.Last().Level)
	assert.Contains(t, rec.Last().Message, "No valid rows")
}

func TestBulkDeleteFiltersBlankIDs(t *testing.T) {
	t.Parallel()

	deleter := &fakeDeleter{outcome: BulkOutcome{DeletedCount: 2}}
	ctrl, _ := newTestController(deleter, nil)
	ctrl.SelectAll([]models.TicketID{"a", "  ", "b"})

	require.NoError(t, ctrl.BulkDelete(context.Background()))

	assert.Equal(t, []models.TicketID{"a", "b"}, deleter.gotIDs)
}

func TestBulkDeleteRequestFailureKeepsDialogOpen(t *testing.T) {
	t.Parallel()

	deleter := &fakeDeleter{err: errors.New("tickets are locked by policy")}
	ctrl, rec := newTestController(deleter, nil)
	ctrl.SelectAll([]models.TicketID{"a"})
	ctrl.OpenDeleteConfirm()

	err := ctrl.BulkDelete(context.Background())
	require.Error(t, err)

	assert.Equal(t, notice.LevelError, rec.Last().Level)
	assert.Contains(t, rec.Last().Message, "locked by policy")
	assert.True(t, ctrl.ConfirmingDelete(), "dialog stays open for retry")
	assert.Equal(t, 1, ctrl.SelectionCount(), "selection survives for retry")
}

func TestBulkDeleteRefusedWhileInFlight(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	blocking := &blockingDeleter{started: started, release: release}
	ctrl, _ := newTestController(nil, nil)
	ctrl.deleter = blocking
	ctrl.SelectAll([]models.TicketID{"a"})

	done := make(chan error, 1)
	go func() { done <- ctrl.BulkDelete(context.Background()) }()
	<-started

	assert.ErrorIs(t, ctrl.BulkDelete(context.Background()), ErrMutationInFlight)
	assert.True(t, ctrl.Pending())

	close(release)
	require.NoError(t, <-done)
	assert.False(t, ctrl.Pending())
}

type blockingDeleter struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingDeleter) BulkDelete(context.Context, []models.TicketID) (BulkOutcome, error) {
	close(b.started)
	<-b.release
	return BulkOutcome{DeletedCount: 1}, nil
}

func TestBulkUpdateSuccess(t *testing.T) {
	t.Parallel()

	updater := &fakeUpdater{count: 4}
	ctrl, rec := newTestController(nil, updater)
	ctrl.SelectAll([]models.TicketID{"a", "b", "", "d"})
	ctrl.OpenSecondary()

	require.NoError(t, ctrl.BulkUpdate(context.Background(), "priority", "high"))

	// Unlike delete, the full selection goes through unfiltered.
	assert.Len(t, updater.gotIDs, 4)
	assert.Equal(t, "priority", updater.gotField)
	assert.Equal(t, "high", updater.gotValue)
	assert.Equal(t, notice.LevelSuccess, rec.Last().Level)
	assert.Contains(t, rec.Last().Message, "4")
	assert.Equal(t, 0, ctrl.SelectionCount())
	assert.False(t, ctrl.SecondaryOpen())
}

func TestBulkUpdateFailure(t *testing.T) {
	t.Parallel()

	updater := &fakeUpdater{err: errors.New("priority change rejected")}
	ctrl, rec := newTestController(nil, updater)
	ctrl.SelectAll([]models.TicketID{"a"})
	ctrl.OpenSecondary()

	err := ctrl.BulkUpdate(context.Background(), "priority", "low")
	require.Error(t, err)

	assert.Equal(t, notice.LevelError, rec.Last().Level)
	assert.Contains(t, rec.Last().Message, "rejected")
	assert.True(t, ctrl.SecondaryOpen())
	assert.Equal(t, 1, ctrl.SelectionCount())
}

func TestClearSelectionIdempotent(t *testing.T) {
	t.Parallel()

	ctrl, _ := newTestController(nil, nil)
	ctrl.SelectAll([]models.TicketID{"a", "b"})

	ctrl.ClearSelection()
	ctrl.ClearSelection()
	assert.Equal(t, 0, ctrl.SelectionCount())
}

func TestToggleSelection(t *testing.T) {
	t.Parallel()

	ctrl, _ := newTestController(nil, nil)
	ctrl.Toggle("a")
	ctrl.Toggle("b")
	assert.Equal(t, []models.TicketID{"a", "b"}, ctrl.Selected())

	ctrl.Toggle("a")
	assert.Equal(t, []models.TicketID{"b"}, ctrl.Selected())
}

func TestHandleSortReplacesWholesale(t *testing.T) {
	t.Parallel()

	ctrl, _ := newTestController(nil, nil)
	ctrl.HandleSort("title", "asc")
	ctrl.HandleSort("priority", "desc")

	assert.Equal(t, SortState{Column: "priority", Direction: models.SortDesc}, ctrl.Sort())

	ctrl.HandleSort("", "asc")
	assert.Equal(t, SortState{}, ctrl.Sort())
}
