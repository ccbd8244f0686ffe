package listview

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/crestline/ticketdesk/internal/i18n"
	"github.com/crestline/ticketdesk/internal/notice"
)

// ErrMutationInFlight is returned when a bulk action is triggered while a
// prior one is still pending. Callers disable the triggering control on the
// pending flag; this error is the backstop, not a queue.
var ErrMutationInFlight = errors.New("bulk mutation already in flight")

// BulkOutcome is the per-item result a bulk delete reports: how many rows
// were deleted, which identifiers failed, and a reason per failed
// identifier where the backend supplied one.
type BulkOutcome struct {
	DeletedCount int               `json:"deleted_count"`
	Failed       []string          `json:"failed"`
	Errors       map[string]string `json:"errors"`
}

// FirstReason returns the first reported failure reason in Failed order,
// "" when none was given.
func (o BulkOutcome) FirstReason() string {
	for _, id := range o.Failed {
		if reason := o.Errors[id]; reason != "" {
			return reason
		}
	}
	return ""
}

// BulkDeleter performs the delete mutation for a selection.
type BulkDeleter[ID ~string] interface {
	BulkDelete(ctx context.Context, ids []ID) (BulkOutcome, error)
}

// BulkUpdater performs a uniform field update across a selection and
// reports how many rows changed. There is no per-item outcome on this
// path; updates are treated as all-or-nothing.
type BulkUpdater[ID ~string] interface {
	BulkUpdate(ctx context.Context, ids []ID, field, value string) (int, error)
}

// Controller owns the view-local state of one list page: row selection,
// sort, dialog visibility, and in-flight flags. One instance per entity
// type per page; discarded on navigation.
type Controller[ID ~string] struct {
	mu sync.Mutex

	selected         map[ID]struct{}
	sortState        SortState
	confirmingDelete bool
	secondaryOpen    bool
	deletePending    bool
	updatePending    bool

	deleter  BulkDeleter[ID]
	updater  BulkUpdater[ID]
	notifier notice.Notifier
	tr       i18n.Translator
}

// NewController builds a controller wired to its mutation delegates and
// notifier. Either delegate may be nil when the page offers no such action.
func NewController[ID ~string](deleter BulkDeleter[ID], updater BulkUpdater[ID], notifier notice.Notifier, tr i18n.Translator) *Controller[ID] {
	return &Controller[ID]{
		selected: make(map[ID]struct{}),
		deleter:  deleter,
		updater:  updater,
		notifier: notifier,
		tr:       tr,
	}
}

// Toggle flips the selection state of one row.
func (c *Controller[ID]) Toggle(id ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.selected[id]; ok {
		delete(c.selected, id)
		return
	}
	c.selected[id] = struct{}{}
}

// SelectAll marks every given row selected.
func (c *Controller[ID]) SelectAll(ids []ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		c.selected[id] = struct{}{}
	}
}

// Selected returns the current selection in deterministic order.
func (c *Controller[ID]) Selected() []ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedLocked()
}

func (c *Controller[ID]) selectedLocked() []ID {
	ids := make([]ID, 0, len(c.selected))
	for id := range c.selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SelectionCount returns the number of selected rows.
func (c *Controller[ID]) SelectionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.selected)
}

// ClearSelection empties the selection. Idempotent; called after every
// successful bulk mutation and on tab or filter changes.
func (c *Controller[ID]) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = make(map[ID]struct{})
}

// HandleSort replaces the sort state wholesale. An empty column clears
// sorting; nothing from the previous sort survives.
func (c *Controller[ID]) HandleSort(column string, direction string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sortState.Set(column, normalizeDirection(direction))
}

// Sort returns the active sort state.
func (c *Controller[ID]) Sort() SortState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sortState
}

// OpenDeleteConfirm shows the delete confirmation dialog.
func (c *Controller[ID]) OpenDeleteConfirm() { c.setConfirmingDelete(true) }

// CloseDeleteConfirm hides the delete confirmation dialog.
func (c *Controller[ID]) CloseDeleteConfirm() { c.setConfirmingDelete(false) }

// ConfirmingDelete reports whether the delete confirmation dialog is open.
func (c *Controller[ID]) ConfirmingDelete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.confirmingDelete
}

func (c *Controller[ID]) setConfirmingDelete(open bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirmingDelete = open
}

// OpenSecondary shows the secondary bulk dialog (e.g. priority change).
func (c *Controller[ID]) OpenSecondary() { c.setSecondary(true) }

// CloseSecondary hides the secondary bulk dialog.
func (c *Controller[ID]) CloseSecondary() { c.setSecondary(false) }

// SecondaryOpen reports whether the secondary bulk dialog is open.
func (c *Controller[ID]) SecondaryOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.secondaryOpen
}

func (c *Controller[ID]) setSecondary(open bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.secondaryOpen = open
}

// Pending reports whether any bulk mutation is in flight; the triggering
// controls are disabled on it.
func (c *Controller[ID]) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deletePending || c.updatePending
}

// BulkDelete deletes the current selection. Blank and whitespace-only
// identifiers are filtered out first; if nothing valid remains, a
// translated notice is emitted and no call is made. The outcome is
// classified into full-success, full-failure, and partial-success, each
// with distinct copy. On a request-level failure the confirmation dialog
// stays open so the user can retry.
func (c *Controller[ID]) BulkDelete(ctx context.Context) error {
	c.mu.Lock()
	if c.deletePending || c.updatePending {
		c.mu.Unlock()
		return ErrMutationInFlight
	}
	ids := c.selectedLocked()
	c.deletePending = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.deletePending = false
		c.mu.Unlock()
	}()

	valid := make([]ID, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(string(id)) != "" {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		c.notify(notice.LevelWarning, c.tr.T(i18n.KeyNoValidSelection))
		return nil
	}

	outcome, err := c.deleter.BulkDelete(ctx, valid)
	if err != nil {
		c.notify(notice.LevelError, failureMessage(c.tr, err))
		return err
	}

	c.mu.Lock()
	c.selected = make(map[ID]struct{})
	c.confirmingDelete = false
	c.mu.Unlock()

	switch {
	case len(outcome.Failed) == 0:
		c.notify(notice.LevelSuccess, c.tr.T(i18n.KeyBulkDeleteSuccess, outcome.DeletedCount))
	case outcome.DeletedCount == 0:
		reason := outcome.FirstReason()
		if reason == "" {
			reason = c.tr.T(i18n.KeyRequestFailed)
		}
		c.notify(notice.LevelError, c.tr.T(i18n.KeyBulkDeleteFailed, reason))
	default:
		reason := outcome.FirstReason()
		if reason == "" {
			reason = c.tr.T(i18n.KeyRequestFailed)
		}
		c.notify(notice.LevelWarning, c.tr.T(i18n.KeyBulkDeletePartial, outcome.DeletedCount, len(outcome.Failed), reason))
	}
	return nil
}

// BulkUpdate applies a uniform field change to the full current selection.
// Unlike BulkDelete, the selection is not filtered and no partial-failure
// branch exists; non-uniform server outcomes are not modeled on this path.
func (c *Controller[ID]) BulkUpdate(ctx context.Context, field, value string) error {
	c.mu.Lock()
	if c.deletePending || c.updatePending {
		c.mu.Unlock()
		return ErrMutationInFlight
	}
	ids := c.selectedLocked()
	c.updatePending = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.updatePending = false
		c.mu.Unlock()
	}()

	count, err := c.updater.BulkUpdate(ctx, ids, field, value)
	if err != nil {
		c.notify(notice.LevelError, failureMessage(c.tr, err))
		return err
	}

	c.mu.Lock()
	c.selected = make(map[ID]struct{})
	c.secondaryOpen = false
	c.mu.Unlock()

	c.notify(notice.LevelSuccess, c.tr.T(i18n.KeyBulkUpdateSuccess, count))
	return nil
}

func (c *Controller[ID]) notify(level notice.Level, message string) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(notice.Notice{Level: level, Message: message})
}

// failureMessage prefers the server-provided message and falls back to the
// generic translated failure string.
func failureMessage(tr i18n.Translator, err error) string {
	if err != nil && strings.TrimSpace(err.Error()) != "" {
		return err.Error()
	}
	return tr.T(i18n.KeyRequestFailed)
}
