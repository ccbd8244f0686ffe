package listview

import "sync"

// MemoGrouper caches the most recent Group call. List pages regroup on
// every render; when neither the item slice nor the group-by key changed,
// the prior result is returned as-is so downstream consumers see a stable
// value.
type MemoGrouper[T any] struct {
	grouper *Grouper[T]

	mu          sync.Mutex
	lastItems   []T
	lastGroupBy string
	lastResult  []Group[T]
	primed      bool
}

// NewMemoGrouper wraps a Grouper with last-call memoization.
func NewMemoGrouper[T any](grouper *Grouper[T]) *MemoGrouper[T] {
	return &MemoGrouper[T]{grouper: grouper}
}

// Group returns the cached result when called with the same item slice and
// group-by key as the previous call, otherwise recomputes.
func (m *MemoGrouper[T]) Group(items []T, groupBy string) []Group[T] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.primed && groupBy == m.lastGroupBy && sameSlice(items, m.lastItems) {
		return m.lastResult
	}

	result := m.grouper.Group(items, groupBy)
	m.lastItems = items
	m.lastGroupBy = groupBy
	m.lastResult = result
	m.primed = true
	return result
}

// sameSlice reports whether two slices share identity: same length and same
// backing array start. Content is not compared; callers that rebuild a slice
// with identical content get a recompute, which is correct but not cached.
func sameSlice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}
