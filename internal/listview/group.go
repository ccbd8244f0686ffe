// Package listview implements the view-state engine behind every list page:
// grouping, sorting, filtering, row selection, and bulk actions.
package listview

import (
	"fmt"
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/crestline/ticketdesk/internal/models"
)

// defaultGroupRank sorts groups missing from an explicit SortOrder after
// every explicitly ranked group.
const defaultGroupRank = 99

// GroupConfig describes how to bucket items under one group-by key.
type GroupConfig[T any] struct {
	// Key is the group-by key this config answers to (e.g. "status").
	Key string
	// GroupKey maps an item to its bucket key.
	GroupKey func(T) string
	// Label resolves a bucket key to a display label. Nil means the raw
	// key is the label.
	Label func(key string) string
	// Icon resolves a bucket key to an icon name. Nil means no icon.
	Icon func(key string) string
	// SortOrder ranks bucket keys; lower sorts first. Keys absent from the
	// map rank defaultGroupRank. Nil means groups sort by label instead.
	SortOrder map[string]int
	// SortDirection reverses the rank comparison when set to desc. It does
	// not negate the rank values themselves.
	SortDirection models.SortDirection
}

// Group is one ordered bucket of items.
type Group[T any] struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
	Items []T    `json:"items"`
}

// Grouper buckets item lists using a fixed set of configs and a viewer
// locale for label ordering.
type Grouper[T any] struct {
	configs []GroupConfig[T]
	col     *collate.Collator
}

// NewGrouper builds a Grouper. The language tag drives locale-aware label
// comparison when a config has no explicit SortOrder.
func NewGrouper[T any](tag language.Tag, configs ...GroupConfig[T]) *Grouper[T] {
	return &Grouper[T]{
		configs: configs,
		col:     collate.New(tag),
	}
}

// Configs returns the group-by keys this grouper understands, in
// declaration order.
func (g *Grouper[T]) Configs() []string {
	keys := make([]string, 0, len(g.configs))
	for _, cfg := range g.configs {
		keys = append(keys, cfg.Key)
	}
	return keys
}

// Group buckets items by the config matching groupBy. An empty groupBy,
// an empty item list, or an unknown groupBy key all produce an empty
// result rather than an error; the caller simply renders no grouping.
func (g *Grouper[T]) Group(items []T, groupBy string) []Group[T] {
	if groupBy == "" || len(items) == 0 {
		return []Group[T]{}
	}

	var cfg *GroupConfig[T]
	for i := range g.configs {
		if g.configs[i].Key == groupBy {
			cfg = &g.configs[i]
			break
		}
	}
	if cfg == nil {
		return []Group[T]{}
	}

	// Single pass, insertion-ordered buckets.
	order := make([]string, 0)
	buckets := make(map[string][]T)
	for _, item := range items {
		key := cfg.GroupKey(item)
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], item)
	}

	groups := make([]Group[T], 0, len(order))
	for _, key := range order {
		groups = append(groups, Group[T]{
			Key:   key,
			Label: resolveLabel(cfg, key),
			Icon:  resolveIcon(cfg, key),
			Items: buckets[key],
		})
	}

	g.sortGroups(cfg, groups)
	return groups
}

func (g *Grouper[T]) sortGroups(cfg *GroupConfig[T], groups []Group[T]) {
	if cfg.SortOrder != nil {
		desc := cfg.SortDirection == models.SortDesc
		sort.SliceStable(groups, func(i, j int) bool {
			ri := groupRank(cfg.SortOrder, groups[i].Key)
			rj := groupRank(cfg.SortOrder, groups[j].Key)
			if desc {
				return ri > rj
			}
			return ri < rj
		})
		return
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return g.col.CompareString(groups[i].Label, groups[j].Label) < 0
	})
}

func groupRank(sortOrder map[string]int, key string) int {
	if rank, ok := sortOrder[key]; ok {
		return rank
	}
	return defaultGroupRank
}

func resolveLabel[T any](cfg *GroupConfig[T], key string) string {
	if cfg.Label != nil {
		return cfg.Label(key)
	}
	return key
}

func resolveIcon[T any](cfg *GroupConfig[T], key string) string {
	if cfg.Icon != nil {
		return cfg.Icon(key)
	}
	return ""
}

// NoDueDateKey is the sentinel bucket for items without a due date.
const NoDueDateKey = "none"

// DueMonthKey returns the bucket key for a due date, "none" when absent.
func DueMonthKey(due *time.Time) string {
	if due == nil {
		return NoDueDateKey
	}
	return due.Format("2006-01")
}

// DueMonthLabel renders a bucket key produced by DueMonthKey as a display
// label, e.g. "March 2026". The noDueDate label is supplied by the caller
// so it can be translated.
func DueMonthLabel(key, noDueDate string) string {
	if key == NoDueDateKey {
		return noDueDate
	}
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return fmt.Sprintf("%s %d", t.Month().String(), t.Year())
}
