package listview

import (
	"strings"

	"github.com/crestline/ticketdesk/internal/i18n"
	"github.com/crestline/ticketdesk/internal/models"
)

// AllValue is the legacy sentinel meaning "no constraint". Generic filter
// components operate on empty strings; call sites that still speak "All"
// are normalized at this boundary.
const AllValue = "All"

// NormalizeFilterValue maps the "All" sentinel (any case) and whitespace to
// the unconstrained empty value.
func NormalizeFilterValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.EqualFold(trimmed, AllValue) {
		return ""
	}
	return trimmed
}

// FilterOption is one selectable option of a filter field.
type FilterOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Option builds an option from a bare string, which serves as both value
// and label.
func Option(value string) FilterOption {
	return FilterOption{Value: value, Label: value}
}

// FilterField is the declarative shape the generic filter-bar control
// consumes.
type FilterField struct {
	Key     string
	Label   string
	Value   string // normalized; "" means unconstrained
	Options []FilterOption

	onChange func(value string)
}

// BuildFilterField assembles a filter field descriptor. Options given as
// bare strings (via Option) and explicit value/label pairs are accepted
// interchangeably. An option whose value is the literal "All" is rendered
// as "All {label}" and normalized to unconstrained on selection.
func BuildFilterField(tr i18n.Translator, key, label, current string, options []FilterOption, onChange func(value string)) FilterField {
	rendered := make([]FilterOption, 0, len(options))
	for _, opt := range options {
		if strings.EqualFold(opt.Value, AllValue) {
			rendered = append(rendered, FilterOption{
				Value: AllValue,
				Label: tr.T(i18n.KeyAllOptionLabel, label),
			})
			continue
		}
		rendered = append(rendered, opt)
	}

	return FilterField{
		Key:      key,
		Label:    label,
		Value:    NormalizeFilterValue(current),
		Options:  rendered,
		onChange: onChange,
	}
}

// Select normalizes the chosen value and hands it to the change handler.
// Selecting "All" and selecting the empty value are equivalent.
func (f FilterField) Select(value string) {
	if f.onChange == nil {
		return
	}
	f.onChange(NormalizeFilterValue(value))
}

// FilterState holds the active filter values for a page, keyed by filter
// key. Absent keys, empty values, and the "All" sentinel all mean
// unconstrained.
type FilterState map[string]string

// Set stores a normalized filter value; unconstrained values delete the key.
func (s FilterState) Set(key, value string) {
	normalized := NormalizeFilterValue(value)
	if normalized == "" {
		delete(s, key)
		return
	}
	s[key] = normalized
}

// Get returns the normalized value for key, "" when unconstrained.
func (s FilterState) Get(key string) string {
	return s[key]
}

// Matches reports whether a value passes the filter for key.
func (s FilterState) Matches(key, value string) bool {
	want := s[key]
	return want == "" || want == value
}

// SortState is the single active sort of a list: at most one column.
type SortState struct {
	Column    string               `json:"column"`
	Direction models.SortDirection `json:"direction"`
}

// Set replaces the sort wholesale; there is no merging with prior state.
// An empty column clears sorting entirely.
func (s *SortState) Set(column string, direction models.SortDirection) {
	if column == "" {
		*s = SortState{}
		return
	}
	*s = SortState{Column: column, Direction: direction}
}

// Active reports whether any sort is applied.
func (s SortState) Active() bool {
	return s.Column != "" && s.Direction != models.SortNone
}

// normalizeDirection maps raw direction strings onto the closed set; any
// unrecognized value clears the direction.
func normalizeDirection(raw string) models.SortDirection {
	return models.NormalizeSortDirection(raw)
}
