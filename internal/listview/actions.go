package listview

import "github.com/crestline/ticketdesk/internal/roles"

// BulkAction describes one operation offered over the current selection.
// The menu showing these is derived from selection and role flags on every
// render, never stored.
type BulkAction[ID ~string] struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Icon        string `json:"icon,omitempty"`
	Destructive bool   `json:"destructive"`

	// Visible gates the action on the current selection and the viewer's
	// capabilities. Nil means always visible.
	Visible func(selection []ID, flags roles.Flags) bool `json:"-"`
}

// VisibleActions filters actions down to those applicable to the current
// selection and viewer.
func VisibleActions[ID ~string](actions []BulkAction[ID], selection []ID, flags roles.Flags) []BulkAction[ID] {
	out := make([]BulkAction[ID], 0, len(actions))
	for _, action := range actions {
		if action.Visible != nil && !action.Visible(selection, flags) {
			continue
		}
		out = append(out, action)
	}
	return out
}
