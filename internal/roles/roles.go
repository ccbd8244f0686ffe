// Package roles derives capability flags from a user's role.
package roles

import "github.com/crestline/ticketdesk/internal/models"

// Flags is the set of capability booleans UI affordances are gated on.
type Flags struct {
	IsAdmin     bool
	IsEngLead   bool
	IsDeveloper bool
	IsClient    bool
}

// flagTable is computed once so repeated lookups for the same role return
// the same value without recomputation.
var flagTable = map[models.Role]Flags{
	models.RoleAdmin: {
		IsAdmin: true,
		// Admin is a superset of EngLead.
		IsEngLead: true,
	},
	models.RoleEngLead:   {IsEngLead: true},
	models.RoleDeveloper: {IsDeveloper: true},
	models.RoleClient:    {IsClient: true},
}

// Derive maps a role to its capability flags. Unknown roles get the zero
// Flags value: no capabilities, rather than an error.
func Derive(role models.Role) Flags {
	return flagTable[role]
}

// CanManageTickets reports whether the role may bulk-edit or delete tickets.
func (f Flags) CanManageTickets() bool {
	return f.IsAdmin || f.IsEngLead
}

// CanAdministerUsers reports whether the role may create or delete users.
func (f Flags) CanAdministerUsers() bool {
	return f.IsAdmin
}
