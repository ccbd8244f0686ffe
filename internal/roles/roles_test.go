package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crestline/ticketdesk/internal/models"
)

func TestDeriveAdminImpliesEngLead(t *testing.T) {
	t.Parallel()

	flags := Derive(models.RoleAdmin)
	assert.True(t, flags.IsAdmin)
	assert.True(t, flags.IsEngLead)
	assert.False(t, flags.IsDeveloper)
	assert.False(t, flags.IsClient)
}

func TestDeriveStrictEquality(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role     models.Role
		expected Flags
	}{
		{models.RoleEngLead, Flags{IsEngLead: true}},
		{models.RoleDeveloper, Flags{IsDeveloper: true}},
		{models.RoleClient, Flags{IsClient: true}},
	}

	for _, tt := range tests {
		flags := Derive(tt.role)
		assert.Equal(t, tt.expected, flags, "Derive(%q)", tt.role)
		assert.False(t, flags.IsAdmin, "only admin gets IsAdmin")
	}
}

func TestDeriveUnknownRole(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Flags{}, Derive(models.Role("superuser")))
	assert.Equal(t, Flags{}, Derive(models.Role("")))
}

func TestDeriveStable(t *testing.T) {
	t.Parallel()

	// Same input must produce the same value every call.
	for _, role := range models.Roles() {
		assert.Equal(t, Derive(role), Derive(role))
	}
}

func TestCapabilityHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, Derive(models.RoleAdmin).CanManageTickets())
	assert.True(t, Derive(models.RoleEngLead).CanManageTickets())
	assert.False(t, Derive(models.RoleDeveloper).CanManageTickets())
	assert.False(t, Derive(models.RoleClient).CanManageTickets())

	assert.True(t, Derive(models.RoleAdmin).CanAdministerUsers())
	assert.False(t, Derive(models.RoleEngLead).CanAdministerUsers())
}
