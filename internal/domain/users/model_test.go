package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPermissions(t *testing.T) {
	assert.Len(t, DefaultPermissions(RoleAdmin), 8)
	assert.ElementsMatch(t,
		[]Permission{PermViewInventory, PermManageInventory, PermViewJobs},
		DefaultPermissions(RoleWarehouse))
	assert.ElementsMatch(t,
		[]Permission{PermViewInventory, PermViewJobs, PermManageJobs, PermViewClients},
		DefaultPermissions(RoleTechnician))
	assert.Nil(t, DefaultPermissions(Role("unknown")))
}

func TestRequire(t *testing.T) {
	u := &User{Permissions: []Permission{PermViewJobs}}

	assert.NoError(t, Require(u, PermViewJobs))
	assert.ErrorIs(t, Require(u, PermManageJobs), ErrPermissionDenied)
	assert.ErrorIs(t, Require(nil, PermViewJobs), ErrPermissionDenied)
}

// The permission set is the authority; the role string grants nothing on
// its own.
func TestRoleGrantsNothing(t *testing.T) {
	u := &User{Role: RoleAdmin}
	assert.ErrorIs(t, Require(u, PermManageUsers), ErrPermissionDenied)
}
