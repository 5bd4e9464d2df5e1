package users

import "errors"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleWarehouse  Role = "warehouse"
	RoleTechnician Role = "technician"
)

type Permission string

const (
	PermManageUsers     Permission = "MANAGE_USERS"
	PermViewInventory   Permission = "VIEW_INVENTORY"
	PermManageInventory Permission = "MANAGE_INVENTORY"
	PermEditPrices      Permission = "EDIT_PRICES"
	PermViewJobs        Permission = "VIEW_JOBS"
	PermManageJobs      Permission = "MANAGE_JOBS"
	PermViewClients     Permission = "VIEW_CLIENTS"
	PermManageClients   Permission = "MANAGE_CLIENTS"
)

// DefaultPermissions seeds the permission set for a role. The set on the
// user is the sole authority afterwards and may diverge from these
// defaults through manual edits.
func DefaultPermissions(r Role) []Permission {
	switch r {
	case RoleAdmin:
		return []Permission{
			PermManageUsers, PermViewInventory, PermManageInventory, PermEditPrices,
			PermViewJobs, PermManageJobs, PermViewClients, PermManageClients,
		}
	case RoleWarehouse:
		return []Permission{PermViewInventory, PermManageInventory, PermViewJobs}
	case RoleTechnician:
		return []Permission{PermViewInventory, PermViewJobs, PermManageJobs, PermViewClients}
	}
	return nil
}

type User struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"passwordHash"`
	Role         Role         `json:"role"`
	Permissions  []Permission `json:"permissions"`
	Phone        string       `json:"phone,omitempty"`
	Position     string       `json:"position,omitempty"`
}

func (u *User) Can(p Permission) bool {
	for _, have := range u.Permissions {
		if have == p {
			return true
		}
	}
	return false
}

var ErrPermissionDenied = errors.New("permission denied")

// Require gates an operation on a permission flag. It runs before any
// state is read or written.
func Require(u *User, p Permission) error {
	if u == nil || !u.Can(p) {
		return ErrPermissionDenied
	}
	return nil
}
