package core

import "context"

// Role is a coarse authorization role. A user may hold several roles in
// the schema, though the only mutation path exposed is a single-role
// replace.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleAccountant Role = "accountant"
	RoleUser       Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAccountant, RoleUser:
		return true
	}
	return false
}

// RoleService answers role membership questions and performs the
// admin-only role replacement. The database row-level-security policies
// consult the same user_roles table, so these predicates and the policy
// layer cannot disagree.
type RoleService interface {
	// HasRole reports whether the user holds the given role.
	HasRole(ctx context.Context, userID int, role Role) (bool, error)

	// IsAdmin is shorthand for HasRole(userID, RoleAdmin).
	IsAdmin(ctx context.Context, userID int) (bool, error)

	// GetRoles returns all roles held by the user.
	GetRoles(ctx context.Context, userID int) ([]Role, error)

	// ReplaceRole removes every role the target user holds and inserts
	// exactly one new role, in one transaction. Only admins may call it;
	// a non-admin actor fails with ErrForbidden and nothing is modified.
	ReplaceRole(ctx context.Context, actorID, targetUserID int, role Role) error
}
