package models

// RoleName represents a named authorization grant attached to a user
type RoleName string

const (
	RoleUser      RoleName = "ROLE_USER"
	RoleModerator RoleName = "ROLE_MODERATOR"
	RoleAdmin     RoleName = "ROLE_ADMIN"
)

// Role represents a row in the roles table. Roles are seed data: every name in
// AllRoleNames must exist before the application serves traffic.
type Role struct {
	ID   int      `json:"id" db:"id"`
	Name RoleName `json:"name" db:"name"`
}

// TableName returns the table name for the Role model
func (Role) TableName() string {
	return "roles"
}

// AllRoleNames lists every role the application knows about
func AllRoleNames() []RoleName {
	return []RoleName{RoleUser, RoleModerator, RoleAdmin}
}

// RoleNameFromRequest maps a signup role key to a role name.
// Unknown keys fall back to the base user role, matching the signup contract.
func RoleNameFromRequest(key string) RoleName {
	switch key {
	case "admin":
		return RoleAdmin
	case "mod":
		return RoleModerator
	default:
		return RoleUser
	}
}
