package domain

import "time"

const (
	// AdminRoleName is the bootstrap superuser role. Administration endpoints are
	// gated on an exact match against this name; it is the only place where a role
	// grants something without an explicit Permission row.
	AdminRoleName = "admin"

	// DefaultRoleName is the role assigned to every new registrant unless the
	// service is configured with another one.
	DefaultRoleName = "user"

	// AdminEmail is the account ensured by Bootstrap.
	AdminEmail = "admin@example.com"
)

// User models an account that can authenticate with email and password.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	IsActive     bool
	RoleID       *int64
	Role         *Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RoleName returns the name of the user's role, or nil when no role is assigned.
func (u *User) RoleName() *string {
	if u == nil || u.Role == nil {
		return nil
	}
	name := u.Role.Name
	return &name
}

// IsAdmin reports whether the user holds the bootstrap admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role != nil && u.Role.Name == AdminRoleName
}
