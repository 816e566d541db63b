//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// User is the slice of the account record the background core reads:
// role resolution for event fan-out and the stored refresh credential
// maintained by the token cleanup job.
type User struct {
	ID           string     `json:"id"            db:"id"`
	Email        string     `json:"email"         db:"email"`
	Role         UserRole   `json:"role"          db:"role"`
	IsActive     bool       `json:"is_active"     db:"is_active"`
	IsDeleted    bool       `json:"is_deleted"    db:"is_deleted"`
	RefreshToken *string    `json:"-"             db:"refresh_token"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

// UserRole represents the authorization role of a user.
type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleManager UserRole = "manager"
	UserRoleStaff   UserRole = "staff"
)

// Valid returns true if the role is one of the known values.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleManager, UserRoleStaff:
		return true
	default:
		return false
	}
}

// String returns the string representation of the role.
func (r UserRole) String() string {
	return string(r)
}

// AdminRoles are the roles that receive operational alerts.
func AdminRoles() []UserRole {
	return []UserRole{UserRoleAdmin, UserRoleManager}
}
