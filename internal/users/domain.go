package users

import "time"

// Role classifies a staff account. Administrative roles carry no access
// profile: they manage the console itself and are never targets of module
// grants.
type Role string

const (
	RoleSuperAdmin Role = "SUPERADMIN"
	RoleGroupAdmin Role = "GROUP_ADMIN"
	RoleStaff      Role = "STAFF"
)

// Administrative reports whether the role is excluded from profile-driven
// module grants.
func (r Role) Administrative() bool {
	return r == RoleSuperAdmin || r == RoleGroupAdmin
}

// User is a staff account belonging to exactly one tenant.
type User struct {
	ID                int64     `json:"id" db:"id"`
	TenantID          int64     `json:"tenant_id" db:"tenant_id"`
	Email             string    `json:"email" db:"email"`
	FullName          string    `json:"full_name" db:"full_name"`
	Role              Role      `json:"role" db:"role"`
	AccessProfileCode *string   `json:"access_profile_code,omitempty" db:"access_profile_code"`
	Active            bool      `json:"active" db:"active"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// Filter narrows user listings.
type Filter struct {
	TenantID int64
	Role     *Role
	Active   *bool
	Search   string
	Page     int
	PageSize int
}
