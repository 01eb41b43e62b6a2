// Package tenants exposes the school-group read model.
package tenants

import "time"

// Tenant is a school group: the ownership boundary for plans, profiles and
// user accounts.
type Tenant struct {
	ID        int64     `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	Name      string    `json:"name" db:"name"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
