// Package plans owns subscription plans, their module catalogs and the
// read-only billing history. The catalog is the assignability boundary: a
// module outside the tenant's current plan can never be granted.
package plans

import "time"

// Plan is a subscription plan owned by a tenant.
type Plan struct {
	ID        int64     `json:"id" db:"id"`
	TenantID  int64     `json:"tenant_id" db:"tenant_id"`
	Code      string    `json:"code" db:"code"`
	Name      string    `json:"name" db:"name"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Catalog is the set of modules (and the categories they span) a tenant's
// current plan makes assignable. Zero values mean "nothing assignable", which
// grant flows treat as an operator-recoverable condition, not a failure.
type Catalog struct {
	PlanID      int64   `json:"plan_id,omitempty"`
	ModuleIDs   []int64 `json:"module_ids"`
	CategoryIDs []int64 `json:"category_ids"`
}

// Contains reports whether the module is in the catalog.
func (c Catalog) Contains(moduleID int64) bool {
	for _, id := range c.ModuleIDs {
		if id == moduleID {
			return true
		}
	}
	return false
}

// Invoice is one billing-history row. The billing state machine lives
// outside this console; rows are review-only.
type Invoice struct {
	ID          int64      `json:"id" db:"id"`
	TenantID    int64      `json:"tenant_id" db:"tenant_id"`
	Number      string     `json:"number" db:"number"`
	AmountCents int64      `json:"amount_cents" db:"amount_cents"`
	Currency    string     `json:"currency" db:"currency"`
	Status      string     `json:"status" db:"status"`
	IssuedAt    time.Time  `json:"issued_at" db:"issued_at"`
	DueAt       time.Time  `json:"due_at" db:"due_at"`
	PaidAt      *time.Time `json:"paid_at,omitempty" db:"paid_at"`
}
