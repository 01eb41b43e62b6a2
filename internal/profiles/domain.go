// Package profiles resolves users to their access profile: the named
// template of per-category default permissions that drives grant expansion.
package profiles

import (
	"time"

	"github.com/campushq/campus-console/internal/permission"
)

// AccessProfile is a permission template owned by a tenant or, when
// TenantID is nil, a global template usable by every tenant lacking an
// override with the same code.
type AccessProfile struct {
	ID       int64   `json:"id" db:"id"`
	Code     string  `json:"code" db:"code"`
	Name     string  `json:"name" db:"name"`
	TenantID *int64  `json:"tenant_id,omitempty" db:"tenant_id"`
	// Scope is a display label describing overall access breadth. It never
	// participates in permission decisions.
	Scope      string                    `json:"scope" db:"scope"`
	Categories map[string]permission.Set `json:"categories"`
	CreatedAt  time.Time                 `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time                 `json:"updated_at" db:"updated_at"`
}

// IsTemplate reports whether the profile is a global template row.
func (p AccessProfile) IsTemplate() bool {
	return p.TenantID == nil
}

// CategoryPermissions returns the profile's permission set for a category
// code. A missing entry yields the soft default: readable, nothing more.
// A nil profile never reaches this helper; callers reject it upstream.
func CategoryPermissions(p *AccessProfile, categoryCode string) permission.Set {
	if p == nil || p.Categories == nil {
		return permission.SoftDefault()
	}
	set, ok := p.Categories[categoryCode]
	if !ok {
		return permission.SoftDefault()
	}
	return set.Normalize()
}
