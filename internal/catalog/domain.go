// Package catalog exposes plan-scoped module availability: which modules and
// categories a tenant's subscription makes assignable, and a paged reader
// over them for large tenants.
package catalog

import "github.com/campushq/campus-console/internal/permission"

// AvailableCategory is a category annotated with its in-plan active modules.
// Categories with no eligible module are never emitted.
type AvailableCategory struct {
	permission.Category
	Modules []permission.Module `json:"modules"`
}

// PageRequest drives the paged module reader. Page numbering starts at 1;
// callers restart from page 1 whenever Search or CategoryID changes.
type PageRequest struct {
	TenantID   int64
	Page       int
	PageSize   int
	Search     string
	CategoryID int64
}

// Page is one slice of the module listing.
type Page struct {
	Items       []permission.Module `json:"items"`
	TotalCount  int                 `json:"total_count"`
	HasNextPage bool                `json:"has_next_page"`
}
