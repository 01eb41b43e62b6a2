package permission

import "time"

// AssignmentType records how a grant was produced.
type AssignmentType string

const (
	// AssignmentDirect marks grants picked module by module.
	AssignmentDirect AssignmentType = "direct"
	// AssignmentCategory marks grants produced by a whole-category operation.
	AssignmentCategory AssignmentType = "category"
)

// Category groups modules by business domain. Icon and color are display
// metadata carried through untouched.
type Category struct {
	ID    int64  `json:"id" db:"id"`
	Code  string `json:"code" db:"code"`
	Name  string `json:"name" db:"name"`
	Icon  string `json:"icon,omitempty" db:"icon"`
	Color string `json:"color,omitempty" db:"color"`
}

// Module is an assignable functional unit belonging to exactly one category.
type Module struct {
	ID           int64  `json:"id" db:"id"`
	Code         string `json:"code" db:"code"`
	Name         string `json:"name" db:"name"`
	CategoryID   int64  `json:"category_id" db:"category_id"`
	CategoryCode string `json:"category_code" db:"category_code"`
	CategoryName string `json:"category_name" db:"category_name"`
	Active       bool   `json:"active" db:"active"`
}

// Grant is the persisted (user, module) permission record. Provisional is a
// client-view marker for speculative records awaiting server confirmation;
// it is never written to the store.
type Grant struct {
	UserID       int64          `json:"user_id" db:"user_id"`
	ModuleID     int64          `json:"module_id" db:"module_id"`
	ModuleName   string         `json:"module_name" db:"module_name"`
	CategoryCode string         `json:"category_code" db:"category_code"`
	CategoryName string         `json:"category_name" db:"category_name"`
	Type         AssignmentType `json:"assignment_type" db:"assignment_type"`
	Permissions  Set            `json:"permissions"`
	AssignedBy   int64          `json:"assigned_by" db:"assigned_by"`
	AssignedAt   time.Time      `json:"assigned_at" db:"assigned_at"`
	ValidUntil   *time.Time     `json:"valid_until,omitempty" db:"valid_until"`
	Provisional  bool           `json:"provisional,omitempty" db:"-"`
}
