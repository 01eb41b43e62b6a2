// Package grants implements module grant management: expanding operator
// selections into per-module grant intents and applying them against the
// store under an optimistic-update protocol.
package grants

import (
	"errors"

	"github.com/campushq/campus-console/internal/permission"
)

var (
	// ErrNoProfile blocks profile-driven grant flows for users without an
	// access profile (administrative roles). Operator-recoverable.
	ErrNoProfile = errors.New("grants: user has no access profile")
	// ErrNotFound indicates the grant record does not exist.
	ErrNotFound = errors.New("grants: not found")
)

// Selection is what the operator picked: individual modules and/or whole
// categories. Either list may be empty.
type Selection struct {
	ModuleIDs   []int64 `json:"module_ids"`
	CategoryIDs []int64 `json:"category_ids"`
}

// Empty reports whether nothing was selected.
func (s Selection) Empty() bool {
	return len(s.ModuleIDs) == 0 && len(s.CategoryIDs) == 0
}

// Intent is one expanded grant instruction: all listed modules share a
// category and therefore a permission set. Modules carries the full records
// for the listed ids so the coordinator can synthesize display-complete
// speculative grants.
type Intent struct {
	CategoryCode string                    `json:"category_code"`
	ModuleIDs    []int64                   `json:"module_ids"`
	Permissions  permission.Set            `json:"permissions"`
	Type         permission.AssignmentType `json:"assignment_type"`
	Modules      []permission.Module       `json:"-"`
}

// MutationState is the lifecycle of one coordinated mutation.
type MutationState string

const (
	// StateIdle means no remote call was needed (empty expansion).
	StateIdle MutationState = "idle"
	// StatePending covers the window between speculative apply and the
	// remote outcome; it is never observable through the public API.
	StatePending MutationState = "pending"
	// StateCommitted means the remote call succeeded, possibly partially.
	StateCommitted MutationState = "committed"
	// StateRolledBack means the remote call failed outright and the local
	// view was restored from its snapshot.
	StateRolledBack MutationState = "rolledBack"
)

// MutationResult is the outcome the caller must branch on. A bulk assign of
// N modules accepting M < N is neither success nor failure wholesale:
// Assigned and Failed carry the split.
type MutationResult struct {
	State    MutationState `json:"state"`
	Assigned int           `json:"assigned"`
	Failed   int           `json:"failed"`
}

// Stats summarizes a user's grants for the console's KPI tiles.
type Stats struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"by_category"`
}

// View is the locally cached picture of one user's grants. The coordinator
// is its sole writer and always replaces it wholesale, so readers are
// snapshot-consistent.
type View struct {
	Grants []permission.Grant `json:"grants"`
	Stats  Stats              `json:"stats"`
}

// Clone returns a deep copy safe to hold across a mutation.
func (v View) Clone() View {
	out := View{Stats: Stats{Total: v.Stats.Total}}
	if v.Grants != nil {
		out.Grants = make([]permission.Grant, len(v.Grants))
		copy(out.Grants, v.Grants)
	}
	if v.Stats.ByCategory != nil {
		out.Stats.ByCategory = make(map[string]int, len(v.Stats.ByCategory))
		for k, c := range v.Stats.ByCategory {
			out.Stats.ByCategory[k] = c
		}
	}
	return out
}

// computeStats rebuilds the stats block from a grant list.
func computeStats(grantList []permission.Grant) Stats {
	stats := Stats{Total: len(grantList), ByCategory: make(map[string]int)}
	for _, g := range grantList {
		stats.ByCategory[g.CategoryCode]++
	}
	return stats
}
