package grants

import (
	"sort"

	"github.com/campushq/campus-console/internal/permission"
	"github.com/campushq/campus-console/internal/profiles"
)

// Expand resolves an operator selection into concrete grant intents.
//
// available is the tenant's plan-scoped active module list; anything outside
// it is not grantable and selected ids not in it are dropped, including ids
// passed explicitly. alreadyAssigned module ids are subtracted so
// re-selecting a granted module is a no-op for that module.
//
// Permissions are always derived from the module's own category through the
// profile, regardless of whether the module arrived via a category pick or
// an individual pick. Intents are grouped by category code so the
// coordinator issues one store call per distinct permission set.
//
// An expansion that leaves nothing to grant returns an empty slice and nil
// error; callers must not issue a remote call for it. A nil profile rejects
// the whole call with ErrNoProfile.
func Expand(sel Selection, profile *profiles.AccessProfile, available []permission.Module, alreadyAssigned map[int64]struct{}) ([]Intent, error) {
	if profile == nil {
		return nil, ErrNoProfile
	}

	moduleByID := make(map[int64]permission.Module, len(available))
	modulesByCategory := make(map[int64][]permission.Module)
	for _, m := range available {
		moduleByID[m.ID] = m
		modulesByCategory[m.CategoryID] = append(modulesByCategory[m.CategoryID], m)
	}

	type pick struct {
		module       permission.Module
		fromCategory bool
	}
	picked := make(map[int64]pick)

	for _, categoryID := range sel.CategoryIDs {
		for _, m := range modulesByCategory[categoryID] {
			if _, ok := alreadyAssigned[m.ID]; ok {
				continue
			}
			picked[m.ID] = pick{module: m, fromCategory: true}
		}
	}

	for _, moduleID := range sel.ModuleIDs {
		m, inPlan := moduleByID[moduleID]
		if !inPlan {
			continue
		}
		if _, ok := alreadyAssigned[moduleID]; ok {
			continue
		}
		// A category pick covering the same module wins the tie: the
		// broader intent is the one recorded.
		if existing, ok := picked[moduleID]; ok && existing.fromCategory {
			continue
		}
		picked[moduleID] = pick{module: m}
	}

	type group struct {
		modules      []permission.Module
		fromCategory bool
	}
	groups := make(map[string]*group)
	for _, p := range picked {
		g, ok := groups[p.module.CategoryCode]
		if !ok {
			g = &group{}
			groups[p.module.CategoryCode] = g
		}
		g.modules = append(g.modules, p.module)
		if p.fromCategory {
			g.fromCategory = true
		}
	}

	codes := make([]string, 0, len(groups))
	for code := range groups {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	intents := make([]Intent, 0, len(groups))
	for _, code := range codes {
		g := groups[code]
		sort.Slice(g.modules, func(i, j int) bool { return g.modules[i].ID < g.modules[j].ID })
		ids := make([]int64, len(g.modules))
		for i, m := range g.modules {
			ids[i] = m.ID
		}
		assignmentType := permission.AssignmentDirect
		if g.fromCategory {
			assignmentType = permission.AssignmentCategory
		}
		intents = append(intents, Intent{
			CategoryCode: code,
			ModuleIDs:    ids,
			Permissions:  profiles.CategoryPermissions(profile, code),
			Type:         assignmentType,
			Modules:      g.modules,
		})
	}
	return intents, nil
}
