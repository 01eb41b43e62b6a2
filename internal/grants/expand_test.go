package grants

import (
	"errors"
	"testing"

	"github.com/campushq/campus-console/internal/permission"
	"github.com/campushq/campus-console/internal/profiles"
)

func planModules() []permission.Module {
	return []permission.Module{
		{ID: 1, Code: "GRADEBOOK", Name: "Gradebook", CategoryID: 10, CategoryCode: "pedagogy", CategoryName: "Pedagogy", Active: true},
		{ID: 2, Code: "TIMETABLE", Name: "Timetable", CategoryID: 10, CategoryCode: "pedagogy", CategoryName: "Pedagogy", Active: true},
		{ID: 3, Code: "INVOICING", Name: "Invoicing", CategoryID: 20, CategoryCode: "finance", CategoryName: "Finance", Active: true},
	}
}

func teacherProfile() *profiles.AccessProfile {
	return &profiles.AccessProfile{
		ID:   1,
		Code: "TEACHER",
		Categories: map[string]permission.Set{
			"pedagogy": {Read: true, Write: true},
			"finance":  {Read: true},
		},
	}
}

func assigned(ids ...int64) map[int64]struct{} {
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func TestExpandNilProfileRejected(t *testing.T) {
	sel := Selection{ModuleIDs: []int64{1}, CategoryIDs: []int64{10}}
	intents, err := Expand(sel, nil, planModules(), nil)
	if !errors.Is(err, ErrNoProfile) {
		t.Fatalf("expected ErrNoProfile, got %v", err)
	}
	if len(intents) != 0 {
		t.Fatalf("expected no intents, got %d", len(intents))
	}
}

func TestExpandCategorySelection(t *testing.T) {
	intents, err := Expand(Selection{CategoryIDs: []int64{10}}, teacherProfile(), planModules(), nil)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(intents) != 1 {
		t.Fatalf("expected one intent, got %d", len(intents))
	}
	it := intents[0]
	if it.CategoryCode != "pedagogy" || it.Type != permission.AssignmentCategory {
		t.Fatalf("unexpected intent %+v", it)
	}
	if len(it.ModuleIDs) != 2 || it.ModuleIDs[0] != 1 || it.ModuleIDs[1] != 2 {
		t.Fatalf("unexpected module ids %v", it.ModuleIDs)
	}
	want := permission.Set{Read: true, Write: true}
	if it.Permissions != want {
		t.Fatalf("permissions = %+v, want %+v", it.Permissions, want)
	}
}

// Re-expanding the same category against the committed assignment set must
// yield nothing: already-granted modules are never re-queued.
func TestExpandIdempotentReExpansion(t *testing.T) {
	profile := teacherProfile()
	first, err := Expand(Selection{CategoryIDs: []int64{10}}, profile, planModules(), nil)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	committed := assigned(first[0].ModuleIDs...)

	second, err := Expand(Selection{CategoryIDs: []int64{10}}, profile, planModules(), committed)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("re-expansion produced %d intents, want 0", len(second))
	}
}

// A mixed individual pick spanning categories must produce one intent per
// category with that category's permissions, never a merged set.
func TestExpandPerModuleCategoryResolution(t *testing.T) {
	intents, err := Expand(Selection{ModuleIDs: []int64{1, 3}}, teacherProfile(), planModules(), nil)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(intents) != 2 {
		t.Fatalf("expected two intents, got %d", len(intents))
	}
	// Intents are ordered by category code: finance, pedagogy.
	fin, ped := intents[0], intents[1]
	if fin.CategoryCode != "finance" || ped.CategoryCode != "pedagogy" {
		t.Fatalf("unexpected grouping: %+v", intents)
	}
	if fin.Permissions != (permission.Set{Read: true}) {
		t.Fatalf("finance permissions = %+v", fin.Permissions)
	}
	if ped.Permissions != (permission.Set{Read: true, Write: true}) {
		t.Fatalf("pedagogy permissions = %+v", ped.Permissions)
	}
	if fin.Type != permission.AssignmentDirect || ped.Type != permission.AssignmentDirect {
		t.Fatalf("individual picks must be direct: %+v", intents)
	}
}

func TestExpandCategoryWinsTieBreak(t *testing.T) {
	sel := Selection{ModuleIDs: []int64{1}, CategoryIDs: []int64{10}}
	intents, err := Expand(sel, teacherProfile(), planModules(), nil)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(intents) != 1 {
		t.Fatalf("expected one intent, got %d", len(intents))
	}
	if intents[0].Type != permission.AssignmentCategory {
		t.Fatalf("category pick must win the tie, got %v", intents[0].Type)
	}
	if len(intents[0].ModuleIDs) != 2 {
		t.Fatalf("module reachable both ways must appear once: %v", intents[0].ModuleIDs)
	}
}

// Module ids outside the plan catalog never expand, even passed explicitly.
func TestExpandPlanScopeExclusion(t *testing.T) {
	intents, err := Expand(Selection{ModuleIDs: []int64{99}}, teacherProfile(), planModules(), nil)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(intents) != 0 {
		t.Fatalf("out-of-plan module expanded: %+v", intents)
	}
}

func TestExpandSoftDefaultForUnlistedCategory(t *testing.T) {
	profile := &profiles.AccessProfile{ID: 2, Code: "LIBRARIAN", Categories: map[string]permission.Set{}}
	intents, err := Expand(Selection{ModuleIDs: []int64{3}}, profile, planModules(), nil)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(intents) != 1 {
		t.Fatalf("expected one intent, got %d", len(intents))
	}
	if intents[0].Permissions != permission.SoftDefault() {
		t.Fatalf("unlisted category must get soft default, got %+v", intents[0].Permissions)
	}
}

// The end-to-end walk: category grant then a follow-up individual pick.
func TestExpandScenarioCategoryThenIndividual(t *testing.T) {
	profile := teacherProfile()
	modules := planModules()

	first, err := Expand(Selection{CategoryIDs: []int64{10}}, profile, modules, nil)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(first) != 1 || len(first[0].ModuleIDs) != 2 {
		t.Fatalf("unexpected first expansion %+v", first)
	}
	if first[0].Permissions != (permission.Set{Read: true, Write: true}) {
		t.Fatalf("first expansion permissions = %+v", first[0].Permissions)
	}

	committed := assigned(first[0].ModuleIDs...)
	second, err := Expand(Selection{ModuleIDs: []int64{3}}, profile, modules, committed)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(second) != 1 || len(second[0].ModuleIDs) != 1 || second[0].ModuleIDs[0] != 3 {
		t.Fatalf("unexpected second expansion %+v", second)
	}
	if second[0].Permissions != (permission.Set{Read: true}) {
		t.Fatalf("second expansion permissions = %+v", second[0].Permissions)
	}
}
