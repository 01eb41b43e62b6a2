package catalog

import (
	"context"
	"testing"

	"github.com/campushq/campus-console/internal/permission"
	"github.com/campushq/campus-console/internal/plans"
)

type fakeCatalogRepo struct {
	modules    []permission.Module
	categories []permission.Category
	lastSearch string
}

func (f *fakeCatalogRepo) ActiveModulesByIDs(ctx context.Context, ids []int64) ([]permission.Module, error) {
	allowed := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		allowed[id] = struct{}{}
	}
	var out []permission.Module
	for _, m := range f.modules {
		if _, ok := allowed[m.ID]; ok && m.Active {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) CategoriesByIDs(ctx context.Context, ids []int64) ([]permission.Category, error) {
	allowed := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		allowed[id] = struct{}{}
	}
	var out []permission.Category
	for _, c := range f.categories {
		if _, ok := allowed[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) ListPage(ctx context.Context, catalogIDs []int64, search string, categoryID int64, limit, offset int) ([]permission.Module, int, error) {
	f.lastSearch = search
	mods, err := f.ActiveModulesByIDs(ctx, catalogIDs)
	if err != nil {
		return nil, 0, err
	}
	if categoryID > 0 {
		var filtered []permission.Module
		for _, m := range mods {
			if m.CategoryID == categoryID {
				filtered = append(filtered, m)
			}
		}
		mods = filtered
	}
	total := len(mods)
	if offset >= len(mods) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(mods) {
		end = len(mods)
	}
	return mods[offset:end], total, nil
}

type fakePlanSource struct {
	catalog plans.Catalog
	err     error
}

func (f *fakePlanSource) TenantCatalog(ctx context.Context, tenantID int64) (plans.Catalog, error) {
	if f.err != nil {
		return plans.Catalog{}, f.err
	}
	return f.catalog, nil
}

func testModules() []permission.Module {
	return []permission.Module{
		{ID: 1, Code: "GRADEBOOK", Name: "Gradebook", CategoryID: 1, CategoryCode: "pedagogy", Active: true},
		{ID: 2, Code: "TIMETABLE", Name: "Timetable", CategoryID: 1, CategoryCode: "pedagogy", Active: true},
		{ID: 3, Code: "INVOICING", Name: "Invoicing", CategoryID: 2, CategoryCode: "finance", Active: true},
		{ID: 4, Code: "LEGACY", Name: "Legacy Reports", CategoryID: 2, CategoryCode: "finance", Active: false},
	}
}

func TestAvailableModulesExcludesOutOfPlanAndInactive(t *testing.T) {
	repo := &fakeCatalogRepo{modules: testModules()}
	// Plan covers 1, 3 and 4; module 2 is active but out of plan, 4 in plan
	// but inactive.
	source := &fakePlanSource{catalog: plans.Catalog{PlanID: 1, ModuleIDs: []int64{1, 3, 4}}}
	svc := NewService(repo, source, 0)

	mods, err := svc.AvailableModules(context.Background(), 1)
	if err != nil {
		t.Fatalf("AvailableModules() error = %v", err)
	}
	got := make(map[int64]bool, len(mods))
	for _, m := range mods {
		got[m.ID] = true
	}
	if !got[1] || !got[3] {
		t.Fatalf("expected modules 1 and 3, got %v", got)
	}
	if got[2] {
		t.Fatal("module outside plan catalog leaked into availability")
	}
	if got[4] {
		t.Fatal("inactive module leaked into availability")
	}
}

func TestAvailableModulesEmptyWithoutPlan(t *testing.T) {
	svc := NewService(&fakeCatalogRepo{modules: testModules()}, &fakePlanSource{}, 0)
	mods, err := svc.AvailableModules(context.Background(), 1)
	if err != nil {
		t.Fatalf("AvailableModules() error = %v", err)
	}
	if len(mods) != 0 {
		t.Fatalf("expected empty availability, got %d modules", len(mods))
	}
}

func TestAvailableCategoriesExcludesEmptyCategories(t *testing.T) {
	repo := &fakeCatalogRepo{
		modules: testModules(),
		categories: []permission.Category{
			{ID: 1, Code: "pedagogy", Name: "Pedagogy"},
			{ID: 2, Code: "finance", Name: "Finance"},
		},
	}
	// Plan covers both pedagogy modules and only the inactive finance one:
	// finance ends up with zero eligible modules and must disappear.
	source := &fakePlanSource{catalog: plans.Catalog{PlanID: 1, ModuleIDs: []int64{1, 2, 4}}}
	svc := NewService(repo, source, 0)

	categories, err := svc.AvailableCategories(context.Background(), 1)
	if err != nil {
		t.Fatalf("AvailableCategories() error = %v", err)
	}
	if len(categories) != 1 {
		t.Fatalf("expected one category, got %d", len(categories))
	}
	if categories[0].Code != "pedagogy" || len(categories[0].Modules) != 2 {
		t.Fatalf("unexpected category %+v", categories[0])
	}
}

func TestListModulesPagePagination(t *testing.T) {
	repo := &fakeCatalogRepo{modules: testModules()}
	source := &fakePlanSource{catalog: plans.Catalog{PlanID: 1, ModuleIDs: []int64{1, 2, 3}}}
	svc := NewService(repo, source, 0)

	page, err := svc.ListModulesPage(context.Background(), PageRequest{TenantID: 1, Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("ListModulesPage() error = %v", err)
	}
	if len(page.Items) != 2 || page.TotalCount != 3 || !page.HasNextPage {
		t.Fatalf("unexpected first page %+v", page)
	}

	page, err = svc.ListModulesPage(context.Background(), PageRequest{TenantID: 1, Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("ListModulesPage() error = %v", err)
	}
	if len(page.Items) != 1 || page.HasNextPage {
		t.Fatalf("unexpected last page %+v", page)
	}
}

func TestListModulesPageFoldsSearchTerm(t *testing.T) {
	repo := &fakeCatalogRepo{modules: testModules()}
	source := &fakePlanSource{catalog: plans.Catalog{PlanID: 1, ModuleIDs: []int64{1, 2, 3}}}
	svc := NewService(repo, source, 0)

	_, err := svc.ListModulesPage(context.Background(), PageRequest{TenantID: 1, Search: " ＧｒａｄｅＢｏｏｋ "})
	if err != nil {
		t.Fatalf("ListModulesPage() error = %v", err)
	}
	if repo.lastSearch != "gradebook" {
		t.Fatalf("repository received unfolded term %q", repo.lastSearch)
	}
}

func TestFoldSearchTerm(t *testing.T) {
	cases := map[string]string{
		"  GradeBook ": "gradebook",
		"ＴＩＭＥＴＡＢＬＥ":    "timetable", // full-width input
		"":             "",
	}
	for in, want := range cases {
		if got := FoldSearchTerm(in); got != want {
			t.Fatalf("FoldSearchTerm(%q) = %q, want %q", in, got, want)
		}
	}
}
