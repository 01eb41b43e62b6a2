package plans

import (
	"context"
	"testing"
)

type fakePlanRepo struct {
	plan       Plan
	planErr    error
	moduleIDs  []int64
	categories []int64
}

func (f *fakePlanRepo) CurrentPlan(ctx context.Context, tenantID int64) (Plan, error) {
	if f.planErr != nil {
		return Plan{}, f.planErr
	}
	return f.plan, nil
}

func (f *fakePlanRepo) PlanModuleIDs(ctx context.Context, planID int64) ([]int64, error) {
	return append([]int64(nil), f.moduleIDs...), nil
}

func (f *fakePlanRepo) PlanCategoryIDs(ctx context.Context, planID int64) ([]int64, error) {
	return append([]int64(nil), f.categories...), nil
}

func (f *fakePlanRepo) SetPlanModules(ctx context.Context, planID int64, moduleIDs []int64) error {
	f.moduleIDs = moduleIDs
	return nil
}

func (f *fakePlanRepo) ListInvoices(ctx context.Context, tenantID int64, limit, offset int) ([]Invoice, int, error) {
	return nil, 0, nil
}

func TestTenantCatalogResolvesCurrentPlan(t *testing.T) {
	repo := &fakePlanRepo{
		plan:       Plan{ID: 4, TenantID: 1, Active: true},
		moduleIDs:  []int64{10, 11, 12},
		categories: []int64{1, 2},
	}
	svc := NewService(repo)

	catalog, err := svc.TenantCatalog(context.Background(), 1)
	if err != nil {
		t.Fatalf("TenantCatalog() error = %v", err)
	}
	if catalog.PlanID != 4 {
		t.Fatalf("expected plan 4, got %d", catalog.PlanID)
	}
	if len(catalog.ModuleIDs) != 3 || len(catalog.CategoryIDs) != 2 {
		t.Fatalf("unexpected catalog %+v", catalog)
	}
	if !catalog.Contains(11) || catalog.Contains(99) {
		t.Fatalf("Contains misbehaves for %+v", catalog)
	}
}

func TestTenantCatalogEmptyWhenNoPlan(t *testing.T) {
	svc := NewService(&fakePlanRepo{planErr: ErrNoPlan})

	catalog, err := svc.TenantCatalog(context.Background(), 1)
	if err != nil {
		t.Fatalf("no plan must not be an error, got %v", err)
	}
	if len(catalog.ModuleIDs) != 0 || len(catalog.CategoryIDs) != 0 || catalog.PlanID != 0 {
		t.Fatalf("expected empty catalog, got %+v", catalog)
	}
}
