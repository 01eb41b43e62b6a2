package plans

import (
	"context"
	"errors"
	"fmt"
)

// RepositoryPort defines data access methods for plans.
type RepositoryPort interface {
	CurrentPlan(ctx context.Context, tenantID int64) (Plan, error)
	PlanModuleIDs(ctx context.Context, planID int64) ([]int64, error)
	PlanCategoryIDs(ctx context.Context, planID int64) ([]int64, error)
	SetPlanModules(ctx context.Context, planID int64, moduleIDs []int64) error
	ListInvoices(ctx context.Context, tenantID int64, limit, offset int) ([]Invoice, int, error)
}

// Service handles plan business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// TenantCatalog resolves the tenant's current plan catalog. Plan catalogs
// change on upgrade/downgrade, so this is re-resolved per call and never
// cached here. A tenant with no plan gets an empty catalog, not an error.
func (s *Service) TenantCatalog(ctx context.Context, tenantID int64) (Catalog, error) {
	plan, err := s.repo.CurrentPlan(ctx, tenantID)
	if err != nil {
		if errors.Is(err, ErrNoPlan) {
			return Catalog{}, nil
		}
		return Catalog{}, fmt.Errorf("resolve current plan: %w", err)
	}

	moduleIDs, err := s.repo.PlanModuleIDs(ctx, plan.ID)
	if err != nil {
		return Catalog{}, fmt.Errorf("plan modules: %w", err)
	}
	categoryIDs, err := s.repo.PlanCategoryIDs(ctx, plan.ID)
	if err != nil {
		return Catalog{}, fmt.Errorf("plan categories: %w", err)
	}
	return Catalog{PlanID: plan.ID, ModuleIDs: moduleIDs, CategoryIDs: categoryIDs}, nil
}

// CurrentPlan returns the tenant's active plan.
func (s *Service) CurrentPlan(ctx context.Context, tenantID int64) (Plan, error) {
	return s.repo.CurrentPlan(ctx, tenantID)
}

// SetPlanModules replaces a plan's module catalog.
func (s *Service) SetPlanModules(ctx context.Context, planID int64, moduleIDs []int64) error {
	return s.repo.SetPlanModules(ctx, planID, moduleIDs)
}

// ListInvoices returns the tenant's billing history.
func (s *Service) ListInvoices(ctx context.Context, tenantID int64, limit, offset int) ([]Invoice, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListInvoices(ctx, tenantID, limit, offset)
}
