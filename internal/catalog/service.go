package catalog

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/width"

	"github.com/campushq/campus-console/internal/permission"
	"github.com/campushq/campus-console/internal/plans"
)

// RepositoryPort defines data access methods for the catalog.
type RepositoryPort interface {
	ActiveModulesByIDs(ctx context.Context, ids []int64) ([]permission.Module, error)
	CategoriesByIDs(ctx context.Context, ids []int64) ([]permission.Category, error)
	ListPage(ctx context.Context, catalogIDs []int64, search string, categoryID int64, limit, offset int) ([]permission.Module, int, error)
}

// PlanCatalogSource resolves the tenant's current plan catalog.
type PlanCatalogSource interface {
	TenantCatalog(ctx context.Context, tenantID int64) (plans.Catalog, error)
}

// Service computes plan-scoped availability and serves the paged reader.
type Service struct {
	repo        RepositoryPort
	planSource  PlanCatalogSource
	maxPageSize int

	// availability reads spike when an operator opens the assignment dialog
	// for many users at once; identical concurrent reads per tenant are
	// collapsed. Results are not retained, so plan changes are visible on
	// the next call.
	group singleflight.Group
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, planSource PlanCatalogSource, maxPageSize int) *Service {
	if maxPageSize <= 0 {
		maxPageSize = 200
	}
	return &Service{repo: repo, planSource: planSource, maxPageSize: maxPageSize}
}

// AvailableModules returns the active modules the tenant's current plan
// makes assignable. A tenant without a plan gets an empty list.
func (s *Service) AvailableModules(ctx context.Context, tenantID int64) ([]permission.Module, error) {
	key := fmt.Sprintf("modules:%d", tenantID)
	v, err, _ := s.group.Do(key, func() (any, error) {
		catalog, err := s.planSource.TenantCatalog(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		if len(catalog.ModuleIDs) == 0 {
			return []permission.Module(nil), nil
		}
		return s.repo.ActiveModulesByIDs(ctx, catalog.ModuleIDs)
	})
	if err != nil {
		return nil, err
	}
	return v.([]permission.Module), nil
}

// AvailableCategories returns the categories spanned by the tenant's plan,
// each annotated with its in-plan active modules. Categories whose every
// module is inactive or out of plan are excluded entirely.
func (s *Service) AvailableCategories(ctx context.Context, tenantID int64) ([]AvailableCategory, error) {
	modules, err := s.AvailableModules(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		return nil, nil
	}

	byCategory := make(map[int64][]permission.Module)
	var categoryIDs []int64
	for _, m := range modules {
		if _, seen := byCategory[m.CategoryID]; !seen {
			categoryIDs = append(categoryIDs, m.CategoryID)
		}
		byCategory[m.CategoryID] = append(byCategory[m.CategoryID], m)
	}

	categories, err := s.repo.CategoriesByIDs(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}

	out := make([]AvailableCategory, 0, len(categories))
	for _, c := range categories {
		mods := byCategory[c.ID]
		if len(mods) == 0 {
			continue
		}
		out = append(out, AvailableCategory{Category: c, Modules: mods})
	}
	return out, nil
}

// ListModulesPage serves one page of the tenant's assignable modules.
func (s *Service) ListModulesPage(ctx context.Context, req PageRequest) (Page, error) {
	page := req.Page
	if page <= 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}

	catalog, err := s.planSource.TenantCatalog(ctx, req.TenantID)
	if err != nil {
		return Page{}, err
	}
	if len(catalog.ModuleIDs) == 0 {
		return Page{Items: nil, TotalCount: 0, HasNextPage: false}, nil
	}

	items, total, err := s.repo.ListPage(ctx, catalog.ModuleIDs,
		FoldSearchTerm(req.Search), req.CategoryID, pageSize, (page-1)*pageSize)
	if err != nil {
		return Page{}, err
	}
	return Page{
		Items:       items,
		TotalCount:  total,
		HasNextPage: page*pageSize < total,
	}, nil
}

// FoldSearchTerm normalizes a search term for matching: trimmed, case
// folded, full-width characters folded to their canonical form.
func FoldSearchTerm(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(transform.Chain(width.Fold, cases.Fold()), s)
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}
