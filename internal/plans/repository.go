package plans

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushq/campus-console/internal/platform/db"
)

var (
	// ErrNotFound indicates the plan does not exist.
	ErrNotFound = errors.New("plans: not found")
	// ErrNoPlan indicates the tenant has no active plan. Callers translate
	// this to "nothing assignable", never to a failed flow.
	ErrNoPlan = errors.New("plans: tenant has no active plan")
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CurrentPlan returns the tenant's active plan.
func (r *Repository) CurrentPlan(ctx context.Context, tenantID int64) (Plan, error) {
	var p Plan
	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, code, name, active, created_at, updated_at
		FROM plans
		WHERE tenant_id = $1 AND active
		ORDER BY updated_at DESC
		LIMIT 1`, tenantID,
	).Scan(&p.ID, &p.TenantID, &p.Code, &p.Name, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Plan{}, ErrNoPlan
		}
		return Plan{}, err
	}
	return p, nil
}

// PlanModuleIDs returns the module ids attached to a plan.
func (r *Repository) PlanModuleIDs(ctx context.Context, planID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT module_id FROM plan_modules WHERE plan_id = $1 ORDER BY module_id`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PlanCategoryIDs returns the distinct category ids spanned by a plan's
// modules.
func (r *Repository) PlanCategoryIDs(ctx context.Context, planID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT m.category_id
		FROM plan_modules pm
		JOIN modules m ON m.id = pm.module_id
		WHERE pm.plan_id = $1
		ORDER BY m.category_id`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetPlanModules replaces the plan's module catalog with the given set by
// diffing against the current rows: surviving rows are untouched so their
// attachment history stays intact.
func (r *Repository) SetPlanModules(ctx context.Context, planID int64, moduleIDs []int64) error {
	existing, err := r.PlanModuleIDs(ctx, planID)
	if err != nil {
		return err
	}
	current := make(map[int64]struct{}, len(existing))
	for _, id := range existing {
		current[id] = struct{}{}
	}
	keep := make(map[int64]struct{}, len(moduleIDs))

	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, id := range moduleIDs {
			keep[id] = struct{}{}
			if _, ok := current[id]; ok {
				continue
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO plan_modules (plan_id, module_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				planID, id); err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == "23503" {
					return ErrNotFound
				}
				return err
			}
		}
		for id := range current {
			if _, ok := keep[id]; ok {
				continue
			}
			if _, err := tx.Exec(ctx,
				`DELETE FROM plan_modules WHERE plan_id = $1 AND module_id = $2`,
				planID, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListInvoices returns the tenant's billing history, newest first.
func (r *Repository) ListInvoices(ctx context.Context, tenantID int64, limit, offset int) ([]Invoice, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM invoices WHERE tenant_id = $1`, tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, number, amount_cents, currency, status, issued_at, due_at, paid_at
		FROM invoices
		WHERE tenant_id = $1
		ORDER BY issued_at DESC
		LIMIT $2 OFFSET $3`, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.TenantID, &inv.Number, &inv.AmountCents,
			&inv.Currency, &inv.Status, &inv.IssuedAt, &inv.DueAt, &inv.PaidAt); err != nil {
			return nil, 0, err
		}
		out = append(out, inv)
	}
	return out, total, rows.Err()
}
