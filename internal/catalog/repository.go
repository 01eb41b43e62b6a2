package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushq/campus-console/internal/permission"
)

const moduleColumns = `m.id, m.code, m.name, m.category_id, c.code, c.name, m.active`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ActiveModulesByIDs returns active modules among the given ids, with
// category metadata joined in. Inactive and unknown ids are silently dropped.
func (r *Repository) ActiveModulesByIDs(ctx context.Context, ids []int64) ([]permission.Module, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+moduleColumns+`
		FROM modules m
		JOIN categories c ON c.id = m.category_id
		WHERE m.id = ANY($1) AND m.active
		ORDER BY c.code, m.name`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectModules(rows)
}

// CategoriesByIDs returns categories for the given ids with their display
// metadata.
func (r *Repository) CategoriesByIDs(ctx context.Context, ids []int64) ([]permission.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, code, name, COALESCE(icon, ''), COALESCE(color, '')
		FROM categories
		WHERE id = ANY($1)
		ORDER BY code`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []permission.Category
	for rows.Next() {
		var c permission.Category
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Icon, &c.Color); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListPage returns one page of active modules restricted to the given
// catalog ids, optionally filtered by search pattern and category.
func (r *Repository) ListPage(ctx context.Context, catalogIDs []int64, search string, categoryID int64, limit, offset int) ([]permission.Module, int, error) {
	if len(catalogIDs) == 0 {
		return nil, 0, nil
	}

	conditions := []string{"m.id = ANY($1)", "m.active"}
	args := []any{catalogIDs}
	argPos := 2

	if search != "" {
		// The search term arrives width-folded; NFKC folds the column the
		// same way so full-width input matches stored names.
		conditions = append(conditions, fmt.Sprintf(
			"(normalize(m.name, NFKC) ILIKE $%d OR normalize(m.code, NFKC) ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+search+"%")
		argPos++
	}
	if categoryID > 0 {
		conditions = append(conditions, fmt.Sprintf("m.category_id = $%d", argPos))
		args = append(args, categoryID)
		argPos++
	}

	where := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		where += " AND " + conditions[i]
	}

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM modules m JOIN categories c ON c.id = m.category_id %s", where)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM modules m
		JOIN categories c ON c.id = m.category_id
		%s
		ORDER BY c.code, m.name
		LIMIT $%d OFFSET $%d`, moduleColumns, where, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	modules, err := collectModules(rows)
	if err != nil {
		return nil, 0, err
	}
	return modules, total, nil
}

func collectModules(rows pgx.Rows) ([]permission.Module, error) {
	var out []permission.Module
	for rows.Next() {
		var m permission.Module
		if err := rows.Scan(&m.ID, &m.Code, &m.Name, &m.CategoryID,
			&m.CategoryCode, &m.CategoryName, &m.Active); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
