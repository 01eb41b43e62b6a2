package grants

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushq/campus-console/internal/permission"
)

// Repository provides PostgreSQL backed persistence for grant records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetUserGrants returns the user's persisted grants ordered by category and
// module name.
func (r *Repository) GetUserGrants(ctx context.Context, userID int64) ([]permission.Grant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, module_id, module_name, category_code, category_name,
		       assignment_type, can_read, can_write, can_delete, can_export,
		       assigned_by, assigned_at, valid_until
		FROM module_grants
		WHERE user_id = $1
		ORDER BY category_code, module_name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []permission.Grant
	for rows.Next() {
		var g permission.Grant
		if err := rows.Scan(&g.UserID, &g.ModuleID, &g.ModuleName, &g.CategoryCode, &g.CategoryName,
			&g.Type, &g.Permissions.Read, &g.Permissions.Write, &g.Permissions.Delete, &g.Permissions.Export,
			&g.AssignedBy, &g.AssignedAt, &g.ValidUntil); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// UpsertGrants bulk-inserts grant rows for the modules in one intent,
// overwriting permissions on the (user_id, module_id) key when a row already
// exists. Rows are atomic individually; the batch may partially succeed, and
// the accepted row count is returned. Module and category names are
// denormalized from the module row at write time.
func (r *Repository) UpsertGrants(ctx context.Context, userID int64, moduleIDs []int64, perms permission.Set, assignmentType permission.AssignmentType, assignedBy int64) (int, error) {
	if len(moduleIDs) == 0 {
		return 0, nil
	}
	perms = perms.Normalize()

	tag, err := r.pool.Exec(ctx, `
		INSERT INTO module_grants
			(user_id, module_id, module_name, category_code, category_name,
			 assignment_type, can_read, can_write, can_delete, can_export,
			 assigned_by, assigned_at)
		SELECT $1, m.id, m.name, c.code, c.name, $3, $4, $5, $6, $7, $8, NOW()
		FROM modules m
		JOIN categories c ON c.id = m.category_id
		WHERE m.id = ANY($2) AND m.active
		ON CONFLICT (user_id, module_id) DO UPDATE SET
			assignment_type = EXCLUDED.assignment_type,
			can_read   = EXCLUDED.can_read,
			can_write  = EXCLUDED.can_write,
			can_delete = EXCLUDED.can_delete,
			can_export = EXCLUDED.can_export,
			assigned_by = EXCLUDED.assigned_by,
			assigned_at = EXCLUDED.assigned_at`,
		userID, moduleIDs, assignmentType,
		perms.Read, perms.Write, perms.Delete, perms.Export, assignedBy)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// DeleteGrant physically removes a grant row.
func (r *Repository) DeleteGrant(ctx context.Context, userID, moduleID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM module_grants WHERE user_id = $1 AND module_id = $2`,
		userID, moduleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateGrantPermissions replaces the permission bits of one grant row.
func (r *Repository) UpdateGrantPermissions(ctx context.Context, userID, moduleID int64, perms permission.Set) error {
	perms = perms.Normalize()
	tag, err := r.pool.Exec(ctx, `
		UPDATE module_grants
		SET can_read = $3, can_write = $4, can_delete = $5, can_export = $6
		WHERE user_id = $1 AND module_id = $2`,
		userID, moduleID, perms.Read, perms.Write, perms.Delete, perms.Export)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpired removes grants whose validity window has lapsed and returns
// the distinct users that lost at least one grant.
func (r *Repository) DeleteExpired(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `
		DELETE FROM module_grants
		WHERE valid_until IS NOT NULL AND valid_until < NOW()
		RETURNING user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[int64]struct{})
	var userIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}

// GetGrant fetches one grant row.
func (r *Repository) GetGrant(ctx context.Context, userID, moduleID int64) (permission.Grant, error) {
	var g permission.Grant
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, module_id, module_name, category_code, category_name,
		       assignment_type, can_read, can_write, can_delete, can_export,
		       assigned_by, assigned_at, valid_until
		FROM module_grants
		WHERE user_id = $1 AND module_id = $2`, userID, moduleID,
	).Scan(&g.UserID, &g.ModuleID, &g.ModuleName, &g.CategoryCode, &g.CategoryName,
		&g.Type, &g.Permissions.Read, &g.Permissions.Write, &g.Permissions.Delete, &g.Permissions.Export,
		&g.AssignedBy, &g.AssignedAt, &g.ValidUntil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return permission.Grant{}, ErrNotFound
		}
		return permission.Grant{}, err
	}
	return g, nil
}
