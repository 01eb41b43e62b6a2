package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushq/campus-console/internal/permission"
)

var (
	// ErrProfileNotFound indicates neither a tenant-scoped profile nor a
	// global template exists for a code. When surfaced from resolution this
	// is a data-integrity error, not operator error.
	ErrProfileNotFound = errors.New("profiles: not found")
	// ErrDuplicateCode indicates a (code, tenant) pair already exists.
	ErrDuplicateCode = errors.New("profiles: code already exists for tenant")
)

const profileColumns = `id, code, name, tenant_id, scope, category_permissions, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByCode resolves a profile code for a tenant: the tenant-scoped row wins,
// the global template is the fallback. One query; tenant rows sort first.
func (r *Repository) GetByCode(ctx context.Context, code string, tenantID int64) (AccessProfile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM access_profiles
		WHERE code = $1 AND (tenant_id = $2 OR tenant_id IS NULL)
		ORDER BY tenant_id NULLS LAST
		LIMIT 1`, code, tenantID)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccessProfile{}, ErrProfileNotFound
		}
		return AccessProfile{}, err
	}
	return p, nil
}

// Get fetches a profile by id.
func (r *Repository) Get(ctx context.Context, id int64) (AccessProfile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM access_profiles WHERE id = $1`, id)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccessProfile{}, ErrProfileNotFound
		}
		return AccessProfile{}, err
	}
	return p, nil
}

// List returns the tenant's profiles plus global templates not overridden by
// the tenant, ordered by code.
func (r *Repository) List(ctx context.Context, tenantID int64) ([]AccessProfile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT ON (code) `+profileColumns+`
		FROM access_profiles
		WHERE tenant_id = $1 OR tenant_id IS NULL
		ORDER BY code, tenant_id NULLS LAST`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AccessProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create inserts a profile row.
func (r *Repository) Create(ctx context.Context, p AccessProfile) (AccessProfile, error) {
	catJSON, err := marshalCategories(p.Categories)
	if err != nil {
		return AccessProfile{}, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO access_profiles (code, name, tenant_id, scope, category_permissions)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+profileColumns,
		strings.TrimSpace(p.Code), strings.TrimSpace(p.Name), p.TenantID, p.Scope, catJSON)
	created, err := scanProfile(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return AccessProfile{}, ErrDuplicateCode
		}
		return AccessProfile{}, err
	}
	return created, nil
}

// Update replaces name, scope and category permissions of a profile.
func (r *Repository) Update(ctx context.Context, id int64, name, scope string, categories map[string]permission.Set) (AccessProfile, error) {
	catJSON, err := marshalCategories(categories)
	if err != nil {
		return AccessProfile{}, err
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE access_profiles
		SET name = $2, scope = $3, category_permissions = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING `+profileColumns,
		id, strings.TrimSpace(name), scope, catJSON)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccessProfile{}, ErrProfileNotFound
		}
		return AccessProfile{}, err
	}
	return p, nil
}

func marshalCategories(categories map[string]permission.Set) ([]byte, error) {
	normalized := make(map[string]permission.Set, len(categories))
	for code, set := range categories {
		normalized[code] = set.Normalize()
	}
	data, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("marshal category permissions: %w", err)
	}
	return data, nil
}

func scanProfile(row pgx.Row) (AccessProfile, error) {
	var p AccessProfile
	var catJSON []byte
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.TenantID, &p.Scope, &catJSON, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return AccessProfile{}, err
	}
	if len(catJSON) > 0 {
		// A malformed column falls back to no category entries rather than
		// failing resolution; readers then get the soft default per category.
		if err := json.Unmarshal(catJSON, &p.Categories); err != nil {
			p.Categories = nil
		}
	}
	return p, nil
}
