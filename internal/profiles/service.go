package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campushq/campus-console/internal/permission"
	"github.com/campushq/campus-console/internal/users"
)

// RepositoryPort defines data access methods for profiles.
type RepositoryPort interface {
	GetByCode(ctx context.Context, code string, tenantID int64) (AccessProfile, error)
	Get(ctx context.Context, id int64) (AccessProfile, error)
	List(ctx context.Context, tenantID int64) ([]AccessProfile, error)
	Create(ctx context.Context, p AccessProfile) (AccessProfile, error)
	Update(ctx context.Context, id int64, name, scope string, categories map[string]permission.Set) (AccessProfile, error)
}

// UserSource looks up the user being resolved.
type UserSource interface {
	Get(ctx context.Context, id int64) (users.User, error)
}

// Service resolves users to access profiles and manages profile rows.
type Service struct {
	repo  RepositoryPort
	users UserSource
	cache *Cache
}

// NewService builds Service instance. cache may be nil.
func NewService(repo RepositoryPort, userSource UserSource, cache *Cache) *Service {
	return &Service{repo: repo, users: userSource, cache: cache}
}

// Resolve determines the access profile governing a user's module grants.
// A nil profile with nil error means the user has no profile code
// (administrative roles); callers must block profile-driven grant flows for
// such users instead of defaulting to any permission set. ErrProfileNotFound
// is returned when the code references no profile at all.
func (s *Service) Resolve(ctx context.Context, userID int64) (*AccessProfile, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve profile: %w", err)
	}
	if user.AccessProfileCode == nil || strings.TrimSpace(*user.AccessProfileCode) == "" {
		return nil, nil
	}
	code := strings.TrimSpace(*user.AccessProfileCode)

	if cached, ok := s.cache.Get(ctx, userID); ok && cached.Code == code {
		return cached, nil
	}

	profile, err := s.repo.GetByCode(ctx, code, user.TenantID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, fmt.Errorf("profile code %q for user %d: %w", code, userID, ErrProfileNotFound)
		}
		return nil, fmt.Errorf("resolve profile: %w", err)
	}

	s.cache.Put(ctx, userID, &profile)
	return &profile, nil
}

// Invalidate drops the cached resolution for a user. Wired to the users
// service so a profile-code change takes effect immediately.
func (s *Service) Invalidate(ctx context.Context, userID int64) error {
	return s.cache.Invalidate(ctx, userID)
}

// Get fetches a profile by id.
func (s *Service) Get(ctx context.Context, id int64) (AccessProfile, error) {
	return s.repo.Get(ctx, id)
}

// List returns profiles visible to a tenant (own rows plus templates).
func (s *Service) List(ctx context.Context, tenantID int64) ([]AccessProfile, error) {
	return s.repo.List(ctx, tenantID)
}

// Create inserts a profile after normalizing its category permission sets.
func (s *Service) Create(ctx context.Context, p AccessProfile) (AccessProfile, error) {
	if strings.TrimSpace(p.Code) == "" {
		return AccessProfile{}, errors.New("profiles: code required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return AccessProfile{}, errors.New("profiles: name required")
	}
	return s.repo.Create(ctx, p)
}

// Update replaces mutable profile fields.
func (s *Service) Update(ctx context.Context, id int64, name, scope string, categories map[string]permission.Set) (AccessProfile, error) {
	if strings.TrimSpace(name) == "" {
		return AccessProfile{}, errors.New("profiles: name required")
	}
	return s.repo.Update(ctx, id, name, scope, categories)
}
