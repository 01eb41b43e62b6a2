package grants

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campushq/campus-console/internal/permission"
	"github.com/campushq/campus-console/internal/profiles"
	"github.com/campushq/campus-console/internal/shared"
	"github.com/campushq/campus-console/internal/users"
)

// ProfileSource resolves a user's access profile.
type ProfileSource interface {
	Resolve(ctx context.Context, userID int64) (*profiles.AccessProfile, error)
}

// AvailabilitySource yields the tenant's plan-scoped active modules.
type AvailabilitySource interface {
	AvailableModules(ctx context.Context, tenantID int64) ([]permission.Module, error)
}

// UserSource looks up the grant target.
type UserSource interface {
	Get(ctx context.Context, id int64) (users.User, error)
}

// Service wires expansion and coordination: selection in, mutation result
// out. Expansion itself never touches the store; all transport-facing error
// handling lives in the coordinator.
type Service struct {
	coordinator *Coordinator
	profileSrc  ProfileSource
	availSrc    AvailabilitySource
	userSrc     UserSource
	audit       *shared.AuditLogger
	logger      *slog.Logger
}

// NewService builds Service instance. audit may be nil.
func NewService(coordinator *Coordinator, profileSrc ProfileSource, availSrc AvailabilitySource, userSrc UserSource, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{
		coordinator: coordinator,
		profileSrc:  profileSrc,
		availSrc:    availSrc,
		userSrc:     userSrc,
		audit:       audit,
		logger:      logger,
	}
}

// Assign expands the selection against the user's profile and plan catalog,
// then applies the intents. An expansion with nothing left to grant returns
// StateIdle without touching the store.
func (s *Service) Assign(ctx context.Context, actorID, userID int64, sel Selection) (MutationResult, error) {
	user, err := s.userSrc.Get(ctx, userID)
	if err != nil {
		return MutationResult{}, fmt.Errorf("load user: %w", err)
	}

	profile, err := s.profileSrc.Resolve(ctx, userID)
	if err != nil {
		return MutationResult{}, err
	}

	available, err := s.availSrc.AvailableModules(ctx, user.TenantID)
	if err != nil {
		return MutationResult{}, fmt.Errorf("load availability: %w", err)
	}

	view, err := s.coordinator.Grants(ctx, userID)
	if err != nil {
		return MutationResult{}, err
	}
	assigned := make(map[int64]struct{}, len(view.Grants))
	for _, g := range view.Grants {
		assigned[g.ModuleID] = struct{}{}
	}

	intents, err := Expand(sel, profile, available, assigned)
	if err != nil {
		return MutationResult{}, err
	}
	if len(intents) == 0 {
		return MutationResult{State: StateIdle}, nil
	}

	result, err := s.coordinator.Assign(ctx, userID, actorID, intents)
	if err != nil {
		return result, err
	}
	s.auditRecord(ctx, actorID, "grants.assign", userID, map[string]any{
		"assigned": result.Assigned,
		"failed":   result.Failed,
	})
	return result, nil
}

// Revoke removes one grant.
func (s *Service) Revoke(ctx context.Context, actorID, userID, moduleID int64) (MutationResult, error) {
	result, err := s.coordinator.Revoke(ctx, userID, moduleID)
	if err != nil {
		return result, err
	}
	s.auditRecord(ctx, actorID, "grants.revoke", userID, map[string]any{"module_id": moduleID})
	return result, nil
}

// EditPermissions replaces one grant's permission bits.
func (s *Service) EditPermissions(ctx context.Context, actorID, userID, moduleID int64, perms permission.Set) (MutationResult, error) {
	result, err := s.coordinator.EditPermissions(ctx, userID, moduleID, perms)
	if err != nil {
		return result, err
	}
	s.auditRecord(ctx, actorID, "grants.edit_permissions", userID, map[string]any{"module_id": moduleID})
	return result, nil
}

// Grants returns the user's grant view.
func (s *Service) Grants(ctx context.Context, userID int64) (View, error) {
	return s.coordinator.Grants(ctx, userID)
}

// UserStats returns the user's grant stats.
func (s *Service) UserStats(ctx context.Context, userID int64) (Stats, error) {
	return s.coordinator.UserStats(ctx, userID)
}

func (s *Service) auditRecord(ctx context.Context, actorID int64, action string, userID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: fmt.Sprintf("%d", userID),
		Meta:     meta,
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record", slog.Any("error", err), slog.String("action", action))
	}
}
