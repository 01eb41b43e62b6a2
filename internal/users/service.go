package users

import (
	"context"
	"fmt"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (User, error)
	List(ctx context.Context, f Filter) ([]User, int, error)
	SetAccessProfileCode(ctx context.Context, id int64, code *string) error
}

// ProfileInvalidator drops cached profile resolutions for a user. Implemented
// by the profiles resolver cache; resolution output must never outlive a
// profile-code change.
type ProfileInvalidator interface {
	Invalidate(ctx context.Context, userID int64) error
}

// Service handles user business logic.
type Service struct {
	repo     RepositoryPort
	profiles ProfileInvalidator
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, profiles ProfileInvalidator) *Service {
	return &Service{repo: repo, profiles: profiles}
}

// Get returns a single user.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

// List returns users matching the filter plus the total count.
func (s *Service) List(ctx context.Context, f Filter) ([]User, int, error) {
	return s.repo.List(ctx, f)
}

// SetAccessProfileCode updates the user's profile code and invalidates any
// cached resolution for them.
func (s *Service) SetAccessProfileCode(ctx context.Context, id int64, code *string) (User, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return User{}, err
	}
	if err := s.repo.SetAccessProfileCode(ctx, id, code); err != nil {
		return User{}, fmt.Errorf("set profile code: %w", err)
	}
	if s.profiles != nil {
		if err := s.profiles.Invalidate(ctx, id); err != nil {
			return User{}, fmt.Errorf("invalidate profile cache: %w", err)
		}
	}
	return s.repo.Get(ctx, id)
}
