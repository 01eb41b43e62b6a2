package audit

import (
	"context"
	"errors"

	"github.com/campushq/campus-console/internal/shared"
)

// RepositoryPort is the persistence boundary of the audit service.
type RepositoryPort interface {
	Timeline(ctx context.Context, f Filters, limit, offset int) ([]Entry, int, error)
}

// Result bundles one timeline page with its pagination metadata.
type Result struct {
	Entries    []Entry           `json:"entries"`
	Pagination shared.Pagination `json:"pagination"`
}

// Service coordinates audit timeline reads.
type Service struct {
	repo RepositoryPort
}

// NewService constructs a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Timeline returns one page of the audit trail.
func (s *Service) Timeline(ctx context.Context, f Filters) (Result, error) {
	if s.repo == nil {
		return Result{}, errors.New("audit: repository not configured")
	}
	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 50 {
		pageSize = 50
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}

	entries, total, err := s.repo.Timeline(ctx, f, pageSize, (page-1)*pageSize)
	if err != nil {
		return Result{}, err
	}
	if entries == nil {
		entries = []Entry{}
	}
	return Result{Entries: entries, Pagination: shared.NewPagination(page, pageSize, total)}, nil
}
