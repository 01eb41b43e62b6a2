package audit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeAuditRepo struct {
	entries   []Entry
	lastLimit int
	lastOff   int
	err       error
}

func (f *fakeAuditRepo) Timeline(ctx context.Context, filters Filters, limit, offset int) ([]Entry, int, error) {
	f.lastLimit = limit
	f.lastOff = offset
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.entries, len(f.entries), nil
}

func TestTimelineClampsPaging(t *testing.T) {
	repo := &fakeAuditRepo{entries: []Entry{{ID: "a", Action: "grants.assign", At: time.Now()}}}
	svc := NewService(repo)

	res, err := svc.Timeline(context.Background(), Filters{Page: -3, PageSize: 900})
	if err != nil {
		t.Fatalf("Timeline() error = %v", err)
	}
	if repo.lastLimit != 50 || repo.lastOff != 0 {
		t.Fatalf("limit/offset = %d/%d, want 50/0", repo.lastLimit, repo.lastOff)
	}
	if res.Pagination.Page != 1 || res.Pagination.PerPage != 50 {
		t.Fatalf("unexpected pagination %+v", res.Pagination)
	}
}

func TestTimelineDefaultsAndOffset(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewService(repo)

	res, err := svc.Timeline(context.Background(), Filters{Page: 3})
	if err != nil {
		t.Fatalf("Timeline() error = %v", err)
	}
	if repo.lastLimit != 20 || repo.lastOff != 40 {
		t.Fatalf("limit/offset = %d/%d, want 20/40", repo.lastLimit, repo.lastOff)
	}
	if res.Entries == nil {
		t.Fatal("entries must serialize as an empty list, not null")
	}
}

func TestTimelinePropagatesRepositoryError(t *testing.T) {
	repo := &fakeAuditRepo{err: errors.New("boom")}
	svc := NewService(repo)
	if _, err := svc.Timeline(context.Background(), Filters{}); err == nil {
		t.Fatal("expected error")
	}
}
