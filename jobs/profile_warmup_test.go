package jobs

import (
	"context"
	"testing"

	"github.com/campushq/campus-console/internal/profiles"
	"github.com/campushq/campus-console/internal/tenants"
	"github.com/campushq/campus-console/internal/users"
)

type fakeStaffLister struct {
	total int
	pages []int // page numbers requested, in order
}

func (f *fakeStaffLister) List(ctx context.Context, flt users.Filter) ([]users.User, int, error) {
	f.pages = append(f.pages, flt.Page)
	start := (flt.Page - 1) * flt.PageSize
	if start >= f.total {
		return nil, f.total, nil
	}
	n := flt.PageSize
	if start+n > f.total {
		n = f.total - start
	}
	code := "TEACHER"
	out := make([]users.User, n)
	for i := range out {
		out[i] = users.User{ID: int64(start + i + 1), TenantID: flt.TenantID, AccessProfileCode: &code}
	}
	return out, f.total, nil
}

type fakeTenantLister struct{ tenants []tenants.Tenant }

func (f *fakeTenantLister) List(ctx context.Context) ([]tenants.Tenant, error) {
	return f.tenants, nil
}

type fakeResolver struct{ resolved map[int64]bool }

func (f *fakeResolver) Resolve(ctx context.Context, userID int64) (*profiles.AccessProfile, error) {
	if f.resolved == nil {
		f.resolved = make(map[int64]bool)
	}
	f.resolved[userID] = true
	return &profiles.AccessProfile{Code: "TEACHER"}, nil
}

// Tenants with more staff than one page must still be warmed end to end.
func TestProfileWarmupPagesThroughAllStaff(t *testing.T) {
	lister := &fakeStaffLister{total: 1200}
	resolver := &fakeResolver{}
	job := NewProfileWarmupJob(lister, &fakeTenantLister{}, resolver, nil, nil)

	task, err := NewProfileWarmupTask(ProfileWarmupPayload{TenantID: 3})
	if err != nil {
		t.Fatalf("NewProfileWarmupTask() error = %v", err)
	}
	if err := job.Handle(context.Background(), task); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if len(lister.pages) != 3 || lister.pages[0] != 1 || lister.pages[2] != 3 {
		t.Fatalf("unexpected pages requested %v", lister.pages)
	}
	if len(resolver.resolved) != 1200 {
		t.Fatalf("warmed %d users, want 1200", len(resolver.resolved))
	}
	if !resolver.resolved[501] || !resolver.resolved[1200] {
		t.Fatal("staff beyond the first page were not warmed")
	}
}
