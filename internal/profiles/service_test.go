package profiles

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/campushq/campus-console/internal/permission"
	"github.com/campushq/campus-console/internal/users"
)

type mockRepo struct {
	profiles map[string]AccessProfile // keyed by code; tenant scoping faked
	getCalls int
}

func (m *mockRepo) GetByCode(ctx context.Context, code string, tenantID int64) (AccessProfile, error) {
	m.getCalls++
	p, ok := m.profiles[code]
	if !ok {
		return AccessProfile{}, ErrProfileNotFound
	}
	return p, nil
}

func (m *mockRepo) Get(ctx context.Context, id int64) (AccessProfile, error) {
	for _, p := range m.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return AccessProfile{}, ErrProfileNotFound
}

func (m *mockRepo) List(ctx context.Context, tenantID int64) ([]AccessProfile, error) {
	var out []AccessProfile
	for _, p := range m.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockRepo) Create(ctx context.Context, p AccessProfile) (AccessProfile, error) {
	return p, nil
}

func (m *mockRepo) Update(ctx context.Context, id int64, name, scope string, categories map[string]permission.Set) (AccessProfile, error) {
	return AccessProfile{ID: id, Name: name, Scope: scope, Categories: categories}, nil
}

type mockUsers struct {
	user users.User
	err  error
}

func (m *mockUsers) Get(ctx context.Context, id int64) (users.User, error) {
	if m.err != nil {
		return users.User{}, m.err
	}
	return m.user, nil
}

func strPtr(s string) *string { return &s }

func newTestService(t *testing.T, repo *mockRepo, us *mockUsers) (*Service, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	svc := NewService(repo, us, cache)
	return svc, func() {
		_ = client.Close()
		mr.Close()
	}
}

func TestResolveNilForAdministrativeUsers(t *testing.T) {
	repo := &mockRepo{}
	us := &mockUsers{user: users.User{ID: 7, TenantID: 1, Role: users.RoleGroupAdmin}}
	svc, done := newTestService(t, repo, us)
	defer done()

	profile, err := svc.Resolve(context.Background(), 7)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if profile != nil {
		t.Fatalf("expected nil profile for user without profile code, got %+v", profile)
	}
	if repo.getCalls != 0 {
		t.Fatalf("expected no profile lookup, got %d", repo.getCalls)
	}
}

func TestResolveDataIntegrityError(t *testing.T) {
	repo := &mockRepo{profiles: map[string]AccessProfile{}}
	us := &mockUsers{user: users.User{ID: 3, TenantID: 1, Role: users.RoleStaff, AccessProfileCode: strPtr("GHOST")}}
	svc, done := newTestService(t, repo, us)
	defer done()

	_, err := svc.Resolve(context.Background(), 3)
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestResolveCachesAndInvalidates(t *testing.T) {
	teacher := AccessProfile{
		ID:   1,
		Code: "TEACHER",
		Name: "Teacher",
		Categories: map[string]permission.Set{
			"pedagogy": {Read: true, Write: true},
		},
	}
	repo := &mockRepo{profiles: map[string]AccessProfile{"TEACHER": teacher}}
	us := &mockUsers{user: users.User{ID: 5, TenantID: 1, Role: users.RoleStaff, AccessProfileCode: strPtr("TEACHER")}}
	svc, done := newTestService(t, repo, us)
	defer done()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		p, err := svc.Resolve(ctx, 5)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p == nil || p.Code != "TEACHER" {
			t.Fatalf("unexpected profile %+v", p)
		}
	}
	if repo.getCalls != 1 {
		t.Fatalf("expected single repo lookup with warm cache, got %d", repo.getCalls)
	}

	if err := svc.Invalidate(ctx, 5); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if _, err := svc.Resolve(ctx, 5); err != nil {
		t.Fatalf("Resolve() after invalidate error = %v", err)
	}
	if repo.getCalls != 2 {
		t.Fatalf("expected repo lookup after invalidation, got %d", repo.getCalls)
	}
}

func TestResolveIgnoresStaleCacheAfterCodeChange(t *testing.T) {
	teacher := AccessProfile{ID: 1, Code: "TEACHER", Name: "Teacher"}
	accountant := AccessProfile{ID: 2, Code: "ACCOUNTANT", Name: "Accountant"}
	repo := &mockRepo{profiles: map[string]AccessProfile{"TEACHER": teacher, "ACCOUNTANT": accountant}}
	us := &mockUsers{user: users.User{ID: 9, TenantID: 1, Role: users.RoleStaff, AccessProfileCode: strPtr("TEACHER")}}
	svc, done := newTestService(t, repo, us)
	defer done()

	ctx := context.Background()
	if _, err := svc.Resolve(ctx, 9); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	// Code changed underneath without an invalidation: the cached entry no
	// longer matches the user's code and must not be served.
	us.user.AccessProfileCode = strPtr("ACCOUNTANT")
	p, err := svc.Resolve(ctx, 9)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if p.Code != "ACCOUNTANT" {
		t.Fatalf("stale cached profile served: %+v", p)
	}
}

func TestCategoryPermissionsSoftDefault(t *testing.T) {
	p := &AccessProfile{
		Categories: map[string]permission.Set{
			"pedagogy": {Read: true, Write: true},
			"finance":  {Read: true},
		},
	}

	got := CategoryPermissions(p, "pedagogy")
	if !got.Write || !got.Read {
		t.Fatalf("pedagogy permissions = %+v", got)
	}

	got = CategoryPermissions(p, "communication")
	if got != permission.SoftDefault() {
		t.Fatalf("missing category must yield soft default, got %+v", got)
	}

	// Malformed entry (invariant-violating bits) is corrected on read.
	p.Categories["admin"] = permission.Set{Delete: true}
	got = CategoryPermissions(p, "admin")
	if !got.Read || !got.Write || !got.Delete {
		t.Fatalf("malformed entry not normalized: %+v", got)
	}
}
