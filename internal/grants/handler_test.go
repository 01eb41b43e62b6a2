package grants

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/campus-console/internal/permission"
	"github.com/campushq/campus-console/internal/profiles"
	"github.com/campushq/campus-console/internal/shared"
	"github.com/campushq/campus-console/internal/users"
)

type stubProfiles struct {
	profile *profiles.AccessProfile
	err     error
}

func (s stubProfiles) Resolve(ctx context.Context, userID int64) (*profiles.AccessProfile, error) {
	return s.profile, s.err
}

type stubAvailability struct {
	modules []permission.Module
}

func (s stubAvailability) AvailableModules(ctx context.Context, tenantID int64) ([]permission.Module, error) {
	return s.modules, nil
}

type stubUsers struct {
	user users.User
	err  error
}

func (s stubUsers) Get(ctx context.Context, id int64) (users.User, error) {
	return s.user, s.err
}

func newTestHandler(t *testing.T, profile *profiles.AccessProfile, store *fakeStore) *Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	coordinator := NewCoordinator(store, &fakeEnqueuer{}, nil, logger)
	code := "TEACHER"
	svc := NewService(coordinator,
		stubProfiles{profile: profile},
		stubAvailability{modules: planModules()},
		stubUsers{user: users.User{ID: 7, TenantID: 1, Role: users.RoleStaff, AccessProfileCode: &code}},
		nil, logger)
	return NewHandler(logger, svc)
}

func doAssign(t *testing.T, h *Handler, body string, withActor bool) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	h.MountRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/users/7/grants", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if withActor {
		req = req.WithContext(shared.ContextWithActor(req.Context(), 99))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestAssignEndpointCommits(t *testing.T) {
	h := newTestHandler(t, teacherProfile(), &fakeStore{})

	rr := doAssign(t, h, `{"category_ids":[10]}`, true)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var result MutationResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, StateCommitted, result.State)
	assert.Equal(t, 2, result.Assigned)
	assert.Equal(t, 0, result.Failed)
}

func TestAssignEndpointRequiresActor(t *testing.T) {
	h := newTestHandler(t, teacherProfile(), &fakeStore{})
	rr := doAssign(t, h, `{"category_ids":[10]}`, false)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAssignEndpointRejectsEmptySelection(t *testing.T) {
	h := newTestHandler(t, teacherProfile(), &fakeStore{})
	rr := doAssign(t, h, `{}`, true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// Users without a profile (administrative accounts) get a configuration
// problem, not a server error.
func TestAssignEndpointWithoutProfile(t *testing.T) {
	h := newTestHandler(t, nil, &fakeStore{})

	rr := doAssign(t, h, `{"category_ids":[10]}`, true)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	assert.Equal(t, "Configuration Error", problem["title"])
}

func TestListEndpointReturnsView(t *testing.T) {
	store := &fakeStore{grants: []permission.Grant{
		{UserID: 7, ModuleID: 1, CategoryCode: "pedagogy", Permissions: permission.Set{Read: true}},
	}}
	h := newTestHandler(t, teacherProfile(), store)

	r := chi.NewRouter()
	h.MountRoutes(r)
	req := httptest.NewRequest(http.MethodGet, "/users/7/grants", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var view View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Len(t, view.Grants, 1)
	assert.Equal(t, 1, view.Stats.ByCategory["pedagogy"])
}
