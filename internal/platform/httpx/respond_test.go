package httpx

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetail {
	t.Helper()
	var p ProblemDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	return p
}

func TestProblemCarriesTypeForKnownStatuses(t *testing.T) {
	rec := httptest.NewRecorder()
	Problem(rec, 422, "Configuration Error", "tenant has no active plan")

	if rec.Code != 422 {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	p := decodeProblem(t, rec)
	if p.Type != TypeConfiguration {
		t.Fatalf("type = %q, want %q", p.Type, TypeConfiguration)
	}
	if p.Title != "Configuration Error" || p.Status != 422 {
		t.Fatalf("unexpected problem %+v", p)
	}
}

func TestProblemOmitsTypeForUnmappedStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	Problem(rec, 418, "Teapot", "")

	p := decodeProblem(t, rec)
	if p.Type != "" {
		t.Fatalf("type = %q, want empty", p.Type)
	}
}

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err      error
		status   int
		wantType string
	}{
		{ErrNotFound, 404, TypeNotFound},
		{ErrDuplicate, 409, TypeDuplicate},
		{ErrValidation, 400, TypeValidation},
		{ErrConfiguration, 422, TypeConfiguration},
		{ErrUnauthorized, 401, TypeUnauthorized},
		{ErrDependency, 502, TypeDependency},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, tc.err)
		if rec.Code != tc.status {
			t.Fatalf("RespondError(%v) status = %d, want %d", tc.err, rec.Code, tc.status)
		}
		if p := decodeProblem(t, rec); p.Type != tc.wantType {
			t.Fatalf("RespondError(%v) type = %q, want %q", tc.err, p.Type, tc.wantType)
		}
	}
}
