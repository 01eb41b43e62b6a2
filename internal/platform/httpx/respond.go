// Package httpx provides HTTP response utilities following RFC7807 problem details.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Problem type identifiers for the console's error vocabulary. They are
// stable identifiers, not resolvable links; clients branch on them instead
// of parsing titles.
const (
	TypeValidation    = "/problems/validation"
	TypeUnauthorized  = "/problems/unauthorized"
	TypeForbidden     = "/problems/forbidden"
	TypeNotFound      = "/problems/not-found"
	TypeDuplicate     = "/problems/duplicate"
	TypeConfiguration = "/problems/configuration"
	TypeInternal      = "/problems/internal"
	TypeDependency    = "/problems/upstream"
)

var problemTypes = map[int]string{
	http.StatusBadRequest:          TypeValidation,
	http.StatusUnauthorized:        TypeUnauthorized,
	http.StatusForbidden:           TypeForbidden,
	http.StatusNotFound:            TypeNotFound,
	http.StatusConflict:            TypeDuplicate,
	http.StatusUnprocessableEntity: TypeConfiguration,
	http.StatusInternalServerError: TypeInternal,
	http.StatusBadGateway:          TypeDependency,
}

// ProblemDetail represents RFC7807 problem details.
type ProblemDetail struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Problem sends an RFC7807 problem details response. The problem type is
// derived from the status; statuses outside the console's vocabulary are
// sent without one.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	JSON(w, status, ProblemDetail{
		Type:   problemTypes[status],
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
