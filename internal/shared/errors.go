package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrNoActor occurs when a mutating request carries no actor identity.
	ErrNoActor = errors.New("actor identity missing")
)
