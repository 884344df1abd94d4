package poststore

import "errors"

var (
	// ErrNotFound is returned when a referenced post does not exist.
	ErrNotFound = errors.New("post not found")
	// ErrConflict is returned when a state transition is attempted from a
	// state other than the expected one. Callers racing over the same post
	// see this instead of silent double-processing.
	ErrConflict = errors.New("post state conflict")
)
