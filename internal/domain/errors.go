package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found, or exists but
	// belongs to another store.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness violation.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidState indicates the entity cannot make the requested move from
	// its current state.
	ErrInvalidState = errors.New("invalid state")
	// ErrUnauthenticated is returned when a protected operation has no caller.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the caller lacks the role or store access.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError describes malformed or missing input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Invalid builds a ValidationError.
func Invalid(msg string) error {
	return &ValidationError{Msg: msg}
}

// ConflictError is a uniqueness or state conflict with a client-facing
// message. It unwraps to the matching sentinel so errors.Is keeps working.
type ConflictError struct {
	Msg string
	Err error
}

func (e *ConflictError) Error() string { return e.Msg }
func (e *ConflictError) Unwrap() error { return e.Err }

// Conflict builds a ConflictError wrapping ErrAlreadyExists.
func Conflict(msg string) error {
	return &ConflictError{Msg: msg, Err: ErrAlreadyExists}
}

// StateConflict builds a ConflictError wrapping ErrInvalidState.
func StateConflict(msg string) error {
	return &ConflictError{Msg: msg, Err: ErrInvalidState}
}
