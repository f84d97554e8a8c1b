package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no document exists for a slug.
	ErrNotFound = errors.New("post not found")
	// ErrUnauthorized is returned for a missing or invalid session, or a failed credential check.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrValidation is returned when a required field is missing.
	ErrValidation = errors.New("validation failed")
	// ErrBackendUnavailable collapses every remote storage failure that is not a not-found or conflict.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrNotConfigured is returned when a feature is used without its configuration.
	ErrNotConfigured = errors.New("not configured")
	// ErrConflict is returned for slug collisions and stale revision tokens.
	ErrConflict = errors.New("conflict")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
