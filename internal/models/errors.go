package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a referenced entity or relation does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates the write would create a fact that already exists.
	ErrDuplicate = errors.New("already exists")
	// ErrInvalidArgument indicates a malformed request such as a self-reference
	// or a non-positive count.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrValidation indicates a field-level rule was violated.
	ErrValidation = errors.New("validation failed")
)

// ValidationError describes the first rule an entity violated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
