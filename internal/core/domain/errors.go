package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("access forbidden")
	ErrAccountNotFound    = errors.New("account not found")
	ErrLotNotFound        = errors.New("material lot not found")
)

// ValidationError reports malformed or missing input on a single field.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConflictError reports which uniqueness-bearing field collided.
type ConflictError struct {
	Field string
}

func NewConflictError(field string) *ConflictError {
	return &ConflictError{Field: field}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already registered", e.Field)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }
