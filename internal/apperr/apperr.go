// Package apperr holds the error taxonomy shared by the store, the rules and
// the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Storage sentinels. Stores wrap these so callers can match with errors.Is.
var (
	ErrNoRecord      = errors.New("record not found")
	ErrDuplicate     = errors.New("duplicate key value")
	ErrSelfReference = errors.New("row references itself")
	ErrBadReference  = errors.New("foreign key violation")
)

var ErrUnauthenticated = errors.New("authentication credentials were not provided")

// DuplicateError names the unique constraint a write violated. It matches
// ErrDuplicate.
type DuplicateError struct {
	Constraint string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%v (%s)", ErrDuplicate, e.Constraint)
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// NonField is the field name used for errors that concern the whole input.
const NonField = "non_field_errors"

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	if e.Message == "" {
		return "permission denied"
	}
	return e.Message
}

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return e.Resource + " not found"
}

func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// Status maps err to the HTTP status code the request boundary reports.
func Status(err error) int {
	var (
		ve *ValidationError
		pe *PermissionError
		ne *NotFoundError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.As(err, &pe):
		return http.StatusForbidden
	case errors.As(err, &ne), errors.Is(err, ErrNoRecord):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
