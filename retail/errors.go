/*
errors.go - Centralized error types for the analytics core

PURPOSE:
  All error types in one place. Engines and the service layer return these
  (or wrap them); the HTTP boundary maps them to an error kind.

ERROR CATEGORIES:
  1. Not found     - unknown grouping key (store/supplier absent)
  2. Validation    - parameter or configuration outside its domain
  3. Empty table   - a malformed or empty snapshot load (fatal)

  Insufficient data is NOT an error. It is an explicit status on results.

USAGE:
  if errors.Is(err, retail.ErrNotFound) {
      ...
  }
  kind := retail.KindOf(err) // "not_found", "validation", "internal"
*/
package retail

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a store or supplier is absent from the table.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned when a parameter is outside its declared domain.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyTable is returned when a snapshot holds no records.
	ErrEmptyTable = errors.New("transaction table is empty")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError names the grouping key that could not be resolved.
type NotFoundError struct {
	Kind string // "store", "supplier"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ValidationError describes a rejected parameter or configuration value.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid builds a ValidationError.
func Invalid(field string, value any, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// Error kinds surfaced at the request/response boundary.
const (
	KindNotFound   = "not_found"
	KindValidation = "validation"
	KindInternal   = "internal"
)

// IsNotFound returns true if the error indicates a missing grouping key.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation returns true if the error is due to invalid input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// KindOf maps an error to its boundary kind.
func KindOf(err error) string {
	switch {
	case IsNotFound(err):
		return KindNotFound
	case IsValidation(err):
		return KindValidation
	default:
		return KindInternal
	}
}
