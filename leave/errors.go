/*
errors.go - Error types for roster, ledger and aggregation

PURPOSE:
  All error kinds surfaced to callers live here. Storage backends wrap
  their own I/O failures with fmt.Errorf; those are neither validation
  nor not-found and the HTTP layer treats them as internal errors.

ERROR KINDS:
  ValidationError: Required input missing or malformed (e.g. empty name)
  NotFoundError:   Operation targets an id that is not stored

  Day-count coercion is not an error: malformed day counts are read as
  zero (see DayCount.Value) and never reported.

USAGE:
  if leave.IsNotFound(err) {
      // 404
  }
*/
package leave

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the sentinel behind every ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is the sentinel behind every NotFoundError.
	ErrNotFound = errors.New("not found")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundError identifies the missing record.
type NotFoundError struct {
	Kind string // "employee" or "leave"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func EmployeeNotFound(id EmployeeID) error {
	return &NotFoundError{Kind: "employee", ID: string(id)}
}

func BookingNotFound(id BookingID) error {
	return &NotFoundError{Kind: "leave", ID: string(id)}
}

// DuplicateID is returned when a caller-supplied id is already taken.
func DuplicateID(kind, id string) error {
	return &ValidationError{Field: "id", Message: fmt.Sprintf("%s %q already exists", kind, id)}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
