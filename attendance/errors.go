/*
errors.go - Centralized error types for the attendance domain

PURPOSE:
  All domain error types in one place for consistency and
  discoverability. The store and the HTTP layer both match against
  these; structured variants carry enough context for a useful
  message without exposing query internals.

ERROR CATEGORIES:
  1. Ledger errors - mark-in/mark-out precondition failures
  2. Identity errors - unknown or duplicate employees
  3. Input errors - validation and filter parsing failures

USAGE:
  Callers match with errors.Is against the sentinels:

    if errors.Is(err, attendance.ErrAlreadyIn) {
        // 409 at the HTTP boundary
    }

SEE ALSO:
  - ledger.go: Produces the ledger errors
  - report.go: Produces ErrMalformedFilter
  - store/sqlite/sqlite.go: Maps constraint violations onto these
*/
package attendance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when an operation references an
	// employee id with no identity record.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrAlreadyIn is returned by mark-in when the employee already has
	// an open record for the day.
	ErrAlreadyIn = errors.New("employee already marked in")

	// ErrNoOpenRecord is returned by mark-out when nothing is open for
	// the employee on the day.
	ErrNoOpenRecord = errors.New("no open attendance record")

	// ErrDuplicateIdentifier is returned when employee creation reuses
	// an external identifier.
	ErrDuplicateIdentifier = errors.New("duplicate employee identifier")

	// ErrValidation is returned when a required field is missing or blank.
	ErrValidation = errors.New("validation failed")

	// ErrMalformedFilter is returned when a reporting employee filter
	// is not numeric.
	ErrMalformedFilter = errors.New("malformed employee filter")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// AlreadyInError reports a mark-in attempt while a record is open.
type AlreadyInError struct {
	EmployeeID int64
	Date       string
}

func (e *AlreadyInError) Error() string {
	return fmt.Sprintf("employee %d already marked in on %s", e.EmployeeID, e.Date)
}

func (e *AlreadyInError) Unwrap() error { return ErrAlreadyIn }

// NoOpenRecordError reports a mark-out attempt with nothing open.
type NoOpenRecordError struct {
	EmployeeID int64
	Date       string
}

func (e *NoOpenRecordError) Error() string {
	return fmt.Sprintf("no open record for employee %d on %s", e.EmployeeID, e.Date)
}

func (e *NoOpenRecordError) Unwrap() error { return ErrNoOpenRecord }

// NotFoundError reports a reference to an unknown employee.
type NotFoundError struct {
	EmployeeID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("employee %d not found", e.EmployeeID)
}

func (e *NotFoundError) Unwrap() error { return ErrEmployeeNotFound }

// DuplicateIdentifierError reports a conflicting external identifier
// at employee creation.
type DuplicateIdentifierError struct {
	ExternalID string
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("employee identifier %q already exists", e.ExternalID)
}

func (e *DuplicateIdentifierError) Unwrap() error { return ErrDuplicateIdentifier }

// ValidationError reports a missing required field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q is required", e.Field)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// MalformedFilterError reports a non-numeric employee filter value.
type MalformedFilterError struct {
	Raw string
}

func (e *MalformedFilterError) Error() string {
	return fmt.Sprintf("employee filter %q is not numeric", e.Raw)
}

func (e *MalformedFilterError) Unwrap() error { return ErrMalformedFilter }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// or a violated precondition, as opposed to a persistence failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrAlreadyIn) ||
		errors.Is(err, ErrNoOpenRecord) ||
		errors.Is(err, ErrDuplicateIdentifier) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrMalformedFilter)
}

// IsNotFound returns true if the error indicates a missing employee.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound)
}
