// Package errs defines the error taxonomy shared by all tabsplit components.
//
// Four categories cover every failure the core can produce:
//   - ValidationError: caller-supplied data violates an invariant
//   - NotFoundError: a referenced entity does not exist
//   - FormatError: malformed text handed to the table parser
//   - StorageError: the underlying store failed or surfaced a constraint violation
//
// None of these are retried by the core. Callers match them with the Is* helpers
// (which use errors.As, so wrapped errors are recognized too).
package errs

import (
	"errors"
	"fmt"
)

// ValidationError reports caller-supplied data that violates an invariant,
// e.g. an empty bill or an assignee who is not a group member. The caller can
// recover by correcting the input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// Validationf builds a ValidationError with a formatted reason.
func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// NotFound builds a NotFoundError for the given entity kind and identifier.
func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

// FormatError reports malformed parser input. Row is 1-based; zero means the
// failure applies to the whole input rather than a single row.
type FormatError struct {
	Row    int
	Reason string
}

func (e *FormatError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("format: row %d: %s", e.Row, e.Reason)
	}
	return "format: " + e.Reason
}

// Formatf builds a FormatError for the given row (0 for whole-input failures).
func Formatf(row int, format string, args ...any) error {
	return &FormatError{Row: row, Reason: fmt.Sprintf(format, args...)}
}

// IsFormat reports whether err is (or wraps) a FormatError.
func IsFormat(err error) bool {
	var f *FormatError
	return errors.As(err, &f)
}

// StorageError wraps a failure from the entity store. Op names the operation
// that failed so logs stay actionable without leaking SQL to API clients.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Storage wraps err as a StorageError for the named operation.
func Storage(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsStorage reports whether err is (or wraps) a StorageError.
func IsStorage(err error) bool {
	var s *StorageError
	return errors.As(err, &s)
}
