package core

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. Callers match them with errors.Is
// and the web adapter maps them to HTTP statuses.
var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when an ownership or role check fails.
	// No row is modified when an operation fails with ErrForbidden.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is returned when a uniqueness constraint is violated,
	// e.g. a duplicate invoice number for the same owner.
	ErrConflict = errors.New("conflict")
)

// ValidationError reports malformed or missing input. It is always returned
// before any persistence call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func validationErr(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// StateTransitionError reports an illegal status change on an invoice or
// purchase order.
type StateTransitionError struct {
	Entity string // "invoice" or "purchase order"
	From   string
	To     string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("%s status cannot change from %s to %s", e.Entity, e.From, e.To)
}

// PartialWriteError reports that an aggregate's header was written but its
// line items were not, leaving the record in an inconsistent intermediate
// state. All aggregate writes here run inside a single transaction, so this
// only surfaces if the post-commit line verification finds a mismatch.
type PartialWriteError struct {
	Entity string
	ID     int
	Err    error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("partial write on %s %d: %v", e.Entity, e.ID, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}
