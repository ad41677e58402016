package fleet

import (
	"fmt"
	"strings"
)

// ValidationError rejects malformed input before any store call is made.
type ValidationError struct {
	Message string
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConflictError reports a driver schedule clash, naming the routes already
// holding the contested start times. Raised before any mutation.
type ConflictError struct {
	DriverRef         string
	ConflictingRoutes []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("driver %s already has a route at that start time: %s",
		e.DriverRef, strings.Join(e.ConflictingRoutes, ", "))
}

// StaleVersionError is returned when a conditional update loses against a
// concurrent writer. Callers should re-read and retry the whole operation.
type StaleVersionError struct {
	Collection string
	Identifier string
}

func (e *StaleVersionError) Error() string {
	return fmt.Sprintf("%s record %s was modified concurrently", e.Collection, e.Identifier)
}

type NotFoundError struct {
	Collection string
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s record matching %s", e.Collection, e.Identifier)
}

// IntegrityError reports a triad invariant found violated on read.
type IntegrityError struct {
	Invariant string
	Detail    string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity violation (%s): %s", e.Invariant, e.Detail)
}

// ExternalServiceError wraps a failed store or queue call. Not retried
// automatically beyond the store's own read backoff.
type ExternalServiceError struct {
	Operation string
	Err       error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Operation, e.Err.Error())
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}
