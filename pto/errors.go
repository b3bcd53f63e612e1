/*
errors.go - Error taxonomy for the PTO engine

PURPOSE:
  All error types in one place. Callers branch with errors.Is/errors.As;
  the API layer maps these onto HTTP status codes.

CATEGORIES:
  1. Not-found      - status transition on an unknown request id
  2. Validation     - malformed date range, unknown request type
  3. Transition     - decision on a request that is no longer Pending
  4. External       - the text-generation collaborator failed

Every condition here is recoverable by the caller. Balance computation
has no error path at all.
*/
package pto

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrRequestNotFound is returned when a status transition references an
	// id that matches no request. Surfaced explicitly rather than silently
	// ignored so a lost decision is visible to the manager who made it.
	ErrRequestNotFound = errors.New("request not found")

	// ErrUserNotFound is returned when a referenced user doesn't exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidRange is returned at creation when the end date precedes
	// the start date.
	ErrInvalidRange = errors.New("invalid range: end date before start date")

	// ErrInvalidTransition is returned when a decision targets a request
	// that is not Pending. Approved and Denied are terminal.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidType is returned at creation for an unknown request type.
	ErrInvalidType = errors.New("unknown request type")

	// ErrExternalService is returned when the text-generation collaborator
	// errors or is unreachable. Reported as a descriptive message, never
	// propagated as a crash.
	ErrExternalService = errors.New("external service failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError identifies which request id missed.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("request %s not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrRequestNotFound }

// InvalidRangeError carries the offending dates.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: end %s before start %s",
		e.End.Format("2006-01-02"), e.Start.Format("2006-01-02"))
}

func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }

// InvalidTransitionError records the rejected state change.
type InvalidTransitionError struct {
	ID   string
	From RequestStatus
	To   RequestStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("request %s: cannot transition %s -> %s (only Pending requests accept a decision)",
		e.ID, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether err indicates a missing request or user.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRequestNotFound) || errors.Is(err, ErrUserNotFound)
}

// IsClientError reports whether err is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidType) ||
		errors.Is(err, ErrInvalidTransition)
}
