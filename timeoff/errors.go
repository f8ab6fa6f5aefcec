package timeoff

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/warp/leave-tracker/generic"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrRequestNotFound is returned for an unknown request id.
	ErrRequestNotFound = errors.New("leave request not found")

	// ErrInvalidTransition is returned when a request is not in a state the
	// operation can leave.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrValidation is returned when a submission has field errors.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientBalance is returned by Approve under OverdrawBlock.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError names the missing request.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("leave request %q not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrRequestNotFound }

// InvalidTransitionError reports the attempted move and the status it started from.
type InvalidTransitionError struct {
	ID   string
	From RequestStatus
	To   RequestStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move leave request %q from %s to %s", e.ID, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// FieldErrors maps a submission field to a user-facing message. Every violated
// field is present; an empty map is never returned as an error.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + fe[f]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (fe FieldErrors) Unwrap() error { return ErrValidation }

// InsufficientBalanceError provides details about a balance shortage.
type InsufficientBalanceError struct {
	EmployeeID string
	Category   Category
	Period     generic.Period
	Remaining  int
	Requested  int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s balance in %s: remaining %d, requested %d",
		e.Category, e.Period, e.Remaining, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing request or employee.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRequestNotFound) || errors.Is(err, generic.ErrEmployeeNotFound)
}

// IsClientError returns true if the error is due to caller input or request state.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, generic.ErrInvalidRange)
}
