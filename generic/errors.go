/*
errors.go - Error types for calendar computations

PURPOSE:
  Sentinel and structured errors for the date utilities. Domain packages
  wrap or extend these with their own context (see timeoff/errors.go).

USAGE:
  n, err := generic.WorkingDaysBetween(start, end, nil)
  if errors.Is(err, generic.ErrInvalidRange) {
      // end before start
  }

SEE ALSO:
  - time.go: WorkingDaysBetween
  - period.go: Period.Split
  - timeoff/errors.go: Request lifecycle errors
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRange is returned when a date range ends before it starts.
	ErrInvalidRange = errors.New("invalid range: end before start")

	// ErrEmployeeNotFound is returned when an employee id cannot be resolved.
	ErrEmployeeNotFound = errors.New("employee not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidRangeError reports the offending bounds.
type InvalidRangeError struct {
	Start TimePoint
	End   TimePoint
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: end %s is before start %s", e.End, e.Start)
}

func (e *InvalidRangeError) Unwrap() error {
	return ErrInvalidRange
}
