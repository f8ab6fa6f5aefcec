package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - The accounting window for leave balances
// =============================================================================

// Period is an inclusive range of days.
//
// Examples:
//   - Calendar year 2025: Jan 1 - Dec 31
//   - Fiscal year 2025: Apr 1 2025 - Mar 31 2026
type Period struct {
	Start TimePoint
	End   TimePoint
}

// NewPeriod returns [start, end] or an InvalidRangeError.
func NewPeriod(start, end TimePoint) (Period, error) {
	if end.Before(start) {
		return Period{}, &InvalidRangeError{Start: start, End: end}
	}
	return Period{Start: start, End: end}, nil
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Days returns all days in the period as a slice of TimePoints.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Intersect returns the overlap of two periods and whether there is one.
func (p Period) Intersect(other Period) (Period, bool) {
	start, end := p.Start, p.End
	if other.Start.After(start) {
		start = other.Start
	}
	if other.End.Before(end) {
		end = other.End
	}
	if end.Before(start) {
		return Period{}, false
	}
	return Period{Start: start, End: end}, true
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// PeriodType defines how periods are calculated
type PeriodType string

const (
	PeriodCalendarYear PeriodType = "calendar_year" // Jan 1 - Dec 31
	PeriodFiscalYear   PeriodType = "fiscal_year"   // Custom start (e.g., Apr 1)
)

// ParsePeriodType accepts the configuration spelling of a period type.
func ParsePeriodType(s string) (PeriodType, error) {
	switch PeriodType(s) {
	case PeriodCalendarYear, "":
		return PeriodCalendarYear, nil
	case PeriodFiscalYear:
		return PeriodFiscalYear, nil
	}
	return "", fmt.Errorf("unknown period type %q", s)
}

// PeriodConfig defines how to calculate accounting periods.
type PeriodConfig struct {
	Type PeriodType

	// For fiscal year: which month starts the fiscal year (1-12)
	FiscalYearStartMonth time.Month
}

// =============================================================================
// PERIOD CALCULATOR - Determines which period a date falls into
// =============================================================================

// PeriodFor returns the period that contains the given date
func (pc PeriodConfig) PeriodFor(date TimePoint) Period {
	switch pc.Type {
	case PeriodFiscalYear:
		if pc.FiscalYearStartMonth < time.January || pc.FiscalYearStartMonth > time.December {
			break
		}
		return pc.fiscalYearPeriod(date)
	}
	return Period{Start: StartOfYear(date.Year()), End: EndOfYear(date.Year())}
}

func (pc PeriodConfig) fiscalYearPeriod(date TimePoint) Period {
	year := date.Year()
	fiscalStart := NewTimePoint(year, pc.FiscalYearStartMonth, 1)

	// If date is before fiscal year start, we're in previous fiscal year
	if date.Before(fiscalStart) {
		fiscalStart = NewTimePoint(year-1, pc.FiscalYearStartMonth, 1)
	}

	fiscalEnd := fiscalStart.AddYears(1).AddDays(-1)
	return Period{Start: fiscalStart, End: fiscalEnd}
}

// Split cuts [start, end] at period boundaries, returning the pieces in
// chronological order. A range inside one period comes back whole.
func (pc PeriodConfig) Split(start, end TimePoint) ([]Period, error) {
	if end.Before(start) {
		return nil, &InvalidRangeError{Start: start, End: end}
	}

	var pieces []Period
	for cursor := start; cursor.BeforeOrEqual(end); {
		period := pc.PeriodFor(cursor)
		pieceEnd := period.End
		if end.Before(pieceEnd) {
			pieceEnd = end
		}
		pieces = append(pieces, Period{Start: cursor, End: pieceEnd})
		cursor = pieceEnd.AddDays(1)
	}
	return pieces, nil
}
