/*
Package generic provides the calendar primitives shared by the leave engine.

PURPOSE:
  Everything in this package is domain-agnostic date arithmetic: day-granular
  time points, holiday calendars, working-day counting, accounting periods
  and human-readable range formatting. The timeoff package builds request
  lifecycle, balances and availability on top of it.

KEY CONCEPTS IN THIS FILE (time.go):
  - TimePoint: A calendar day (UTC midnight, no time-of-day component)
  - HolidayCalendar: Per-employee and company-wide non-working days
  - WorkingDaysBetween: Inclusive count of days that are not weekends/holidays
  - FormatRange: "May 5" or "May 5 – May 10"

USAGE:
  start := generic.NewTimePoint(2023, time.May, 22)
  end := generic.NewTimePoint(2023, time.May, 26)
  n, err := generic.WorkingDaysBetween(start, end, nil) // 5, nil

SEE ALSO:
  - period.go: Accounting periods for balances
  - errors.go: InvalidRangeError
*/
package generic

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// =============================================================================
// TIME POINT - A calendar day
// =============================================================================

// TimePoint is a calendar day. The zero value means "no date".
type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime drops the time-of-day and location of t, keeping its calendar day.
func FromTime(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

func Today() TimePoint {
	return FromTime(time.Now())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return TimePoint{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return FromTime(t), nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint   { return FromTime(tp.normalize().AddDate(0, 0, n)) }
func (tp TimePoint) AddMonths(n int) TimePoint { return FromTime(tp.normalize().AddDate(0, n, 0)) }
func (tp TimePoint) AddYears(n int) TimePoint  { return FromTime(tp.normalize().AddDate(n, 0, 0)) }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsWeekend() bool {
	wd := tp.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
func (tp TimePoint) IsWorkday() bool { return !tp.IsWeekend() }
func (tp TimePoint) IsZero() bool    { return tp.Time.IsZero() }

func (tp TimePoint) String() string {
	if tp.IsZero() {
		return ""
	}
	return tp.Time.Format(DateLayout)
}

// =============================================================================
// HOLIDAY CALENDAR - Company-wide and per-employee holidays
// =============================================================================

// Holiday is a named non-working day. An empty EmployeeID means the holiday
// applies to everyone.
type Holiday struct {
	ID         string
	EmployeeID string
	Date       TimePoint
	Name       string
}

// HolidayCalendar answers holiday questions for an employee. Implementations
// must include company-wide holidays in every employee's answers.
type HolidayCalendar interface {
	IsHoliday(employeeID string, date TimePoint) bool

	// HolidaysBetween returns holiday dates in [from, to], sorted ascending.
	HolidaysBetween(employeeID string, from, to TimePoint) []TimePoint
}

// NoHolidays is a calendar without holidays; weekends are the only days off.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(string, TimePoint) bool                          { return false }
func (NoHolidays) HolidaysBetween(string, TimePoint, TimePoint) []TimePoint { return nil }

// StaticHolidayCalendar is an in-process HolidayCalendar built from a fixed list.
type StaticHolidayCalendar struct {
	holidays []Holiday
}

func NewStaticHolidayCalendar(holidays ...Holiday) *StaticHolidayCalendar {
	c := &StaticHolidayCalendar{}
	for _, h := range holidays {
		c.Add(h)
	}
	return c
}

// Add registers a holiday. Not safe for use concurrently with lookups.
func (c *StaticHolidayCalendar) Add(h Holiday) {
	c.holidays = append(c.holidays, h)
	sort.SliceStable(c.holidays, func(i, j int) bool {
		return c.holidays[i].Date.Before(c.holidays[j].Date)
	})
}

// Holidays returns every registered holiday applying to employeeID in [from, to].
// With an empty employeeID only company-wide holidays are returned.
func (c *StaticHolidayCalendar) Holidays(employeeID string, from, to TimePoint) []Holiday {
	var out []Holiday
	for _, h := range c.holidays {
		if h.EmployeeID != "" && h.EmployeeID != employeeID {
			continue
		}
		if h.Date.Before(from) || h.Date.After(to) {
			continue
		}
		out = append(out, h)
	}
	return out
}

func (c *StaticHolidayCalendar) IsHoliday(employeeID string, date TimePoint) bool {
	return len(c.Holidays(employeeID, date, date)) > 0
}

func (c *StaticHolidayCalendar) HolidaysBetween(employeeID string, from, to TimePoint) []TimePoint {
	hs := c.Holidays(employeeID, from, to)
	dates := make([]TimePoint, 0, len(hs))
	for _, h := range hs {
		dates = append(dates, h.Date)
	}
	return dates
}

// =============================================================================
// WORKING DAYS
// =============================================================================

// WorkingDaysBetween counts the days in [start, end] that are neither a
// Saturday, a Sunday nor present in holidays.
func WorkingDaysBetween(start, end TimePoint, holidays []TimePoint) (int, error) {
	if end.Before(start) {
		return 0, &InvalidRangeError{Start: start, End: end}
	}

	off := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		off[h.String()] = struct{}{}
	}

	n := 0
	for day := start; day.BeforeOrEqual(end); day = day.AddDays(1) {
		if day.IsWeekend() {
			continue
		}
		if _, ok := off[day.String()]; ok {
			continue
		}
		n++
	}
	return n, nil
}

// =============================================================================
// RANGE FORMATTING
// =============================================================================

// Locale controls how FormatRange renders a single day.
type Locale struct {
	Tag    string
	Layout string // time layout for one day
}

var (
	LocaleEnUS = Locale{Tag: "en-US", Layout: "Jan 2"}
	LocaleEnGB = Locale{Tag: "en-GB", Layout: "2 Jan"}
)

var locales = map[string]Locale{
	"en-us": LocaleEnUS,
	"en":    LocaleEnUS,
	"en-gb": LocaleEnGB,
}

// LocaleFor resolves a BCP 47-ish tag, falling back to en-US.
func LocaleFor(tag string) Locale {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
	if l, ok := locales[key]; ok {
		return l
	}
	return LocaleEnUS
}

// FormatRange renders a single day when start == end, otherwise "start – end".
func FormatRange(start, end TimePoint, locale Locale) string {
	layout := locale.Layout
	if layout == "" {
		layout = LocaleEnUS.Layout
	}
	first := start.Time.Format(layout)
	if start.Equal(end) {
		return first
	}
	return first + " – " + end.Time.Format(layout)
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

func DaysBetween(from, to TimePoint) int { return int(to.normalize().Sub(from.normalize()).Hours() / 24) }
func StartOfYear(year int) TimePoint     { return NewTimePoint(year, time.January, 1) }
func EndOfYear(year int) TimePoint       { return NewTimePoint(year, time.December, 31) }
func StartOfMonth(year int, month time.Month) TimePoint {
	return NewTimePoint(year, month, 1)
}
func EndOfMonth(year int, month time.Month) TimePoint {
	return NewTimePoint(year, month+1, 1).AddDays(-1)
}
