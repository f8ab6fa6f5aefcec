package generic_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-tracker/generic"
)

func day(y int, m time.Month, d int) generic.TimePoint {
	return generic.NewTimePoint(y, m, d)
}

// =============================================================================
// WORKING DAYS
// =============================================================================

func TestWorkingDaysBetween(t *testing.T) {
	tests := []struct {
		name     string
		start    generic.TimePoint
		end      generic.TimePoint
		holidays []generic.TimePoint
		want     int
	}{
		{"single weekday", day(2023, 5, 24), day(2023, 5, 24), nil, 1},
		{"mon to fri", day(2023, 5, 22), day(2023, 5, 26), nil, 5},
		{"weekend only", day(2023, 5, 27), day(2023, 5, 28), nil, 0},
		{"single sunday", day(2023, 5, 28), day(2023, 5, 28), nil, 0},
		{"single holiday", day(2023, 5, 24), day(2023, 5, 24), []generic.TimePoint{day(2023, 5, 24)}, 0},
		{"two full weeks", day(2023, 5, 22), day(2023, 6, 4), nil, 10},
		{"holiday midweek", day(2023, 5, 22), day(2023, 5, 26), []generic.TimePoint{day(2023, 5, 24)}, 4},
		{"holiday on weekend is not double counted", day(2023, 5, 22), day(2023, 5, 28), []generic.TimePoint{day(2023, 5, 27)}, 5},
		{"holiday outside range ignored", day(2023, 5, 22), day(2023, 5, 26), []generic.TimePoint{day(2023, 6, 1)}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := generic.WorkingDaysBetween(tt.start, tt.end, tt.holidays)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWorkingDaysBetween_NeverDecreasesAsEndExtends(t *testing.T) {
	start := day(2023, 5, 24) // Wednesday
	calendars := map[string][]generic.TimePoint{
		"weekends only": nil,
		"with holidays": {day(2023, 5, 29), day(2023, 6, 7), day(2023, 6, 10)},
	}

	for name, holidays := range calendars {
		t.Run(name, func(t *testing.T) {
			prev := 0
			for end := start; end.BeforeOrEqual(day(2023, 6, 30)); end = end.AddDays(1) {
				got, err := generic.WorkingDaysBetween(start, end, holidays)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, got, prev, "end %s", end)
				assert.LessOrEqual(t, got-prev, 1, "end %s", end)
				prev = got
			}
		})
	}
}

func TestWorkingDaysBetween_EndBeforeStart(t *testing.T) {
	_, err := generic.WorkingDaysBetween(day(2023, 5, 26), day(2023, 5, 22), nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, generic.ErrInvalidRange))

	var rangeErr *generic.InvalidRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, "2023-05-26", rangeErr.Start.String())
	assert.Equal(t, "2023-05-22", rangeErr.End.String())
}

// =============================================================================
// RANGE FORMATTING
// =============================================================================

func TestFormatRange(t *testing.T) {
	assert.Equal(t, "Jun 3 – Jun 5", generic.FormatRange(day(2023, 6, 3), day(2023, 6, 5), generic.LocaleEnUS))
	assert.Equal(t, "Jun 3", generic.FormatRange(day(2023, 6, 3), day(2023, 6, 3), generic.LocaleEnUS))
	assert.Equal(t, "3 Jun – 5 Jun", generic.FormatRange(day(2023, 6, 3), day(2023, 6, 5), generic.LocaleEnGB))
	assert.Equal(t, "May 30 – Jun 2", generic.FormatRange(day(2023, 5, 30), day(2023, 6, 2), generic.Locale{}))
}

func TestLocaleFor(t *testing.T) {
	assert.Equal(t, generic.LocaleEnUS, generic.LocaleFor("en-US"))
	assert.Equal(t, generic.LocaleEnUS, generic.LocaleFor("en"))
	assert.Equal(t, generic.LocaleEnGB, generic.LocaleFor("en_GB"))
	assert.Equal(t, generic.LocaleEnGB, generic.LocaleFor(" EN-gb "))
	assert.Equal(t, generic.LocaleEnUS, generic.LocaleFor("fr-FR"), "unknown tags fall back to en-US")
}

// =============================================================================
// TIME POINT
// =============================================================================

func TestTimePoint_ParseDate(t *testing.T) {
	tp, err := generic.ParseDate("2023-05-24")
	require.NoError(t, err)
	assert.True(t, tp.Equal(day(2023, 5, 24)))
	assert.Equal(t, time.Wednesday, tp.Weekday())

	_, err = generic.ParseDate("24/05/2023")
	assert.Error(t, err)
}

func TestTimePoint_ZeroValue(t *testing.T) {
	var tp generic.TimePoint
	assert.True(t, tp.IsZero())
	assert.Equal(t, "", tp.String())
}

func TestTimePoint_FromTimeDropsClock(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	tp := generic.FromTime(time.Date(2023, 5, 24, 23, 30, 0, 0, loc))
	assert.Equal(t, "2023-05-24", tp.String())
}

func TestEndOfMonth(t *testing.T) {
	assert.Equal(t, "2024-02-29", generic.EndOfMonth(2024, time.February).String())
	assert.Equal(t, "2023-12-31", generic.EndOfMonth(2023, time.December).String())
}

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

func TestStaticHolidayCalendar(t *testing.T) {
	cal := generic.NewStaticHolidayCalendar(
		generic.Holiday{ID: "h2", Date: day(2023, 12, 25), Name: "Christmas"},
		generic.Holiday{ID: "h1", Date: day(2023, 5, 29), Name: "Memorial Day"},
		generic.Holiday{ID: "h3", EmployeeID: "emp-1", Date: day(2023, 5, 24), Name: "Floating"},
	)

	// Company-wide holidays apply to everyone
	assert.True(t, cal.IsHoliday("emp-2", day(2023, 5, 29)))
	assert.True(t, cal.IsHoliday("", day(2023, 5, 29)))

	// Personal holidays apply only to their employee
	assert.True(t, cal.IsHoliday("emp-1", day(2023, 5, 24)))
	assert.False(t, cal.IsHoliday("emp-2", day(2023, 5, 24)))
	assert.False(t, cal.IsHoliday("", day(2023, 5, 24)))

	dates := cal.HolidaysBetween("emp-1", day(2023, 1, 1), day(2023, 12, 31))
	require.Len(t, dates, 3)
	assert.Equal(t, "2023-05-24", dates[0].String())
	assert.Equal(t, "2023-05-29", dates[1].String())
	assert.Equal(t, "2023-12-25", dates[2].String())

	// Feeding the calendar into the working day count
	n, err := generic.WorkingDaysBetween(day(2023, 5, 22), day(2023, 5, 31),
		cal.HolidaysBetween("emp-1", day(2023, 5, 22), day(2023, 5, 31)))
	require.NoError(t, err)
	assert.Equal(t, 6, n) // 8 weekdays minus the 24th and the 29th
}

func TestNoHolidays(t *testing.T) {
	var cal generic.HolidayCalendar = generic.NoHolidays{}
	assert.False(t, cal.IsHoliday("emp-1", day(2023, 12, 25)))
	assert.Empty(t, cal.HolidaysBetween("emp-1", day(2023, 1, 1), day(2023, 12, 31)))
}
