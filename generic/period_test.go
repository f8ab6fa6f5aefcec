package generic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-tracker/generic"
)

func TestPeriodFor_CalendarYear(t *testing.T) {
	pc := generic.PeriodConfig{Type: generic.PeriodCalendarYear}

	p := pc.PeriodFor(day(2023, 5, 24))
	assert.Equal(t, "2023-01-01", p.Start.String())
	assert.Equal(t, "2023-12-31", p.End.String())
}

func TestPeriodFor_FiscalYear(t *testing.T) {
	pc := generic.PeriodConfig{Type: generic.PeriodFiscalYear, FiscalYearStartMonth: time.April}

	// GIVEN: fiscal year starting April 1
	// WHEN: the date is before April
	// THEN: it belongs to the fiscal year that started the previous April
	p := pc.PeriodFor(day(2024, 3, 31))
	assert.Equal(t, "2023-04-01", p.Start.String())
	assert.Equal(t, "2024-03-31", p.End.String())

	p = pc.PeriodFor(day(2024, 4, 1))
	assert.Equal(t, "2024-04-01", p.Start.String())
	assert.Equal(t, "2025-03-31", p.End.String())
}

func TestPeriodFor_InvalidFiscalMonthFallsBackToCalendarYear(t *testing.T) {
	pc := generic.PeriodConfig{Type: generic.PeriodFiscalYear}

	p := pc.PeriodFor(day(2024, 3, 31))
	assert.Equal(t, "2024-01-01", p.Start.String())
}

func TestPeriodConfig_Split(t *testing.T) {
	pc := generic.PeriodConfig{Type: generic.PeriodCalendarYear}

	t.Run("inside one period", func(t *testing.T) {
		pieces, err := pc.Split(day(2023, 5, 22), day(2023, 5, 26))
		require.NoError(t, err)
		require.Len(t, pieces, 1)
		assert.Equal(t, "2023-05-22", pieces[0].Start.String())
		assert.Equal(t, "2023-05-26", pieces[0].End.String())
	})

	t.Run("across new year", func(t *testing.T) {
		pieces, err := pc.Split(day(2023, 12, 28), day(2024, 1, 3))
		require.NoError(t, err)
		require.Len(t, pieces, 2)
		assert.Equal(t, "[2023-12-28, 2023-12-31]", pieces[0].String())
		assert.Equal(t, "[2024-01-01, 2024-01-03]", pieces[1].String())
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := pc.Split(day(2024, 1, 3), day(2023, 12, 28))
		assert.ErrorIs(t, err, generic.ErrInvalidRange)
	})
}

func TestParsePeriodType(t *testing.T) {
	pt, err := generic.ParsePeriodType("")
	require.NoError(t, err)
	assert.Equal(t, generic.PeriodCalendarYear, pt)

	pt, err = generic.ParsePeriodType("fiscal_year")
	require.NoError(t, err)
	assert.Equal(t, generic.PeriodFiscalYear, pt)

	_, err = generic.ParsePeriodType("quarter")
	assert.Error(t, err)
}

func TestPeriod_Intersect(t *testing.T) {
	a := generic.Period{Start: day(2023, 5, 1), End: day(2023, 5, 31)}
	b := generic.Period{Start: day(2023, 5, 25), End: day(2023, 6, 5)}

	got, ok := a.Intersect(b)
	require.True(t, ok)
	assert.Equal(t, "[2023-05-25, 2023-05-31]", got.String())

	_, ok = a.Intersect(generic.Period{Start: day(2023, 7, 1), End: day(2023, 7, 2)})
	assert.False(t, ok)
}

func TestNewPeriod_Days(t *testing.T) {
	p, err := generic.NewPeriod(generic.NewTimePoint(2024, time.February, 27), generic.NewTimePoint(2024, time.March, 1))
	require.NoError(t, err)

	days := p.Days()
	require.Len(t, days, 4)
	assert.Equal(t, "2024-02-29", days[2].String())

	_, err = generic.NewPeriod(generic.NewTimePoint(2024, time.March, 1), generic.NewTimePoint(2024, time.February, 27))
	assert.ErrorIs(t, err, generic.ErrInvalidRange)
}
