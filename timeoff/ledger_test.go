package timeoff_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-tracker/generic"
	"github.com/warp/leave-tracker/timeoff"
)

func newTestLedger(pc generic.PeriodConfig) *timeoff.BalanceLedger {
	return timeoff.NewBalanceLedger(pc, func() generic.TimePoint { return testToday })
}

// =============================================================================
// SNAPSHOT
// =============================================================================

func TestLedger_SnapshotStartsAtDefaults(t *testing.T) {
	l := newTestLedger(generic.PeriodConfig{Type: generic.PeriodCalendarYear})

	snap := l.Snapshot("emp-1")
	require.Len(t, snap, len(timeoff.Categories))
	for c, allocated := range timeoff.DefaultAllocations {
		assert.Equal(t, allocated, snap[c].Allocated, c)
		assert.Equal(t, 0, snap[c].Used, c)
		assert.Equal(t, allocated, snap[c].Remaining, c)
		assert.Equal(t, "2023-01-01", snap[c].Period.Start.String())
	}
}

func TestLedger_DebitAndCredit(t *testing.T) {
	l := newTestLedger(generic.PeriodConfig{Type: generic.PeriodCalendarYear})

	l.Debit("emp-1", timeoff.CategoryVacation, 3)
	l.Debit("emp-1", timeoff.CategoryVacation, 2)
	assert.Equal(t, 5, l.Snapshot("emp-1")[timeoff.CategoryVacation].Used)
	assert.Equal(t, 15, l.Snapshot("emp-1")[timeoff.CategoryVacation].Remaining)

	l.Credit("emp-1", timeoff.CategoryVacation, 1)
	assert.Equal(t, 4, l.Snapshot("emp-1")[timeoff.CategoryVacation].Used)

	// Credit never drives Used below zero
	l.Credit("emp-1", timeoff.CategoryVacation, 10)
	assert.Equal(t, 0, l.Snapshot("emp-1")[timeoff.CategoryVacation].Used)

	// Employees are independent
	assert.Equal(t, 0, l.Snapshot("emp-2")[timeoff.CategoryVacation].Used)
}

func TestLedger_DebitIsNotClamped(t *testing.T) {
	l := newTestLedger(generic.PeriodConfig{Type: generic.PeriodCalendarYear})

	l.Debit("emp-1", timeoff.CategoryOptional, 5)

	b := l.Snapshot("emp-1")[timeoff.CategoryOptional]
	assert.Equal(t, 5, b.Used)
	assert.Equal(t, -2, b.Remaining)
	assert.True(t, b.Overdrawn())
}

func TestLedger_AllocateOverridesDefault(t *testing.T) {
	l := newTestLedger(generic.PeriodConfig{Type: generic.PeriodCalendarYear})

	l.Allocate("emp-1", timeoff.CategoryCasual, 6)
	l.Debit("emp-1", timeoff.CategoryCasual, 2)

	assert.Equal(t, 6, l.Snapshot("emp-1")[timeoff.CategoryCasual].Allocated)
	assert.Equal(t, 4, l.Snapshot("emp-1")[timeoff.CategoryCasual].Remaining)
	assert.Equal(t, timeoff.DefaultAllocations[timeoff.CategoryCasual], l.Snapshot("emp-2")[timeoff.CategoryCasual].Allocated)
}

// =============================================================================
// PERIODS
// =============================================================================

func TestLedger_BucketsByPeriod(t *testing.T) {
	l := newTestLedger(generic.PeriodConfig{Type: generic.PeriodFiscalYear, FiscalYearStartMonth: time.April})

	// GIVEN: fiscal years starting April 1
	l.DebitAt("emp-1", timeoff.CategorySick, generic.NewTimePoint(2023, time.March, 31), 2)
	l.DebitAt("emp-1", timeoff.CategorySick, generic.NewTimePoint(2023, time.April, 3), 1)

	// THEN: each debit lands in its own fiscal year
	prev := l.SnapshotAt("emp-1", generic.NewTimePoint(2022, time.December, 1))[timeoff.CategorySick]
	assert.Equal(t, 2, prev.Used)
	assert.Equal(t, "2022-04-01", prev.Period.Start.String())
	assert.Equal(t, "2023-03-31", prev.Period.End.String())

	// testToday is May 20 2023, inside the fiscal year started April 1 2023
	cur := l.Snapshot("emp-1")[timeoff.CategorySick]
	assert.Equal(t, 1, cur.Used)
	assert.Equal(t, "2023-04-01", cur.Period.Start.String())
}

func TestLedger_CreditAtOtherPeriod(t *testing.T) {
	l := newTestLedger(generic.PeriodConfig{Type: generic.PeriodCalendarYear})

	l.DebitAt("emp-1", timeoff.CategoryVacation, generic.NewTimePoint(2024, time.January, 2), 3)
	l.CreditAt("emp-1", timeoff.CategoryVacation, generic.NewTimePoint(2024, time.June, 1), 1)

	assert.Equal(t, 2, l.BalanceAt("emp-1", timeoff.CategoryVacation, generic.NewTimePoint(2024, time.March, 1)).Used)
	assert.Equal(t, 0, l.Snapshot("emp-1")[timeoff.CategoryVacation].Used)
}

// =============================================================================
// REMAINING PERCENT
// =============================================================================

func TestBalance_RemainingPercent(t *testing.T) {
	tests := []struct {
		name string
		bal  timeoff.Balance
		want string
	}{
		{"untouched", timeoff.Balance{Allocated: 12, Remaining: 12}, "100"},
		{"two thirds", timeoff.Balance{Allocated: 12, Used: 2, Remaining: 10}, "83.33"},
		{"half", timeoff.Balance{Allocated: 20, Used: 10, Remaining: 10}, "50"},
		{"overdrawn clamps to zero", timeoff.Balance{Allocated: 3, Used: 5, Remaining: -2}, "0"},
		{"no allocation", timeoff.Balance{}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.bal.RemainingPercent().String())
		})
	}
}

// =============================================================================
// CONCURRENCY
// =============================================================================

func TestLedger_ConcurrentDebits(t *testing.T) {
	l := newTestLedger(generic.PeriodConfig{Type: generic.PeriodCalendarYear})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Debit("emp-1", timeoff.CategorySick, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, l.Snapshot("emp-1")[timeoff.CategorySick].Used)
}
