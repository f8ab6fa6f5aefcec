/*
ledger.go - Per-category leave balance bookkeeping

PURPOSE:
  Tracks, for every employee, how many days of each category were allocated
  and used in each accounting period. Remaining is always derived as
  Allocated - Used; nothing stores it.

INVARIANTS:
  1. Debit never clamps: a negative Remaining is an over-drawn signal for the
     presentation layer, not an error.
  2. Credit floors Used at zero.
  3. Used changes only through Debit/Credit. RequestService calls Debit as
     part of Approve and nowhere else.

PERIODS:
  Balances are bucketed by the period PeriodConfig assigns to a date. Debit and
  Snapshot act on the period containing "today"; the *At variants name the
  date explicitly.

EXAMPLE:
  ledger := timeoff.NewBalanceLedger(generic.PeriodConfig{Type: generic.PeriodCalendarYear}, generic.Today)
  ledger.Debit("emp-1", timeoff.CategorySick, 1)
  snap := ledger.Snapshot("emp-1")
  snap[timeoff.CategorySick].Remaining // 14

SEE ALSO:
  - policies.go: Default allocations
  - request.go: Approve debits through this ledger
*/
package timeoff

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-tracker/generic"
)

// =============================================================================
// BALANCE - Read model for one category
// =============================================================================

type Balance struct {
	Category  Category
	Period    generic.Period
	Allocated int
	Used      int
	Remaining int
}

// Overdrawn reports a negative remaining balance.
func (b Balance) Overdrawn() bool { return b.Remaining < 0 }

// RemainingPercent is Remaining/Allocated as a percentage in [0, 100], rounded
// to two places. Zero allocation yields zero.
func (b Balance) RemainingPercent() decimal.Decimal {
	if b.Allocated <= 0 {
		return decimal.Zero
	}
	pct := decimal.NewFromInt(int64(b.Remaining)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(b.Allocated)))
	switch {
	case pct.IsNegative():
		pct = decimal.Zero
	case pct.GreaterThan(decimal.NewFromInt(100)):
		pct = decimal.NewFromInt(100)
	}
	return pct.Round(2)
}

// =============================================================================
// BALANCE LEDGER
// =============================================================================

type ledgerKey struct {
	EmployeeID  string
	PeriodStart string
	Category    Category
}

type BalanceLedger struct {
	mu         sync.RWMutex
	periods    generic.PeriodConfig
	today      func() generic.TimePoint
	used       map[ledgerKey]int
	allocation map[string]map[Category]int // employee overrides
	defaults   map[Category]int
}

// NewBalanceLedger creates a ledger seeded with DefaultAllocations. A nil
// today func means generic.Today.
func NewBalanceLedger(periods generic.PeriodConfig, today func() generic.TimePoint) *BalanceLedger {
	if today == nil {
		today = generic.Today
	}
	defaults := make(map[Category]int, len(DefaultAllocations))
	for c, n := range DefaultAllocations {
		defaults[c] = n
	}
	return &BalanceLedger{
		periods:    periods,
		today:      today,
		used:       make(map[ledgerKey]int),
		allocation: make(map[string]map[Category]int),
		defaults:   defaults,
	}
}

// PeriodFor exposes the accounting period containing at.
func (l *BalanceLedger) PeriodFor(at generic.TimePoint) generic.Period {
	return l.periods.PeriodFor(at)
}

// Periods returns the period configuration the ledger buckets by.
func (l *BalanceLedger) Periods() generic.PeriodConfig {
	return l.periods
}

// Allocate overrides the per-period allocation for one employee and category.
func (l *BalanceLedger) Allocate(employeeID string, category Category, days int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.allocation[employeeID] == nil {
		l.allocation[employeeID] = make(map[Category]int)
	}
	l.allocation[employeeID][category] = days
}

// Debit increments Used for the current period.
func (l *BalanceLedger) Debit(employeeID string, category Category, days int) {
	l.DebitAt(employeeID, category, l.today(), days)
}

// DebitAt increments Used in the period containing at. No clamping.
func (l *BalanceLedger) DebitAt(employeeID string, category Category, at generic.TimePoint, days int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.used[l.key(employeeID, category, at)] += days
}

// Credit decrements Used for the current period, floored at zero.
func (l *BalanceLedger) Credit(employeeID string, category Category, days int) {
	l.CreditAt(employeeID, category, l.today(), days)
}

// CreditAt decrements Used in the period containing at, floored at zero.
func (l *BalanceLedger) CreditAt(employeeID string, category Category, at generic.TimePoint, days int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := l.key(employeeID, category, at)
	used := l.used[k] - days
	if used < 0 {
		used = 0
	}
	l.used[k] = used
}

// Snapshot returns every category's balance in the current period.
func (l *BalanceLedger) Snapshot(employeeID string) map[Category]Balance {
	return l.SnapshotAt(employeeID, l.today())
}

// SnapshotAt returns every category's balance in the period containing at.
func (l *BalanceLedger) SnapshotAt(employeeID string, at generic.TimePoint) map[Category]Balance {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[Category]Balance, len(Categories))
	for _, c := range Categories {
		out[c] = l.balanceLocked(employeeID, c, at)
	}
	return out
}

// BalanceAt returns one category's balance in the period containing at.
func (l *BalanceLedger) BalanceAt(employeeID string, category Category, at generic.TimePoint) Balance {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balanceLocked(employeeID, category, at)
}

func (l *BalanceLedger) balanceLocked(employeeID string, category Category, at generic.TimePoint) Balance {
	allocated := l.defaults[category]
	if override, ok := l.allocation[employeeID][category]; ok {
		allocated = override
	}
	used := l.used[l.key(employeeID, category, at)]
	return Balance{
		Category:  category,
		Period:    l.periods.PeriodFor(at),
		Allocated: allocated,
		Used:      used,
		Remaining: allocated - used,
	}
}

func (l *BalanceLedger) key(employeeID string, category Category, at generic.TimePoint) ledgerKey {
	return ledgerKey{
		EmployeeID:  employeeID,
		PeriodStart: l.periods.PeriodFor(at).Start.String(),
		Category:    category,
	}
}
