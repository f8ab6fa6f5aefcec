package timeoff

// =============================================================================
// DEFAULT ALLOCATIONS
// =============================================================================

// DefaultAllocations are the days granted per accounting period to every
// employee unless BalanceLedger.Allocate overrides them.
var DefaultAllocations = map[Category]int{
	CategoryCasual:   12,
	CategorySick:     15,
	CategoryVacation: 20,
	CategoryOptional: 3,
}

// OverdrawPolicy decides what Approve does when a request costs more than the
// remaining balance.
type OverdrawPolicy string

const (
	// OverdrawAllow approves anyway; Remaining goes negative and the balance
	// reports Overdrawn.
	OverdrawAllow OverdrawPolicy = "allow"

	// OverdrawBlock refuses the approval with InsufficientBalanceError.
	OverdrawBlock OverdrawPolicy = "block"
)

func ParseOverdrawPolicy(s string) (OverdrawPolicy, bool) {
	switch OverdrawPolicy(s) {
	case OverdrawAllow, "":
		return OverdrawAllow, true
	case OverdrawBlock:
		return OverdrawBlock, true
	}
	return "", false
}
