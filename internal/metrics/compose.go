package metrics

import (
	"strings"

	"github.com/shopspring/decimal"
)

var monthsPerYear = decimal.NewFromInt(12)

// Snapshot is the derived set of headline business metrics.
type Snapshot struct {
	MRR                decimal.Decimal
	ARR                decimal.Decimal
	ActiveAccountCount int
	TotalProviderCost  decimal.Decimal
	GrossMarginPct     decimal.Decimal
	SkippedRecords     int
}

// Compose derives a Snapshot from active subscriptions and the cost window.
//
// MRR sums every active subscription, so an account with two active subscriptions
// contributes both prices while being counted once in ActiveAccountCount.
// Gross margin compares MRR with the windowed provider cost as is; the two are not
// unit-matched.
func Compose(subs []SubscriptionRecord, costs []CostRecord) Snapshot {
	snap := Snapshot{
		MRR:               decimal.Zero,
		ARR:               decimal.Zero,
		TotalProviderCost: decimal.Zero,
		GrossMarginPct:    decimal.Zero,
	}

	accounts := make(map[string]struct{}, len(subs))
	for i, s := range subs {
		if errValidate := s.validate(i); errValidate != nil {
			snap.SkippedRecords++
			continue
		}
		snap.MRR = snap.MRR.Add(s.MonthlyPrice)
		accounts[strings.TrimSpace(s.AccountID)] = struct{}{}
	}
	snap.ActiveAccountCount = len(accounts)
	snap.ARR = snap.MRR.Mul(monthsPerYear)

	for _, c := range costs {
		snap.TotalProviderCost = snap.TotalProviderCost.Add(c.CostAmount)
	}

	if snap.MRR.IsPositive() {
		snap.GrossMarginPct = snap.MRR.Sub(snap.TotalProviderCost).Div(snap.MRR).Mul(hundred)
	}
	return snap
}
