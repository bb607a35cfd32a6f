package metrics

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Group is one row of a breakdown.
type Group struct {
	Key        string
	Total      decimal.Decimal
	Percentage decimal.Decimal // Share of the breakdown total, 0-100.
	Count      int             // Records for cost groups, distinct accounts for revenue groups.
}

// Breakdown is the result of one grouping pass.
type Breakdown struct {
	Groups  []Group
	Total   decimal.Decimal
	Skipped int // Malformed records left out of the totals.
}

// groupAcc accumulates one group while scanning records.
type groupAcc struct {
	total    decimal.Decimal
	rows     int
	accounts map[string]struct{}
}

type grouper struct {
	groups map[string]*groupAcc
}

func newGrouper() *grouper {
	return &grouper{groups: make(map[string]*groupAcc)}
}

func (g *grouper) add(key string, amount decimal.Decimal, accountID string) {
	acc, ok := g.groups[key]
	if !ok {
		acc = &groupAcc{accounts: make(map[string]struct{})}
		g.groups[key] = acc
	}
	acc.total = acc.total.Add(amount)
	acc.rows++
	if accountID != "" {
		acc.accounts[accountID] = struct{}{}
	}
}

// finish computes shares and orders groups by total descending, then key ascending.
func (g *grouper) finish(distinctAccounts bool) Breakdown {
	out := Breakdown{Groups: make([]Group, 0, len(g.groups)), Total: decimal.Zero}
	for _, acc := range g.groups {
		out.Total = out.Total.Add(acc.total)
	}
	for key, acc := range g.groups {
		count := acc.rows
		if distinctAccounts {
			count = len(acc.accounts)
		}
		out.Groups = append(out.Groups, Group{
			Key:        key,
			Total:      acc.total,
			Percentage: share(acc.total, out.Total),
			Count:      count,
		})
	}
	slices.SortFunc(out.Groups, byTotalDesc)
	return out
}

// share returns part/total*100, or zero when total is not positive.
func share(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred)
}

func byTotalDesc(a, b Group) int {
	if c := b.Total.Cmp(a.Total); c != 0 {
		return c
	}
	return strings.Compare(a.Key, b.Key)
}

// CostByProvider groups cost records by exact provider name.
func CostByProvider(records []CostRecord) Breakdown {
	g := newGrouper()
	for _, r := range records {
		provider := strings.TrimSpace(r.Provider)
		if provider == "" {
			provider = UnknownKey
		}
		g.add(provider, r.CostAmount, "")
	}
	return g.finish(false)
}

// CostByCategory groups cost records into the LLM, WHATSAPP, VOICE and OTHER buckets.
func CostByCategory(records []CostRecord) Breakdown {
	g := newGrouper()
	for _, r := range records {
		g.add(string(r.Category.Bucket()), r.CostAmount, "")
	}
	return g.finish(false)
}

// RevenueByTier groups active subscriptions by tier, falling back to the plan name.
// Input must already be restricted to active subscriptions. Count is the number of
// distinct accounts in each tier.
func RevenueByTier(subs []SubscriptionRecord) Breakdown {
	return revenueBy(subs, SubscriptionRecord.TierKey)
}

// RevenueByPlan groups active subscriptions by plan name. Groups are ordered by
// distinct account count, then revenue, then name.
func RevenueByPlan(subs []SubscriptionRecord) Breakdown {
	out := revenueBy(subs, SubscriptionRecord.PlanKey)
	slices.SortStableFunc(out.Groups, func(a, b Group) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return byTotalDesc(a, b)
	})
	return out
}

func revenueBy(subs []SubscriptionRecord, key func(SubscriptionRecord) string) Breakdown {
	g := newGrouper()
	skipped := 0
	for i, s := range subs {
		if errValidate := s.validate(i); errValidate != nil {
			skipped++
			continue
		}
		g.add(key(s), s.MonthlyPrice, strings.TrimSpace(s.AccountID))
	}
	out := g.finish(true)
	out.Skipped = skipped
	return out
}
