package metrics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cost(provider string, category Category, amount string) CostRecord {
	return CostRecord{Provider: provider, Category: category, CostAmount: decimal.RequireFromString(amount)}
}

func sub(accountID string, tier Tier, plan string, price string) SubscriptionRecord {
	return SubscriptionRecord{
		AccountID:    accountID,
		Tier:         tier,
		PlanName:     plan,
		MonthlyPrice: decimal.RequireFromString(price),
		Status:       StatusActive,
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func percentageSum(groups []Group) float64 {
	sum := decimal.Zero
	for _, g := range groups {
		sum = sum.Add(g.Percentage)
	}
	return sum.InexactFloat64()
}

func TestCostByCategoryExample(t *testing.T) {
	out := CostByCategory([]CostRecord{
		cost("Twilio", CategoryWhatsApp, "30"),
		cost("OpenAI", CategoryLLM, "70"),
	})

	require.Len(t, out.Groups, 2)
	assert.Equal(t, "LLM", out.Groups[0].Key)
	assertDecimal(t, "70", out.Groups[0].Total)
	assertDecimal(t, "70", out.Groups[0].Percentage)
	assert.Equal(t, "WHATSAPP", out.Groups[1].Key)
	assertDecimal(t, "30", out.Groups[1].Total)
	assertDecimal(t, "30", out.Groups[1].Percentage)
	assertDecimal(t, "100", out.Total)
}

func TestCostByCategoryFoldsUnreportedCategories(t *testing.T) {
	out := CostByCategory([]CostRecord{
		cost("S3", CategoryStorage, "5"),
		cost("Voyage", CategoryEmbedding, "5"),
		cost("Mystery", ParseCategory("quantum"), "5"),
		cost("Vapi", CategoryVoice, "5"),
	})

	require.Len(t, out.Groups, 2)
	assert.Equal(t, "OTHER", out.Groups[0].Key)
	assertDecimal(t, "15", out.Groups[0].Total)
	assert.Equal(t, 3, out.Groups[0].Count)
	assert.Equal(t, "VOICE", out.Groups[1].Key)
	assertDecimal(t, "75", out.Groups[0].Percentage)
}

func TestCostByProviderPercentagesSumToHundred(t *testing.T) {
	out := CostByProvider([]CostRecord{
		cost("OpenAI", CategoryLLM, "1"),
		cost("Anthropic", CategoryLLM, "1"),
		cost("Twilio", CategoryWhatsApp, "1"),
		cost("OpenAI", CategoryLLM, "0.3333"),
		cost("Deepgram", CategoryVoice, "7.19"),
	})

	require.Len(t, out.Groups, 4)
	assert.InDelta(t, 100.0, percentageSum(out.Groups), 0.01)
	assert.Equal(t, "Deepgram", out.Groups[0].Key)
	assert.Equal(t, "OpenAI", out.Groups[1].Key)
	assert.Equal(t, 2, out.Groups[1].Count)
}

func TestCostByProviderThirdsSumToHundred(t *testing.T) {
	out := CostByProvider([]CostRecord{
		cost("a", CategoryLLM, "1"),
		cost("b", CategoryLLM, "1"),
		cost("c", CategoryLLM, "1"),
	})
	assert.InDelta(t, 100.0, percentageSum(out.Groups), 0.01)
	// Equal totals are ordered by key.
	assert.Equal(t, []string{"a", "b", "c"}, []string{out.Groups[0].Key, out.Groups[1].Key, out.Groups[2].Key})
}

func TestCostByProviderEmptyInput(t *testing.T) {
	out := CostByProvider(nil)
	assert.Empty(t, out.Groups)
	assert.True(t, out.Total.IsZero())

	out = CostByCategory([]CostRecord{})
	assert.Empty(t, out.Groups)
}

func TestCostByProviderZeroTotal(t *testing.T) {
	out := CostByProvider([]CostRecord{
		cost("OpenAI", CategoryLLM, "0"),
		{Provider: "Twilio", Category: CategoryWhatsApp},
	})
	require.Len(t, out.Groups, 2)
	for _, g := range out.Groups {
		assert.True(t, g.Percentage.IsZero(), "group %s", g.Key)
	}
}

func TestCostByProviderMissingProvider(t *testing.T) {
	out := CostByProvider([]CostRecord{cost("  ", CategoryLLM, "2"), cost("", CategoryOther, "1")})
	require.Len(t, out.Groups, 1)
	assert.Equal(t, UnknownKey, out.Groups[0].Key)
	assert.Equal(t, 2, out.Groups[0].Count)
}

func TestCostAggregationIsIdempotent(t *testing.T) {
	records := []CostRecord{
		cost("OpenAI", CategoryLLM, "12.5"),
		cost("Twilio", CategoryWhatsApp, "12.5"),
		cost("Anthropic", CategoryLLM, "40"),
		cost("Vapi", CategoryVoice, "3.25"),
	}
	assert.Equal(t, CostByProvider(records), CostByProvider(records))
	assert.Equal(t, CostByCategory(records), CostByCategory(records))
}

func TestRevenueByTierDedupesAccounts(t *testing.T) {
	out := RevenueByTier([]SubscriptionRecord{
		sub("a1", TierPro, "Pro", "49"),
		sub("a1", TierPro, "Pro Addon", "10"),
		sub("a2", TierPersonal, "Personal", "19"),
	})

	require.Len(t, out.Groups, 2)
	assert.Equal(t, "PRO", out.Groups[0].Key)
	assert.Equal(t, 1, out.Groups[0].Count)
	assertDecimal(t, "59", out.Groups[0].Total)
	assert.Equal(t, "PERSONAL", out.Groups[1].Key)
	assert.InDelta(t, 100.0, percentageSum(out.Groups), 0.01)
}

func TestRevenueByTierFallsBackToPlanName(t *testing.T) {
	out := RevenueByTier([]SubscriptionRecord{
		sub("a1", "", "Legacy Gold", "99"),
		sub("a2", "", "", "5"),
	})
	require.Len(t, out.Groups, 2)
	assert.Equal(t, "Legacy Gold", out.Groups[0].Key)
	assert.Equal(t, UnknownKey, out.Groups[1].Key)
}

func TestRevenueByTierSkipsMalformedRecords(t *testing.T) {
	out := RevenueByTier([]SubscriptionRecord{
		sub("", TierPro, "Pro", "49"),
		sub("a2", TierPro, "Pro", "-1"),
		sub("a3", TierFree, "Free", "0"),
	})
	assert.Equal(t, 2, out.Skipped)
	require.Len(t, out.Groups, 1)
	assert.Equal(t, "FREE", out.Groups[0].Key)
	assert.True(t, out.Groups[0].Percentage.IsZero())
}

func TestRevenueByPlanOrdersByAccounts(t *testing.T) {
	out := RevenueByPlan([]SubscriptionRecord{
		sub("a1", TierEnterprise, "Enterprise", "999"),
		sub("a2", TierPro, "Pro", "49"),
		sub("a3", TierPro, "Pro", "49"),
	})
	require.Len(t, out.Groups, 2)
	assert.Equal(t, "Pro", out.Groups[0].Key)
	assert.Equal(t, 2, out.Groups[0].Count)
	assert.Equal(t, "Enterprise", out.Groups[1].Key)
}

func TestParseCategory(t *testing.T) {
	assert.Equal(t, CategoryLLM, ParseCategory(" llm "))
	assert.Equal(t, CategoryWhatsApp, ParseCategory("WhatsApp"))
	assert.Equal(t, CategoryOther, ParseCategory(""))
	assert.Equal(t, CategoryOther, ParseCategory("fax"))
	assert.Equal(t, CategoryOther, CategoryStorage.Bucket())
}
