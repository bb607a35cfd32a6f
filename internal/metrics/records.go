package metrics

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies the upstream provider a cost was paid to.
type Category string

// Provider categories recorded on the usage ledger.
const (
	CategoryLLM       Category = "LLM"
	CategoryWhatsApp  Category = "WHATSAPP"
	CategoryVoice     Category = "VOICE"
	CategoryStorage   Category = "STORAGE"
	CategoryEmbedding Category = "EMBEDDING"
	CategoryOther     Category = "OTHER"
)

// ParseCategory maps a ledger provider type onto a Category. Unknown or empty input is OTHER.
func ParseCategory(raw string) Category {
	switch Category(strings.ToUpper(strings.TrimSpace(raw))) {
	case CategoryLLM:
		return CategoryLLM
	case CategoryWhatsApp:
		return CategoryWhatsApp
	case CategoryVoice:
		return CategoryVoice
	case CategoryStorage:
		return CategoryStorage
	case CategoryEmbedding:
		return CategoryEmbedding
	default:
		return CategoryOther
	}
}

// Bucket returns the reporting bucket used by the category breakdown.
// Only LLM, WHATSAPP and VOICE are reported on their own.
func (c Category) Bucket() Category {
	switch c {
	case CategoryLLM, CategoryWhatsApp, CategoryVoice:
		return c
	default:
		return CategoryOther
	}
}

// Tier is a subscription plan tier.
type Tier string

// Plan tiers.
const (
	TierFree       Tier = "FREE"
	TierPersonal   Tier = "PERSONAL"
	TierPro        Tier = "PRO"
	TierEnterprise Tier = "ENTERPRISE"
)

// ParseTier returns the tier for raw, or "" when raw is missing or unrecognized.
func ParseTier(raw string) Tier {
	switch t := Tier(strings.ToUpper(strings.TrimSpace(raw))); t {
	case TierFree, TierPersonal, TierPro, TierEnterprise:
		return t
	default:
		return ""
	}
}

// Status is a subscription lifecycle status.
type Status string

// Subscription statuses.
const (
	StatusActive            Status = "active"
	StatusCanceled          Status = "canceled"
	StatusPastDue           Status = "past_due"
	StatusTrialing          Status = "trialing"
	StatusIncomplete        Status = "incomplete"
	StatusIncompleteExpired Status = "incomplete_expired"
	StatusUnpaid            Status = "unpaid"
	StatusPaused            Status = "paused"
)

// UnknownKey labels groups whose natural key is missing.
const UnknownKey = "Unknown"

// CostRecord is one provider cost entry from the usage ledger, already normalized.
type CostRecord struct {
	Provider   string
	Category   Category
	CostAmount decimal.Decimal
	OccurredAt time.Time
}

// SubscriptionRecord is one subscription joined with its plan, already normalized.
// MonthlyPrice includes any per-subscription custom pricing.
type SubscriptionRecord struct {
	AccountID    string
	Tier         Tier
	PlanName     string
	MonthlyPrice decimal.Decimal
	Status       Status
}

// TierKey is the revenue grouping key: the tier, else the plan name.
func (r SubscriptionRecord) TierKey() string {
	if r.Tier != "" {
		return string(r.Tier)
	}
	if name := strings.TrimSpace(r.PlanName); name != "" {
		return name
	}
	return UnknownKey
}

// PlanKey is the grouping key for per-plan reports.
func (r SubscriptionRecord) PlanKey() string {
	if name := strings.TrimSpace(r.PlanName); name != "" {
		return name
	}
	if r.Tier != "" {
		return string(r.Tier)
	}
	return UnknownKey
}

// validate reports the first field that cannot be defaulted.
func (r SubscriptionRecord) validate(index int) error {
	if strings.TrimSpace(r.AccountID) == "" {
		return &MalformedRecordError{Index: index, Field: "accountId"}
	}
	if r.MonthlyPrice.IsNegative() {
		return &MalformedRecordError{Index: index, Field: "monthlyPrice"}
	}
	return nil
}

// Window is a half-open time range [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

// TrailingWindow returns the window covering the last days days up to now.
func TrailingWindow(now time.Time, days int) Window {
	if days <= 0 {
		days = 30
	}
	return Window{From: now.AddDate(0, 0, -days), To: now}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}
