package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SubscriptionStatusActive is the only status that contributes revenue.
const SubscriptionStatusActive = "active"

// SubscriptionPlan is a purchasable plan in the main system.
type SubscriptionPlan struct {
	PlanID            string          `gorm:"column:plan_id;type:text;primaryKey"`
	PlanName          string          `gorm:"type:varchar(255);not null"`
	TierType          *string         `gorm:"type:text;index"` // FREE, PERSONAL, PRO, ENTERPRISE.
	Description       *string         `gorm:"type:text"`
	IsActive          *bool           `gorm:"default:true"`
	DurationInDays    *int
	PriceMonthly      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PriceAnnually     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Currency          *string         `gorm:"type:varchar(10);default:'usd'"`
	Entitlements      datatypes.JSON  `gorm:"type:jsonb"`
	UsageBasedPricing datatypes.JSON  `gorm:"type:jsonb"`
	IsPublic          *bool           `gorm:"default:true"`
	SortOrder         int             `gorm:"default:0"`
	CreatedAt         *time.Time
	UpdatedAt         *time.Time
}

// Subscription binds an account to a plan.
type Subscription struct {
	ID                   string         `gorm:"type:text;primaryKey"`
	AccountID            string         `gorm:"type:text;not null;index"`
	PlanID               string         `gorm:"type:text;not null"`
	Status               string         `gorm:"type:text;not null;default:'trialing';index"`
	CurrentPeriodStart   *time.Time
	CurrentPeriodEnd     *time.Time
	CancelAtPeriodEnd    *bool          `gorm:"default:false"`
	CanceledAt           *time.Time
	StripeSubscriptionID *string        `gorm:"type:text"`
	StripeCustomerID     *string        `gorm:"type:text"`
	CustomPricing        datatypes.JSON `gorm:"type:jsonb"` // {"monthlyPrice": n, "annualPrice": n}
	CreatedAt            *time.Time
	UpdatedAt            *time.Time
}
