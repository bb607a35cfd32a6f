// Package testutil builds migrated SQLite datastores and seeds ledger fixtures for tests.
package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	dbpkg "github.com/verly-ai/founder-platform/internal/db"
	"github.com/verly-ai/founder-platform/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OpenDB returns an in-memory SQLite database with both founder and main tables migrated.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()
	conn, errOpen := dbpkg.Open(":memory:")
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := dbpkg.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	if errMigrate := dbpkg.MigrateMain(conn); errMigrate != nil {
		t.Fatalf("migrate main: %v", errMigrate)
	}
	t.Cleanup(func() {
		if sqlDB, errDB := conn.DB(); errDB == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

// OpenHandles returns handles whose Main and Founder share one migrated database.
func OpenHandles(t testing.TB) *dbpkg.Handles {
	t.Helper()
	conn := OpenDB(t)
	return &dbpkg.Handles{Main: conn, Founder: conn}
}

// Create inserts value or fails the test.
func Create(t testing.TB, conn *gorm.DB, value any) {
	t.Helper()
	if errCreate := conn.Create(value).Error; errCreate != nil {
		t.Fatalf("create %T: %v", value, errCreate)
	}
}

// SeedAccount inserts an account created at createdAt.
func SeedAccount(t testing.TB, conn *gorm.DB, id, name string, createdAt time.Time) models.Account {
	t.Helper()
	at := createdAt.UTC()
	account := models.Account{ID: id, Name: name, CreatedAt: &at}
	Create(t, conn, &account)
	return account
}

// SeedPlan inserts a subscription plan.
func SeedPlan(t testing.TB, conn *gorm.DB, id, name, tier, monthly string) models.SubscriptionPlan {
	t.Helper()
	price := decimal.RequireFromString(monthly)
	plan := models.SubscriptionPlan{
		PlanID:        id,
		PlanName:      name,
		PriceMonthly:  price,
		PriceAnnually: price.Mul(decimal.NewFromInt(10)),
	}
	if tier != "" {
		plan.TierType = &tier
	}
	Create(t, conn, &plan)
	return plan
}

// SeedSubscription inserts a subscription. customPricing may be nil.
func SeedSubscription(t testing.TB, conn *gorm.DB, accountID, planID, status string, customPricing []byte) models.Subscription {
	t.Helper()
	now := time.Now().UTC()
	subscription := models.Subscription{
		ID:        uuid.NewString(),
		AccountID: accountID,
		PlanID:    planID,
		Status:    status,
		CreatedAt: &now,
	}
	if customPricing != nil {
		subscription.CustomPricing = datatypes.JSON(customPricing)
	}
	Create(t, conn, &subscription)
	return subscription
}

// SeedCost inserts a ledger entry carrying a provider cost.
func SeedCost(t testing.TB, conn *gorm.DB, accountID, provider, providerType, amount string, at time.Time) models.CreditTransaction {
	t.Helper()
	createdAt := at.UTC()
	entry := models.CreditTransaction{
		ID:           uuid.NewString(),
		AccountID:    accountID,
		ServiceType:  "CHATBOT",
		Amount:       decimal.NewFromInt(1),
		Status:       "PROCESSED",
		ProviderCost: decimal.NewNullDecimal(decimal.RequireFromString(amount)),
		CreatedAt:    &createdAt,
	}
	if provider != "" {
		entry.ProviderName = &provider
	}
	if providerType != "" {
		entry.ProviderType = &providerType
	}
	Create(t, conn, &entry)
	return entry
}
