package db

import (
	"errors"
	"fmt"

	"github.com/verly-ai/founder-platform/internal/models"
	"gorm.io/gorm"
)

// founderModels lists tables owned by the founder platform.
var founderModels = []any{
	&models.Admin{},
	&models.Setting{},
	&models.FeatureFlag{},
	&models.PlatformMetric{},
}

// mainModels lists the main-system tables the dashboard reads. They are owned by the
// product and only created here for local development and tests.
var mainModels = []any{
	&models.Account{},
	&models.AccountWallet{},
	&models.AccountMember{},
	&models.ChatBot{},
	&models.SubscriptionPlan{},
	&models.Subscription{},
	&models.CreditTransaction{},
	&models.ServiceRate{},
	&models.AuditLog{},
}

// Migrate creates or updates founder platform tables.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("db: nil connection")
	}
	if errMigrate := conn.AutoMigrate(founderModels...); errMigrate != nil {
		return fmt.Errorf("db: migrate founder tables: %w", errMigrate)
	}
	return nil
}

// MigrateMain creates the main-system tables. Production deployments point at the
// product database and never call this.
func MigrateMain(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("db: nil connection")
	}
	if errMigrate := conn.AutoMigrate(mainModels...); errMigrate != nil {
		return fmt.Errorf("db: migrate main tables: %w", errMigrate)
	}
	return nil
}
