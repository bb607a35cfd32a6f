package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FlagStrategy controls how a feature flag is evaluated by the product.
type FlagStrategy string

// Supported flag strategies.
const (
	FlagStrategyGlobal     FlagStrategy = "global"
	FlagStrategyPercentage FlagStrategy = "percentage"
	FlagStrategyTargeted   FlagStrategy = "targeted"
	FlagStrategyABTest     FlagStrategy = "ab_test"
	FlagStrategyTimeBased  FlagStrategy = "time_based"
)

// Valid reports whether s is a known strategy.
func (s FlagStrategy) Valid() bool {
	switch s {
	case FlagStrategyGlobal, FlagStrategyPercentage, FlagStrategyTargeted, FlagStrategyABTest, FlagStrategyTimeBased:
		return true
	default:
		return false
	}
}

// FeatureFlag is a founder-managed product toggle.
type FeatureFlag struct {
	ID          string         `gorm:"type:text;primaryKey"`
	Key         string         `gorm:"type:text;not null;uniqueIndex"`
	Name        string         `gorm:"type:text;not null"`
	Description string         `gorm:"type:text"`
	Strategy    FlagStrategy   `gorm:"type:text;not null;default:'global'"`
	Value       datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"` // Strategy parameters (percentage, variants, targets).
	Rules       datatypes.JSON `gorm:"type:jsonb;default:'{}'"`         // Targeting rules.
	DependsOn   datatypes.JSON `gorm:"type:jsonb;default:'[]'"`         // Keys of flags this one depends on.
	IsEnabled   bool           `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (f *FeatureFlag) BeforeCreate(*gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
