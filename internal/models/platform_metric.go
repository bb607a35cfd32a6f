package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PlatformMetric is a stored daily metrics snapshot used for history and trends.
type PlatformMetric struct {
	ID   string `gorm:"type:text;primaryKey"`
	Date string `gorm:"type:varchar(10);not null;uniqueIndex"` // YYYY-MM-DD (UTC).

	MRR               decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ARR               decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalProviderCost decimal.Decimal `gorm:"type:decimal(12,6);not null;default:0"`
	GrossMargin       decimal.Decimal `gorm:"type:decimal(7,2);not null;default:0"`
	ActiveAccounts    int64           `gorm:"not null;default:0"`
	NewAccounts       int64           `gorm:"not null;default:0"`
	ActiveChatbots    int64           `gorm:"not null;default:0"`
	SkippedRecords    int64           `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (m *PlatformMetric) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
