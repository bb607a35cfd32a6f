package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreditTransaction is a usage ledger entry. ProviderCost is what the platform paid upstream.
type CreditTransaction struct {
	ID           string              `gorm:"type:text;primaryKey"`
	AccountID    string              `gorm:"type:text;not null;index"`
	ServiceType  string              `gorm:"type:text;not null"` // CHATBOT, WHATSAPP, VOICE.
	ChatbotID    *string             `gorm:"type:text"`
	Amount       decimal.Decimal     `gorm:"type:decimal(18,6);not null"`
	Description  *string             `gorm:"type:text"`
	Status       string              `gorm:"type:text;not null;default:'PROCESSED'"`
	ProviderCost decimal.NullDecimal `gorm:"type:decimal(10,6)"`
	ProviderName *string             `gorm:"type:text"`
	ProviderType *string             `gorm:"type:text"` // llm, whatsapp, voice, storage, embedding, other.
	Metadata     datatypes.JSON      `gorm:"type:jsonb"`
	CreatedAt    *time.Time          `gorm:"index"`
}

// ServiceRate is the price charged per usage unit for a service.
type ServiceRate struct {
	ID            string          `gorm:"type:text;primaryKey"`
	ServiceType   string          `gorm:"type:text;not null;index:service_rates_active_idx"`
	UsageType     string          `gorm:"type:text;not null;index:service_rates_active_idx"`
	RatePerUnit   decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	Currency      string          `gorm:"type:varchar(10);not null;default:'CREDITS'"`
	EffectiveFrom *time.Time
	IsActive      bool      `gorm:"not null;default:true"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (r *ServiceRate) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// AuditLog records an action taken in the main system or the founder dashboard.
type AuditLog struct {
	ID           string         `gorm:"type:text;primaryKey"`
	AccountID    *string        `gorm:"type:text;index"`
	UserID       *string        `gorm:"type:text"`
	Action       string         `gorm:"type:varchar(100);not null;index"`
	ResourceType *string        `gorm:"type:varchar(50)"`
	ResourceID   *string        `gorm:"type:text"`
	Details      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    *time.Time     `gorm:"index"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (l *AuditLog) BeforeCreate(*gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
