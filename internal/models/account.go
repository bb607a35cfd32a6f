package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a customer workspace in the main system.
type Account struct {
	ID           string     `gorm:"type:text;primaryKey"`
	Name         string     `gorm:"type:text;not null"`
	BillingEmail *string    `gorm:"type:text"`
	CreatedAt    *time.Time `gorm:"index"`
}

// AccountWallet holds an account's credit balance.
type AccountWallet struct {
	AccountID string          `gorm:"type:text;primaryKey"`
	Balance   decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	Currency  string          `gorm:"type:varchar(10);not null;default:'CREDITS'"`
}

// ChatBot is a chatbot owned by an account.
type ChatBot struct {
	ID        string     `gorm:"type:text;primaryKey"`
	AccountID string     `gorm:"type:text;not null;index"`
	Name      string     `gorm:"type:text;not null"`
	Status    string     `gorm:"type:text;not null;default:'INACTIVE'"`
	CreatedAt *time.Time
}

// TableName keeps the main system's table name.
func (ChatBot) TableName() string { return "chatbot" }

// AccountMember links a user to an account.
type AccountMember struct {
	AccountID string     `gorm:"type:text;primaryKey"`
	UserID    string     `gorm:"type:text;primaryKey"`
	Role      string     `gorm:"type:text;not null;default:'MEMBER'"`
	CreatedAt *time.Time
}
