package models

import (
	"encoding/json"
	"time"
)

// Setting is one operator-editable dashboard setting. Value holds JSON so numbers and
// strings share a column.
type Setting struct {
	Key       string          `gorm:"type:varchar(64);primaryKey"`
	Value     json.RawMessage `gorm:"type:jsonb;not null"`
	UpdatedBy *uint64         `gorm:"index"` // Admin who last changed the key; nil when set by the CLI.
	UpdatedAt time.Time       `gorm:"not null;autoUpdateTime"`
}
