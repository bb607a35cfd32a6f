package settings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/verly-ai/founder-platform/internal/models"
	"gorm.io/gorm"
)

// Refresh loads every settings row into the in-memory snapshot. Call it at startup;
// until then the typed accessors return their fallbacks.
func Refresh(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("settings: nil db")
	}
	var rows []models.Setting
	if errFind := db.WithContext(ctx).Find(&rows).Error; errFind != nil {
		return errFind
	}

	values := make(map[string]json.RawMessage, len(rows))
	var newest time.Time
	for _, row := range rows {
		if !IsKnownKey(row.Key) {
			continue
		}
		values[row.Key] = row.Value
		if row.UpdatedAt.After(newest) {
			newest = row.UpdatedAt
		}
	}
	Store(newest, values)
	return nil
}

// Save upserts values on behalf of adminID (0 for the CLI) and refreshes the snapshot.
func Save(ctx context.Context, db *gorm.DB, adminID uint64, values map[string]json.RawMessage) error {
	if db == nil {
		return errors.New("settings: nil db")
	}
	var updatedBy *uint64
	if adminID != 0 {
		updatedBy = &adminID
	}
	now := time.Now().UTC()
	errTx := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, value := range values {
			if !IsKnownKey(key) {
				return errors.New("settings: unknown key " + key)
			}
			row := models.Setting{Key: key, Value: value, UpdatedBy: updatedBy, UpdatedAt: now}
			if errSave := tx.Save(&row).Error; errSave != nil {
				return errSave
			}
		}
		return nil
	})
	if errTx != nil {
		return errTx
	}
	return Refresh(ctx, db)
}
