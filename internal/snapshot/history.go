package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/verly-ai/founder-platform/internal/models"
	"gorm.io/gorm"
)

// History returns stored rows for the last days days, oldest first.
func History(ctx context.Context, db *gorm.DB, now time.Time, days int) ([]models.PlatformMetric, error) {
	if days <= 0 {
		days = 30
	}
	since := now.UTC().AddDate(0, 0, -days).Format(DateLayout)
	var rows []models.PlatformMetric
	if errFind := db.WithContext(ctx).
		Where("date >= ?", since).
		Order("date ASC").
		Find(&rows).Error; errFind != nil {
		return nil, errFind
	}
	return rows, nil
}

// Baseline returns the most recent row dated before now's day, or nil when none exists.
func Baseline(ctx context.Context, db *gorm.DB, now time.Time) (*models.PlatformMetric, error) {
	today := now.UTC().Format(DateLayout)
	var row models.PlatformMetric
	errFind := db.WithContext(ctx).
		Where("date < ?", today).
		Order("date DESC").
		First(&row).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if errFind != nil {
		return nil, errFind
	}
	return &row, nil
}
