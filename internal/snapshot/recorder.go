// Package snapshot persists a daily row of platform metrics for history and trend reporting.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/verly-ai/founder-platform/internal/metrics"
	"github.com/verly-ai/founder-platform/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultRecordInterval  = 6 * time.Hour
	defaultDeleteBatchSize = 500
	maxDeleteBatchesPerRun = 200

	// DateLayout is the format of PlatformMetric.Date.
	DateLayout = "2006-01-02"
)

// Snapshotter produces the headline metrics.
type Snapshotter interface {
	Snapshot(ctx context.Context) (metrics.Snapshot, error)
}

// Recorder periodically upserts today's metrics row and prunes old rows.
type Recorder struct {
	founder   *gorm.DB
	main      *gorm.DB
	metrics   Snapshotter
	interval  time.Duration
	retention func() int
	batchSize int
	now       func() time.Time
}

// NewRecorder returns a recorder writing to founder and counting accounts in main.
// retention returns the number of days to keep; 0 keeps every row.
func NewRecorder(founder, main *gorm.DB, snapshotter Snapshotter, interval time.Duration, retention func() int) *Recorder {
	if founder == nil || main == nil || snapshotter == nil {
		return nil
	}
	if interval <= 0 {
		interval = defaultRecordInterval
	}
	if retention == nil {
		retention = func() int { return 0 }
	}
	return &Recorder{
		founder:   founder,
		main:      main,
		metrics:   snapshotter,
		interval:  interval,
		retention: retention,
		batchSize: defaultDeleteBatchSize,
		now:       time.Now,
	}
}

// Start launches the record loop in a background goroutine.
func (r *Recorder) Start(ctx context.Context) {
	if r == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	go r.run(ctx)
	log.Infof("metrics snapshot recorder started (interval=%s)", r.interval)
}

func (r *Recorder) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if _, errRecord := r.RecordOnce(ctx); errRecord != nil {
			if errors.Is(errRecord, metrics.ErrDataUnavailable) {
				log.WithError(errRecord).Warn("metrics snapshot recorder: ledger unavailable, skipping run")
			} else {
				log.WithError(errRecord).Error("metrics snapshot recorder: record failed")
			}
		}
		r.cleanupOnce(ctx)
		timer := time.NewTimer(r.interval)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return
		case <-timer.C:
		}
	}
}

// RecordOnce computes the current snapshot and upserts the row for today (UTC).
// Nothing is written when the ledger is unavailable.
func (r *Recorder) RecordOnce(ctx context.Context) (models.PlatformMetric, error) {
	snap, errSnap := r.metrics.Snapshot(ctx)
	if errSnap != nil {
		return models.PlatformMetric{}, errSnap
	}

	now := r.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var newAccounts int64
	if errCount := r.main.WithContext(ctx).
		Model(&models.Account{}).
		Where("created_at >= ? AND created_at < ?", dayStart, dayStart.AddDate(0, 0, 1)).
		Count(&newAccounts).Error; errCount != nil {
		return models.PlatformMetric{}, metrics.Unavailable("accounts", errCount)
	}
	var activeChatbots int64
	if errCount := r.main.WithContext(ctx).
		Model(&models.ChatBot{}).
		Where("status = ?", "ACTIVE").
		Count(&activeChatbots).Error; errCount != nil {
		return models.PlatformMetric{}, metrics.Unavailable("chatbot", errCount)
	}

	row := models.PlatformMetric{
		Date:              dayStart.Format(DateLayout),
		MRR:               snap.MRR.Round(2),
		ARR:               snap.ARR.Round(2),
		TotalProviderCost: snap.TotalProviderCost.Round(6),
		GrossMargin:       snap.GrossMarginPct.Round(2),
		ActiveAccounts:    int64(snap.ActiveAccountCount),
		NewAccounts:       newAccounts,
		ActiveChatbots:    activeChatbots,
		SkippedRecords:    int64(snap.SkippedRecords),
	}
	errUpsert := r.founder.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"mrr", "arr", "total_provider_cost", "gross_margin",
			"active_accounts", "new_accounts", "active_chatbots", "skipped_records", "updated_at",
		}),
	}).Create(&row).Error
	if errUpsert != nil {
		return models.PlatformMetric{}, fmt.Errorf("snapshot: upsert %s: %w", row.Date, errUpsert)
	}
	log.WithFields(log.Fields{
		"date":            row.Date,
		"mrr":             row.MRR.String(),
		"active_accounts": row.ActiveAccounts,
	}).Debug("metrics snapshot recorded")
	return row, nil
}

func (r *Recorder) cleanupOnce(ctx context.Context) {
	retentionDays := r.retention()
	if retentionDays <= 0 {
		return
	}
	cutoff := r.now().UTC().AddDate(0, 0, -retentionDays).Format(DateLayout)

	deletedTotal := int64(0)
	for i := 0; i < maxDeleteBatchesPerRun; i++ {
		if ctx.Err() != nil {
			return
		}
		n, err := r.deleteBatch(ctx, cutoff)
		if err != nil {
			log.WithError(err).Warn("metrics snapshot recorder: delete batch failed")
			break
		}
		if n <= 0 {
			break
		}
		deletedTotal += n
	}
	if deletedTotal > 0 {
		log.Infof("metrics snapshot recorder: deleted %d rows (cutoff=%s retention_days=%d)", deletedTotal, cutoff, retentionDays)
	}
}

func (r *Recorder) deleteBatch(ctx context.Context, cutoff string) (int64, error) {
	res := r.founder.WithContext(ctx).Exec(`
		DELETE FROM platform_metrics
		WHERE id IN (
			SELECT id FROM platform_metrics
			WHERE date < ?
			ORDER BY date ASC
			LIMIT ?
		)
	`, cutoff, r.batchSize)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
