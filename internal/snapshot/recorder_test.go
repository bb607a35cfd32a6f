package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/verly-ai/founder-platform/internal/metrics"
	"github.com/verly-ai/founder-platform/internal/models"
	"github.com/verly-ai/founder-platform/internal/testutil"
	"gorm.io/gorm"
)

type stubSnapshotter struct {
	snap metrics.Snapshot
	err  error
}

func (s *stubSnapshotter) Snapshot(context.Context) (metrics.Snapshot, error) {
	return s.snap, s.err
}

var recorderNow = time.Date(2026, 4, 10, 15, 30, 0, 0, time.UTC)

func newTestRecorder(t *testing.T, conn *gorm.DB, stub *stubSnapshotter, retention int) *Recorder {
	t.Helper()
	r := NewRecorder(conn, conn, stub, time.Hour, func() int { return retention })
	if r == nil {
		t.Fatalf("expected recorder")
	}
	r.now = func() time.Time { return recorderNow }
	return r
}

func TestRecordOnceUpsertsTodayRow(t *testing.T) {
	conn := testutil.OpenDB(t)
	testutil.SeedAccount(t, conn, "acc-new", "New Co", recorderNow.Add(-time.Hour))
	testutil.SeedAccount(t, conn, "acc-old", "Old Co", recorderNow.AddDate(0, 0, -3))
	active := models.ChatBot{ID: "bot-1", AccountID: "acc-new", Name: "Helper", Status: "ACTIVE"}
	testutil.Create(t, conn, &active)

	stub := &stubSnapshotter{snap: metrics.Snapshot{
		MRR:                decimal.NewFromInt(100),
		ARR:                decimal.NewFromInt(1200),
		ActiveAccountCount: 2,
		TotalProviderCost:  decimal.NewFromInt(30),
		GrossMarginPct:     decimal.NewFromInt(70),
	}}
	r := newTestRecorder(t, conn, stub, 0)

	row, errRecord := r.RecordOnce(context.Background())
	if errRecord != nil {
		t.Fatalf("record: %v", errRecord)
	}
	if row.Date != "2026-04-10" || row.NewAccounts != 1 || row.ActiveChatbots != 1 {
		t.Fatalf("unexpected row %+v", row)
	}

	stub.snap.MRR = decimal.NewFromInt(150)
	if _, errRecord = r.RecordOnce(context.Background()); errRecord != nil {
		t.Fatalf("record again: %v", errRecord)
	}

	var rows []models.PlatformMetric
	if errFind := conn.Find(&rows).Error; errFind != nil {
		t.Fatalf("find: %v", errFind)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row per day, got %d", len(rows))
	}
	if !rows[0].MRR.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected updated mrr, got %s", rows[0].MRR)
	}
}

func TestRecordOnceSkipsWhenLedgerUnavailable(t *testing.T) {
	conn := testutil.OpenDB(t)
	stub := &stubSnapshotter{err: metrics.Unavailable("subscriptions", errors.New("down"))}
	r := newTestRecorder(t, conn, stub, 0)

	if _, errRecord := r.RecordOnce(context.Background()); !errors.Is(errRecord, metrics.ErrDataUnavailable) {
		t.Fatalf("expected data unavailable, got %v", errRecord)
	}
	var count int64
	conn.Model(&models.PlatformMetric{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no row to be written, got %d", count)
	}
}

func seedMetricRow(t *testing.T, conn *gorm.DB, date string, mrr int64) {
	t.Helper()
	testutil.Create(t, conn, &models.PlatformMetric{Date: date, MRR: decimal.NewFromInt(mrr)})
}

func TestCleanupRemovesRowsPastRetention(t *testing.T) {
	conn := testutil.OpenDB(t)
	seedMetricRow(t, conn, "2026-01-01", 10)
	seedMetricRow(t, conn, "2026-04-01", 20)
	seedMetricRow(t, conn, "2026-04-09", 30)

	r := newTestRecorder(t, conn, &stubSnapshotter{}, 30)
	r.batchSize = 1
	r.cleanupOnce(context.Background())

	var dates []string
	conn.Model(&models.PlatformMetric{}).Order("date ASC").Pluck("date", &dates)
	if len(dates) != 2 || dates[0] != "2026-04-01" {
		t.Fatalf("unexpected remaining rows %v", dates)
	}
}

func TestHistoryAndBaseline(t *testing.T) {
	conn := testutil.OpenDB(t)
	seedMetricRow(t, conn, "2026-03-01", 10)
	seedMetricRow(t, conn, "2026-04-08", 20)
	seedMetricRow(t, conn, "2026-04-09", 30)
	seedMetricRow(t, conn, "2026-04-10", 40)

	rows, errHistory := History(context.Background(), conn, recorderNow, 7)
	if errHistory != nil {
		t.Fatalf("history: %v", errHistory)
	}
	if len(rows) != 3 || rows[0].Date != "2026-04-08" {
		t.Fatalf("unexpected history %+v", rows)
	}

	baseline, errBaseline := Baseline(context.Background(), conn, recorderNow)
	if errBaseline != nil {
		t.Fatalf("baseline: %v", errBaseline)
	}
	if baseline == nil || baseline.Date != "2026-04-09" {
		t.Fatalf("unexpected baseline %+v", baseline)
	}

	empty := testutil.OpenDB(t)
	baseline, errBaseline = Baseline(context.Background(), empty, recorderNow)
	if errBaseline != nil || baseline != nil {
		t.Fatalf("expected no baseline, got %+v %v", baseline, errBaseline)
	}
}

func TestRecorderStartStopsOnCancel(t *testing.T) {
	conn := testutil.OpenDB(t)
	r := newTestRecorder(t, conn, &stubSnapshotter{}, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Start(ctx)
}
