package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verly-ai/founder-platform/internal/metrics"
	"github.com/verly-ai/founder-platform/internal/models"
	"github.com/verly-ai/founder-platform/internal/testutil"
	"go.opentelemetry.io/otel/trace/noop"
)

var now = time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)

func newReader(t *testing.T) *Reader {
	t.Helper()
	return NewReader(testutil.OpenDB(t), WithTracer(noop.NewTracerProvider().Tracer("test")))
}

func TestCostRecordsWindowAndNormalization(t *testing.T) {
	conn := testutil.OpenDB(t)
	testutil.SeedCost(t, conn, "a1", "OpenAI", "llm", "1.25", now.Add(-time.Hour))
	testutil.SeedCost(t, conn, "a1", "", "whatsapp", "0.5", now.Add(-48*time.Hour))
	testutil.SeedCost(t, conn, "a1", "Mystery", "", "2", now.Add(-72*time.Hour))
	testutil.SeedCost(t, conn, "a1", "OpenAI", "llm", "9", now.AddDate(0, 0, -40))
	testutil.SeedCost(t, conn, "a1", "OpenAI", "llm", "9", now.Add(time.Hour))

	noCost := models.CreditTransaction{ID: "no-cost", AccountID: "a1", ServiceType: "CHATBOT", Amount: decimal.NewFromInt(1), Status: "PROCESSED"}
	at := now.Add(-2 * time.Hour)
	noCost.CreatedAt = &at
	testutil.Create(t, conn, &noCost)

	reader := NewReader(conn, WithTracer(noop.NewTracerProvider().Tracer("test")))
	records, errRead := reader.CostRecords(context.Background(), metrics.TrailingWindow(now, 30))
	require.NoError(t, errRead)
	require.Len(t, records, 3)

	byProvider := map[string]metrics.CostRecord{}
	for _, rec := range records {
		byProvider[rec.Provider] = rec
	}
	require.Contains(t, byProvider, "OpenAI")
	assert.Equal(t, metrics.CategoryLLM, byProvider["OpenAI"].Category)
	assert.True(t, decimal.RequireFromString("1.25").Equal(byProvider["OpenAI"].CostAmount))
	require.Contains(t, byProvider, metrics.UnknownKey)
	assert.Equal(t, metrics.CategoryWhatsApp, byProvider[metrics.UnknownKey].Category)
	assert.Equal(t, metrics.CategoryOther, byProvider["Mystery"].Category)
}

func TestCostRecordsEmptyLedger(t *testing.T) {
	reader := newReader(t)
	records, errRead := reader.CostRecords(context.Background(), metrics.TrailingWindow(now, 30))
	require.NoError(t, errRead)
	assert.Empty(t, records)
}

func TestActiveSubscriptions(t *testing.T) {
	conn := testutil.OpenDB(t)
	testutil.SeedPlan(t, conn, "pro", "Pro", "PRO", "49")
	testutil.SeedPlan(t, conn, "legacy", "Legacy Gold", "", "99")
	testutil.SeedSubscription(t, conn, "a1", "pro", "active", nil)
	testutil.SeedSubscription(t, conn, "a2", "pro", "active", []byte(`{"monthlyPrice": 30}`))
	testutil.SeedSubscription(t, conn, "a3", "legacy", "active", nil)
	testutil.SeedSubscription(t, conn, "a4", "pro", "canceled", nil)
	testutil.SeedSubscription(t, conn, "a5", "pro", "trialing", nil)
	testutil.SeedSubscription(t, conn, "a6", "missing-plan", "active", nil)

	reader := NewReader(conn, WithTracer(noop.NewTracerProvider().Tracer("test")))
	subs, errRead := reader.ActiveSubscriptions(context.Background())
	require.NoError(t, errRead)
	require.Len(t, subs, 4)

	byAccount := map[string]metrics.SubscriptionRecord{}
	for _, s := range subs {
		assert.Equal(t, metrics.StatusActive, s.Status)
		byAccount[s.AccountID] = s
	}
	assert.Equal(t, metrics.TierPro, byAccount["a1"].Tier)
	assert.True(t, decimal.NewFromInt(49).Equal(byAccount["a1"].MonthlyPrice))
	assert.True(t, decimal.NewFromInt(30).Equal(byAccount["a2"].MonthlyPrice), "custom pricing overrides plan price")
	assert.Equal(t, "Legacy Gold", byAccount["a3"].TierKey())
	assert.Equal(t, metrics.UnknownKey, byAccount["a6"].TierKey())
	assert.True(t, byAccount["a6"].MonthlyPrice.IsZero())
}

func TestReaderReportsDataUnavailable(t *testing.T) {
	conn := testutil.OpenDB(t)
	sqlDB, errDB := conn.DB()
	require.NoError(t, errDB)
	require.NoError(t, sqlDB.Close())

	reader := NewReader(conn)
	_, errCosts := reader.CostRecords(context.Background(), metrics.TrailingWindow(now, 30))
	require.Error(t, errCosts)
	assert.True(t, errors.Is(errCosts, metrics.ErrDataUnavailable))

	_, errSubs := reader.ActiveSubscriptions(context.Background())
	var unavailable *metrics.UnavailableError
	require.ErrorAs(t, errSubs, &unavailable)
	assert.Equal(t, SourceSubscriptions, unavailable.Source)
}

func TestReaderCanceledContext(t *testing.T) {
	reader := newReader(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, errRead := reader.ActiveSubscriptions(ctx)
	assert.ErrorIs(t, errRead, metrics.ErrDataUnavailable)
}

func TestReaderFeedsComposer(t *testing.T) {
	conn := testutil.OpenDB(t)
	testutil.SeedPlan(t, conn, "pro", "Pro", "PRO", "100")
	testutil.SeedSubscription(t, conn, "a1", "pro", "active", nil)
	testutil.SeedCost(t, conn, "a1", "OpenAI", "LLM", "30", time.Now().Add(-time.Hour))

	svc := metrics.NewService(NewReader(conn), metrics.WithTracer(noop.NewTracerProvider().Tracer("test")))
	snap, errSnap := svc.Snapshot(context.Background())
	require.NoError(t, errSnap)
	assert.True(t, decimal.NewFromInt(70).Equal(snap.GrossMarginPct), "got %s", snap.GrossMarginPct)
	assert.Equal(t, 1, snap.ActiveAccountCount)
}
