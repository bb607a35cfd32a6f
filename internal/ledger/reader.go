// Package ledger reads provider costs and active subscriptions from the main datastore and
// normalizes them into metrics records.
package ledger

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/verly-ai/founder-platform/internal/metrics"
	"github.com/verly-ai/founder-platform/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Source names reported in metrics.UnavailableError.
const (
	SourceCosts         = "credit_transactions"
	SourceSubscriptions = "subscriptions"
)

// Reader implements metrics.Reader over GORM.
type Reader struct {
	db      *gorm.DB
	tracer  trace.Tracer
	timeout time.Duration
}

// Option customizes a Reader.
type Option func(*Reader)

// WithTracer sets the tracer used for query spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Reader) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// WithQueryTimeout bounds each query. Zero leaves the caller's deadline alone.
func WithQueryTimeout(timeout time.Duration) Option {
	return func(r *Reader) { r.timeout = timeout }
}

// NewReader returns a Reader over the main datastore.
func NewReader(db *gorm.DB, opts ...Option) *Reader {
	r := &Reader{
		db:     db,
		tracer: otel.Tracer("github.com/verly-ai/founder-platform/internal/ledger"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ metrics.Reader = (*Reader)(nil)

type costRow struct {
	ProviderName *string
	ProviderType *string
	ProviderCost decimal.NullDecimal
	CreatedAt    *time.Time
}

// CostRecords returns every ledger entry carrying a provider cost inside w.
func (r *Reader) CostRecords(ctx context.Context, w metrics.Window) ([]metrics.CostRecord, error) {
	ctx, span := r.tracer.Start(ctx, "ledger.cost_records", trace.WithAttributes(
		attribute.String("window.from", w.From.Format(time.RFC3339)),
		attribute.String("window.to", w.To.Format(time.RFC3339)),
	))
	defer span.End()
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var rows []costRow
	errFind := r.db.WithContext(ctx).
		Model(&models.CreditTransaction{}).
		Select("provider_name", "provider_type", "provider_cost", "created_at").
		Where("provider_cost IS NOT NULL").
		Where("created_at >= ? AND created_at < ?", w.From, w.To).
		Scan(&rows).Error
	if errFind != nil {
		return nil, r.fail(span, SourceCosts, errFind)
	}

	out := make([]metrics.CostRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, normalizeCost(row))
	}
	span.SetAttributes(attribute.Int("rows", len(out)))
	return out, nil
}

type subscriptionRow struct {
	AccountID     string
	Status        string
	CustomPricing datatypes.JSON
	TierType      *string
	PlanName      *string
	PriceMonthly  decimal.NullDecimal
}

// ActiveSubscriptions returns active subscriptions joined with their plans. A subscription
// whose plan row is missing is still returned, keyed as Unknown.
func (r *Reader) ActiveSubscriptions(ctx context.Context) ([]metrics.SubscriptionRecord, error) {
	ctx, span := r.tracer.Start(ctx, "ledger.active_subscriptions")
	defer span.End()
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var rows []subscriptionRow
	errFind := r.db.WithContext(ctx).
		Table("subscriptions").
		Select("subscriptions.account_id, subscriptions.status, subscriptions.custom_pricing, " +
			"subscription_plans.tier_type, subscription_plans.plan_name, subscription_plans.price_monthly").
		Joins("LEFT JOIN subscription_plans ON subscription_plans.plan_id = subscriptions.plan_id").
		Where("subscriptions.status = ?", models.SubscriptionStatusActive).
		Order("subscriptions.account_id ASC").
		Scan(&rows).Error
	if errFind != nil {
		return nil, r.fail(span, SourceSubscriptions, errFind)
	}

	out := make([]metrics.SubscriptionRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, normalizeSubscription(row))
	}
	span.SetAttributes(attribute.Int("rows", len(out)))
	return out, nil
}

func (r *Reader) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Reader) fail(span trace.Span, source string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	log.WithError(err).WithField("source", source).Error("ledger: query failed")
	return metrics.Unavailable(source, err)
}

func normalizeCost(row costRow) metrics.CostRecord {
	rec := metrics.CostRecord{
		Provider:   metrics.UnknownKey,
		Category:   metrics.CategoryOther,
		CostAmount: decimal.Zero,
	}
	if row.ProviderName != nil {
		if name := strings.TrimSpace(*row.ProviderName); name != "" {
			rec.Provider = name
		}
	}
	if row.ProviderType != nil {
		rec.Category = metrics.ParseCategory(*row.ProviderType)
	}
	if row.ProviderCost.Valid {
		rec.CostAmount = row.ProviderCost.Decimal
	}
	if row.CreatedAt != nil {
		rec.OccurredAt = row.CreatedAt.UTC()
	}
	return rec
}

// customPricing is the override stored on a subscription.
type customPricing struct {
	MonthlyPrice *decimal.Decimal `json:"monthlyPrice"`
}

func normalizeSubscription(row subscriptionRow) metrics.SubscriptionRecord {
	rec := metrics.SubscriptionRecord{
		AccountID:    strings.TrimSpace(row.AccountID),
		Status:       metrics.Status(strings.ToLower(strings.TrimSpace(row.Status))),
		MonthlyPrice: decimal.Zero,
	}
	if row.TierType != nil {
		rec.Tier = metrics.ParseTier(*row.TierType)
	}
	if row.PlanName != nil {
		rec.PlanName = strings.TrimSpace(*row.PlanName)
	}
	if row.PriceMonthly.Valid {
		rec.MonthlyPrice = row.PriceMonthly.Decimal
	}
	if len(row.CustomPricing) > 0 && string(row.CustomPricing) != "null" {
		var custom customPricing
		if errUnmarshal := json.Unmarshal(row.CustomPricing, &custom); errUnmarshal != nil {
			log.WithError(errUnmarshal).WithField("account_id", rec.AccountID).Warn("ledger: ignoring unreadable custom pricing")
		} else if custom.MonthlyPrice != nil {
			rec.MonthlyPrice = *custom.MonthlyPrice
		}
	}
	return rec
}
