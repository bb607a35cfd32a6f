package metrics

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Reader reads normalized ledger records.
type Reader interface {
	// CostRecords returns provider costs recorded inside w. Zero rows is not an error.
	CostRecords(ctx context.Context, w Window) ([]CostRecord, error)
	// ActiveSubscriptions returns the subscriptions currently in the active status.
	ActiveSubscriptions(ctx context.Context) ([]SubscriptionRecord, error)
}

// Overview is everything the dashboard needs from one pair of ledger reads.
type Overview struct {
	Snapshot      Snapshot
	Window        Window
	CostProvider  Breakdown
	CostCategory  Breakdown
	RevenueByTier Breakdown
	RevenueByPlan Breakdown
}

// CostReport is the cost side of the dashboard for one window.
type CostReport struct {
	Window     Window
	ByProvider Breakdown
	ByCategory Breakdown
}

// RevenueReport is the revenue side of the dashboard.
type RevenueReport struct {
	Totals Snapshot // Revenue totals only; cost fields are zero.
	ByTier Breakdown
	ByPlan Breakdown
}

// Service runs the aggregations over a Reader. It holds no per-request state and is safe
// for concurrent use.
type Service struct {
	reader     Reader
	tracer     trace.Tracer
	now        func() time.Time
	windowDays func() int
}

// Option customizes a Service.
type Option func(*Service)

// WithTracer sets the tracer used for spans around ledger reads.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCostWindow sets the provider of the default cost window length in days.
// It is consulted per request so runtime settings take effect without a restart.
func WithCostWindow(days func() int) Option {
	return func(s *Service) {
		if days != nil {
			s.windowDays = days
		}
	}
}

// NewService constructs a Service reading from reader.
func NewService(reader Reader, opts ...Option) *Service {
	s := &Service{
		reader:     reader,
		tracer:     otel.Tracer("github.com/verly-ai/founder-platform/internal/metrics"),
		now:        time.Now,
		windowDays: func() int { return 30 },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultWindow returns the trailing cost window ending now.
func (s *Service) DefaultWindow() Window {
	return TrailingWindow(s.now().UTC(), s.windowDays())
}

// Snapshot composes the headline metrics over the default cost window.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "metrics.snapshot")
	defer span.End()

	subs, costs, errFetch := s.fetch(ctx, s.DefaultWindow())
	if errFetch != nil {
		recordSpanError(span, errFetch)
		return Snapshot{}, errFetch
	}
	snap := Compose(subs, costs)
	logSkipped("snapshot", snap.SkippedRecords)
	return snap, nil
}

// Overview reads costs and subscriptions concurrently and derives every dashboard aggregate
// from that single read.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	ctx, span := s.tracer.Start(ctx, "metrics.overview")
	defer span.End()

	window := s.DefaultWindow()
	subs, costs, errFetch := s.fetch(ctx, window)
	if errFetch != nil {
		recordSpanError(span, errFetch)
		return Overview{}, errFetch
	}

	out := Overview{
		Snapshot:      Compose(subs, costs),
		Window:        window,
		CostProvider:  CostByProvider(costs),
		CostCategory:  CostByCategory(costs),
		RevenueByTier: RevenueByTier(subs),
		RevenueByPlan: RevenueByPlan(subs),
	}
	span.SetAttributes(
		attribute.Int("metrics.cost_records", len(costs)),
		attribute.Int("metrics.subscriptions", len(subs)),
		attribute.Int("metrics.skipped", out.Snapshot.SkippedRecords),
	)
	logSkipped("overview", out.Snapshot.SkippedRecords)
	return out, nil
}

// Costs groups provider costs over the trailing days days. Non-positive days uses the default window.
func (s *Service) Costs(ctx context.Context, days int) (CostReport, error) {
	ctx, span := s.tracer.Start(ctx, "metrics.costs")
	defer span.End()

	window := s.DefaultWindow()
	if days > 0 {
		window = TrailingWindow(s.now().UTC(), days)
	}
	costs, errRead := s.reader.CostRecords(ctx, window)
	if errRead != nil {
		recordSpanError(span, errRead)
		return CostReport{}, errRead
	}
	return CostReport{
		Window:     window,
		ByProvider: CostByProvider(costs),
		ByCategory: CostByCategory(costs),
	}, nil
}

// Revenue groups active subscriptions by tier and by plan.
func (s *Service) Revenue(ctx context.Context) (RevenueReport, error) {
	ctx, span := s.tracer.Start(ctx, "metrics.revenue")
	defer span.End()

	subs, errRead := s.reader.ActiveSubscriptions(ctx)
	if errRead != nil {
		recordSpanError(span, errRead)
		return RevenueReport{}, errRead
	}
	report := RevenueReport{
		Totals: Compose(subs, nil),
		ByTier: RevenueByTier(subs),
		ByPlan: RevenueByPlan(subs),
	}
	logSkipped("revenue", report.ByTier.Skipped)
	return report, nil
}

// TopPlans returns up to limit plans ordered by distinct active accounts.
func (s *Service) TopPlans(ctx context.Context, limit int) ([]Group, error) {
	report, errRevenue := s.Revenue(ctx)
	if errRevenue != nil {
		return nil, errRevenue
	}
	plans := report.ByPlan.Groups
	if limit > 0 && len(plans) > limit {
		plans = plans[:limit]
	}
	return plans, nil
}

// fetch issues both ledger reads concurrently and waits for both.
func (s *Service) fetch(ctx context.Context, window Window) ([]SubscriptionRecord, []CostRecord, error) {
	var (
		subs  []SubscriptionRecord
		costs []CostRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var errRead error
		subs, errRead = s.reader.ActiveSubscriptions(gctx)
		return errRead
	})
	g.Go(func() error {
		var errRead error
		costs, errRead = s.reader.CostRecords(gctx, window)
		return errRead
	})
	if errWait := g.Wait(); errWait != nil {
		return nil, nil, errWait
	}
	return subs, costs, nil
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func logSkipped(operation string, skipped int) {
	if skipped == 0 {
		return
	}
	log.WithFields(log.Fields{
		"operation": operation,
		"skipped":   skipped,
	}).Warn("metrics: skipped malformed subscription records")
}
