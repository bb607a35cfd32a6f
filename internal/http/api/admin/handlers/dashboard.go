package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/verly-ai/founder-platform/internal/metrics"
	"github.com/verly-ai/founder-platform/internal/snapshot"
	"gorm.io/gorm"
)

const (
	dashboardActivityLimit = 10
	dashboardTopPlans      = 5
)

// DashboardHandler serves the founder dashboard landing data.
type DashboardHandler struct {
	svc     *metrics.Service
	founder *gorm.DB // Stored snapshots for trends.
	main    *gorm.DB // Audit log for recent activity.
	now     func() time.Time
}

// NewDashboardHandler constructs a dashboard handler.
func NewDashboardHandler(svc *metrics.Service, founder, main *gorm.DB) *DashboardHandler {
	return &DashboardHandler{svc: svc, founder: founder, main: main, now: time.Now}
}

// trendResponse compares the live snapshot with the latest stored one.
type trendResponse struct {
	MRRChange      float64 `json:"mrr_change"`      // Percent.
	CostChange     float64 `json:"cost_change"`     // Percent.
	AccountsChange float64 `json:"accounts_change"` // Percent.
	BaselineDate   string  `json:"baseline_date"`   // Empty when no snapshot exists yet.
}

type topPlanItem struct {
	Plan     string  `json:"plan"`
	Accounts int     `json:"accounts"`
	Revenue  float64 `json:"revenue"`
}

// Get returns metrics, trends, recent activity and top plans in one payload.
func (h *DashboardHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	now := h.now()

	ov, errOverview := h.svc.Overview(ctx)
	if errOverview != nil {
		respondMetricsError(c, errOverview)
		return
	}

	trends := trendResponse{}
	baseline, errBaseline := snapshot.Baseline(ctx, h.founder, now)
	if errBaseline != nil {
		log.WithError(errBaseline).Warn("load trend baseline")
	}
	if baseline != nil {
		trends = trendResponse{
			MRRChange:      calcTrend(amount(baseline.MRR), amount(ov.Snapshot.MRR)),
			CostChange:     calcTrend(amount(baseline.TotalProviderCost), amount(ov.Snapshot.TotalProviderCost)),
			AccountsChange: calcTrend(float64(baseline.ActiveAccounts), float64(ov.Snapshot.ActiveAccountCount)),
			BaselineDate:   baseline.Date,
		}
	}

	activity, errActivity := loadActivity(ctx, h.main, dashboardActivityLimit, now)
	if errActivity != nil {
		log.WithError(errActivity).Warn("load dashboard activity")
		activity = []activityItem{}
	}

	plans := ov.RevenueByPlan.Groups
	if len(plans) > dashboardTopPlans {
		plans = plans[:dashboardTopPlans]
	}
	topPlans := make([]topPlanItem, 0, len(plans))
	for _, p := range plans {
		topPlans = append(topPlans, topPlanItem{Plan: p.Key, Accounts: p.Count, Revenue: amount(p.Total)})
	}

	respondData(c, http.StatusOK, gin.H{
		"metrics":           toSnapshotResponse(ov.Snapshot),
		"trends":            trends,
		"cost_breakdown":    toCostGroups(ov.CostProvider),
		"revenue_breakdown": toRevenueGroups(ov.RevenueByTier),
		"recent_activity":   activity,
		"top_plans":         topPlans,
	})
}

// calcTrend computes percentage change from a previous value.
func calcTrend(prev, current float64) float64 {
	if prev == 0 {
		if current > 0 {
			return 100.0
		}
		return 0.0
	}
	return (current - prev) / prev * 100
}
