package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/verly-ai/founder-platform/internal/metrics"
	"github.com/verly-ai/founder-platform/internal/settings"
	"github.com/verly-ai/founder-platform/internal/snapshot"
	"gorm.io/gorm"
)

const (
	defaultHistoryDays = 30
	maxHistoryDays     = 366
)

// MetricsHandler serves the derived business metrics.
type MetricsHandler struct {
	svc     *metrics.Service
	founder *gorm.DB // Stored daily snapshots.
	now     func() time.Time
}

// NewMetricsHandler constructs a MetricsHandler.
func NewMetricsHandler(svc *metrics.Service, founder *gorm.DB) *MetricsHandler {
	return &MetricsHandler{svc: svc, founder: founder, now: time.Now}
}

// snapshotResponse is the JSON form of metrics.Snapshot.
type snapshotResponse struct {
	MRR               float64 `json:"mrr"`
	ARR               float64 `json:"arr"`
	ActiveAccounts    int     `json:"active_accounts"`
	TotalProviderCost float64 `json:"total_provider_cost"`
	GrossMargin       float64 `json:"gross_margin"` // Percentage.
	SkippedRecords    int     `json:"skipped_records"`
}

func toSnapshotResponse(s metrics.Snapshot) snapshotResponse {
	return snapshotResponse{
		MRR:               amount(s.MRR),
		ARR:               amount(s.ARR),
		ActiveAccounts:    s.ActiveAccountCount,
		TotalProviderCost: amount(s.TotalProviderCost),
		GrossMargin:       percent(s.GrossMarginPct),
		SkippedRecords:    s.SkippedRecords,
	}
}

type costGroupResponse struct {
	Key        string  `json:"key"`
	TotalCost  float64 `json:"total_cost"`
	Percentage float64 `json:"percentage"`
	Count      int     `json:"count"` // Ledger entries.
}

type revenueGroupResponse struct {
	Key        string  `json:"key"`
	Revenue    float64 `json:"revenue"`
	Percentage float64 `json:"percentage"`
	Accounts   int     `json:"accounts"` // Distinct accounts.
}

type windowResponse struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
	Days int       `json:"days"`
}

func toWindowResponse(w metrics.Window) windowResponse {
	return windowResponse{From: w.From, To: w.To, Days: int(w.To.Sub(w.From).Hours() / 24)}
}

func toCostGroups(b metrics.Breakdown) []costGroupResponse {
	out := make([]costGroupResponse, 0, len(b.Groups))
	for _, g := range b.Groups {
		out = append(out, costGroupResponse{
			Key:        g.Key,
			TotalCost:  amount(g.Total),
			Percentage: percent(g.Percentage),
			Count:      g.Count,
		})
	}
	return out
}

func toRevenueGroups(b metrics.Breakdown) []revenueGroupResponse {
	out := make([]revenueGroupResponse, 0, len(b.Groups))
	for _, g := range b.Groups {
		out = append(out, revenueGroupResponse{
			Key:        g.Key,
			Revenue:    amount(g.Total),
			Percentage: percent(g.Percentage),
			Accounts:   g.Count,
		})
	}
	return out
}

// Overview returns the snapshot together with the cost and revenue breakdowns.
func (h *MetricsHandler) Overview(c *gin.Context) {
	ov, errOverview := h.svc.Overview(c.Request.Context())
	if errOverview != nil {
		respondMetricsError(c, errOverview)
		return
	}
	respondData(c, http.StatusOK, gin.H{
		"metrics":           toSnapshotResponse(ov.Snapshot),
		"window":            toWindowResponse(ov.Window),
		"cost_breakdown":    toCostGroups(ov.CostProvider),
		"cost_by_category":  toCostGroups(ov.CostCategory),
		"revenue_breakdown": toRevenueGroups(ov.RevenueByTier),
	})
}

// Costs returns provider costs grouped by provider and by category.
func (h *MetricsHandler) Costs(c *gin.Context) {
	days, okDays := parseDaysQuery(c, "days", 0, settings.MaxCostWindowDays)
	if !okDays {
		respondError(c, http.StatusBadRequest, "invalid days")
		return
	}
	report, errCosts := h.svc.Costs(c.Request.Context(), days)
	if errCosts != nil {
		respondMetricsError(c, errCosts)
		return
	}
	respondData(c, http.StatusOK, gin.H{
		"window":      toWindowResponse(report.Window),
		"total_cost":  amount(report.ByProvider.Total),
		"by_provider": toCostGroups(report.ByProvider),
		"by_category": toCostGroups(report.ByCategory),
	})
}

// Revenue returns recurring revenue grouped by tier and by plan.
func (h *MetricsHandler) Revenue(c *gin.Context) {
	report, errRevenue := h.svc.Revenue(c.Request.Context())
	if errRevenue != nil {
		respondMetricsError(c, errRevenue)
		return
	}
	respondData(c, http.StatusOK, gin.H{
		"mrr":             amount(report.Totals.MRR),
		"arr":             amount(report.Totals.ARR),
		"active_accounts": report.Totals.ActiveAccountCount,
		"skipped_records": report.ByTier.Skipped,
		"by_tier":         toRevenueGroups(report.ByTier),
		"by_plan":         toRevenueGroups(report.ByPlan),
	})
}

type historyPoint struct {
	Date              string  `json:"date"`
	MRR               float64 `json:"mrr"`
	ARR               float64 `json:"arr"`
	TotalProviderCost float64 `json:"total_provider_cost"`
	GrossMargin       float64 `json:"gross_margin"`
	ActiveAccounts    int64   `json:"active_accounts"`
	NewAccounts       int64   `json:"new_accounts"`
	ActiveChatbots    int64   `json:"active_chatbots"`
}

// Snapshots returns stored daily snapshots, oldest first.
func (h *MetricsHandler) Snapshots(c *gin.Context) {
	days, okDays := parseDaysQuery(c, "days", defaultHistoryDays, maxHistoryDays)
	if !okDays {
		respondError(c, http.StatusBadRequest, "invalid days")
		return
	}
	rows, errHistory := snapshot.History(c.Request.Context(), h.founder, h.now(), days)
	if errHistory != nil {
		log.WithError(errHistory).Error("load metrics history")
		respondError(c, http.StatusInternalServerError, "load metrics history failed")
		return
	}
	points := make([]historyPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, historyPoint{
			Date:              row.Date,
			MRR:               amount(row.MRR),
			ARR:               amount(row.ARR),
			TotalProviderCost: amount(row.TotalProviderCost),
			GrossMargin:       amount(row.GrossMargin),
			ActiveAccounts:    row.ActiveAccounts,
			NewAccounts:       row.NewAccounts,
			ActiveChatbots:    row.ActiveChatbots,
		})
	}
	respondData(c, http.StatusOK, points)
}
