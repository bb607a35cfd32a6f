package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/verly-ai/founder-platform/internal/models"
	"gorm.io/gorm"
)

// PlanHandler lists subscription plans from the main datastore.
type PlanHandler struct {
	db *gorm.DB
}

// NewPlanHandler constructs a PlanHandler.
func NewPlanHandler(db *gorm.DB) *PlanHandler {
	return &PlanHandler{db: db}
}

type planItem struct {
	PlanID            string          `json:"plan_id"`
	PlanName          string          `json:"plan_name"`
	Tier              string          `json:"tier"`
	Description       string          `json:"description"`
	IsActive          bool            `json:"is_active"`
	IsPublic          bool            `json:"is_public"`
	DurationInDays    *int            `json:"duration_in_days"`
	PriceMonthly      float64         `json:"price_monthly"`
	PriceAnnually     float64         `json:"price_annually"`
	Currency          string          `json:"currency"`
	Entitlements      json.RawMessage `json:"entitlements,omitempty"`
	UsageBasedPricing json.RawMessage `json:"usage_based_pricing,omitempty"`
	SortOrder         int             `json:"sort_order"`
	CreatedAt         *time.Time      `json:"created_at"`
}

// List returns plans by sort order, newest first within the same order.
func (h *PlanHandler) List(c *gin.Context) {
	var plans []models.SubscriptionPlan
	if errFind := h.db.WithContext(c.Request.Context()).
		Order("sort_order ASC").
		Order("created_at DESC").
		Find(&plans).Error; errFind != nil {
		log.WithError(errFind).Error("list plans")
		respondError(c, http.StatusInternalServerError, "list plans failed")
		return
	}

	items := make([]planItem, 0, len(plans))
	for _, plan := range plans {
		items = append(items, planItem{
			PlanID:            plan.PlanID,
			PlanName:          plan.PlanName,
			Tier:              trimmedPtr(plan.TierType),
			Description:       trimmedPtr(plan.Description),
			IsActive:          plan.IsActive == nil || *plan.IsActive,
			IsPublic:          plan.IsPublic == nil || *plan.IsPublic,
			DurationInDays:    plan.DurationInDays,
			PriceMonthly:      amount(plan.PriceMonthly),
			PriceAnnually:     amount(plan.PriceAnnually),
			Currency:          trimmedPtr(plan.Currency),
			Entitlements:      json.RawMessage(plan.Entitlements),
			UsageBasedPricing: json.RawMessage(plan.UsageBasedPricing),
			SortOrder:         plan.SortOrder,
			CreatedAt:         plan.CreatedAt,
		})
	}
	respondData(c, http.StatusOK, items)
}

// parseCustomMonthlyPrice reads {"monthlyPrice": n} from a subscription's custom pricing.
func parseCustomMonthlyPrice(raw []byte) (decimal.Decimal, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, false
	}
	var custom struct {
		MonthlyPrice *decimal.Decimal `json:"monthlyPrice"`
	}
	if errUnmarshal := json.Unmarshal(raw, &custom); errUnmarshal != nil || custom.MonthlyPrice == nil {
		return decimal.Zero, false
	}
	return *custom.MonthlyPrice, true
}
