package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/verly-ai/founder-platform/internal/models"
	"gorm.io/gorm"
)

// Service and usage types accepted for service rates.
var (
	serviceTypes = map[string]struct{}{"CHATBOT": {}, "WHATSAPP": {}, "VOICE": {}}
	usageTypes   = map[string]struct{}{
		"TOKEN_PROMPT":                {},
		"TOKEN_COMPLETION":            {},
		"WHATSAPP_MESSAGE_OUTBOUND":   {},
		"WHATSAPP_CONVERSATION_START": {},
		"VOICE_MINUTE":                {},
	}
)

const defaultRateCurrency = "CREDITS"

// ServiceRateHandler manages the price per usage unit charged to accounts.
type ServiceRateHandler struct {
	db *gorm.DB // Main system database.
}

// NewServiceRateHandler constructs a ServiceRateHandler.
func NewServiceRateHandler(db *gorm.DB) *ServiceRateHandler {
	return &ServiceRateHandler{db: db}
}

type serviceRateItem struct {
	ID            string     `json:"id"`
	ServiceType   string     `json:"service_type"`
	UsageType     string     `json:"usage_type"`
	RatePerUnit   string     `json:"rate_per_unit"` // Exact decimal string.
	Currency      string     `json:"currency"`
	EffectiveFrom *time.Time `json:"effective_from"`
	IsActive      bool       `json:"is_active"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toServiceRateItem(rate models.ServiceRate) serviceRateItem {
	return serviceRateItem{
		ID:            rate.ID,
		ServiceType:   rate.ServiceType,
		UsageType:     rate.UsageType,
		RatePerUnit:   rate.RatePerUnit.String(),
		Currency:      rate.Currency,
		EffectiveFrom: rate.EffectiveFrom,
		IsActive:      rate.IsActive,
		UpdatedAt:     rate.UpdatedAt,
	}
}

// List returns active rates grouped by service type, newest effective date first.
func (h *ServiceRateHandler) List(c *gin.Context) {
	var rates []models.ServiceRate
	if errFind := h.db.WithContext(c.Request.Context()).
		Where("is_active = ?", true).
		Order("service_type ASC").
		Order("effective_from DESC").
		Find(&rates).Error; errFind != nil {
		log.WithError(errFind).Error("list service rates")
		respondError(c, http.StatusInternalServerError, "list service rates failed")
		return
	}
	items := make([]serviceRateItem, 0, len(rates))
	for _, rate := range rates {
		items = append(items, toServiceRateItem(rate))
	}
	respondData(c, http.StatusOK, items)
}

// createServiceRateRequest captures the payload for creating a service rate.
type createServiceRateRequest struct {
	ServiceType   string     `json:"service_type"`   // CHATBOT, WHATSAPP or VOICE.
	UsageType     string     `json:"usage_type"`     // Billing usage type.
	RatePerUnit   string     `json:"rate_per_unit"`  // Decimal string.
	Currency      string     `json:"currency"`       // Defaults to CREDITS.
	EffectiveFrom *time.Time `json:"effective_from"` // Defaults to now.
}

// Create inserts a rate and deactivates earlier rates for the same service and usage type.
func (h *ServiceRateHandler) Create(c *gin.Context) {
	var body createServiceRateRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		respondError(c, http.StatusBadRequest, "invalid json")
		return
	}

	serviceType := strings.ToUpper(strings.TrimSpace(body.ServiceType))
	if _, ok := serviceTypes[serviceType]; !ok {
		respondError(c, http.StatusBadRequest, "service_type must be CHATBOT, WHATSAPP or VOICE")
		return
	}
	usageType := strings.ToUpper(strings.TrimSpace(body.UsageType))
	if _, ok := usageTypes[usageType]; !ok {
		respondError(c, http.StatusBadRequest, "invalid usage_type")
		return
	}
	rate, okRate := parseRate(body.RatePerUnit)
	if !okRate {
		respondError(c, http.StatusBadRequest, "rate_per_unit must be a non-negative decimal")
		return
	}
	currency := strings.ToUpper(strings.TrimSpace(body.Currency))
	if currency == "" {
		currency = defaultRateCurrency
	}

	now := time.Now().UTC()
	effectiveFrom := now
	if body.EffectiveFrom != nil {
		effectiveFrom = body.EffectiveFrom.UTC()
	}
	created := models.ServiceRate{
		ServiceType:   serviceType,
		UsageType:     usageType,
		RatePerUnit:   rate,
		Currency:      currency,
		EffectiveFrom: &effectiveFrom,
		IsActive:      true,
	}

	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if errDeactivate := tx.Model(&models.ServiceRate{}).
			Where("service_type = ? AND usage_type = ? AND is_active = ?", serviceType, usageType, true).
			Updates(map[string]any{"is_active": false, "updated_at": now}).Error; errDeactivate != nil {
			return errDeactivate
		}
		return tx.Create(&created).Error
	})
	if errTx != nil {
		log.WithError(errTx).Error("create service rate")
		respondError(c, http.StatusInternalServerError, "create service rate failed")
		return
	}

	log.WithFields(log.Fields{
		"admin_id":     getAdminID(c),
		"service_type": serviceType,
		"usage_type":   usageType,
		"rate":         rate.String(),
	}).Info("service rate created")
	respondData(c, http.StatusCreated, toServiceRateItem(created))
}

// updateServiceRateRequest captures fields an update may change.
type updateServiceRateRequest struct {
	RatePerUnit *string `json:"rate_per_unit"`
	IsActive    *bool   `json:"is_active"`
}

// Update changes the rate value or active flag of an existing rate.
func (h *ServiceRateHandler) Update(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, http.StatusBadRequest, "invalid id")
		return
	}
	var body updateServiceRateRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		respondError(c, http.StatusBadRequest, "invalid json")
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if body.RatePerUnit != nil {
		rate, okRate := parseRate(*body.RatePerUnit)
		if !okRate {
			respondError(c, http.StatusBadRequest, "rate_per_unit must be a non-negative decimal")
			return
		}
		updates["rate_per_unit"] = rate
	}
	if body.IsActive != nil {
		updates["is_active"] = *body.IsActive
	}
	if len(updates) == 1 {
		respondError(c, http.StatusBadRequest, "nothing to update")
		return
	}

	ctx := c.Request.Context()
	var rate models.ServiceRate
	if errFind := h.db.WithContext(ctx).Where("id = ?", id).First(&rate).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "service rate not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "load service rate failed")
		return
	}
	if errUpdate := h.db.WithContext(ctx).Model(&rate).Updates(updates).Error; errUpdate != nil {
		log.WithError(errUpdate).WithField("id", id).Error("update service rate")
		respondError(c, http.StatusInternalServerError, "update service rate failed")
		return
	}
	if errReload := h.db.WithContext(ctx).Where("id = ?", id).First(&rate).Error; errReload != nil {
		respondError(c, http.StatusInternalServerError, "load service rate failed")
		return
	}
	respondData(c, http.StatusOK, toServiceRateItem(rate))
}

func parseRate(raw string) (decimal.Decimal, bool) {
	rate, errParse := decimal.NewFromString(strings.TrimSpace(raw))
	if errParse != nil || rate.IsNegative() {
		return decimal.Zero, false
	}
	return rate, true
}
