package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/verly-ai/founder-platform/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditActionFlagUpdated is written to the audit log whenever a flag changes.
const AuditActionFlagUpdated = "FEATURE_FLAG_UPDATED"

// FeatureFlagHandler manages founder-owned feature flags.
type FeatureFlagHandler struct {
	founder *gorm.DB // Flags live here.
	main    *gorm.DB // Audit entries are written here.
}

// NewFeatureFlagHandler constructs a FeatureFlagHandler.
func NewFeatureFlagHandler(founder, main *gorm.DB) *FeatureFlagHandler {
	return &FeatureFlagHandler{founder: founder, main: main}
}

type flagItem struct {
	ID          string          `json:"id"`
	Key         string          `json:"key"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Strategy    string          `json:"strategy"`
	Value       json.RawMessage `json:"value"`
	Rules       json.RawMessage `json:"rules,omitempty"`
	DependsOn   json.RawMessage `json:"depends_on,omitempty"`
	IsEnabled   bool            `json:"is_enabled"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toFlagItem(flag models.FeatureFlag) flagItem {
	value := json.RawMessage(flag.Value)
	if len(value) == 0 {
		value = json.RawMessage("{}")
	}
	return flagItem{
		ID:          flag.ID,
		Key:         flag.Key,
		Name:        flag.Name,
		Description: flag.Description,
		Strategy:    string(flag.Strategy),
		Value:       value,
		Rules:       json.RawMessage(flag.Rules),
		DependsOn:   json.RawMessage(flag.DependsOn),
		IsEnabled:   flag.IsEnabled,
		CreatedAt:   flag.CreatedAt,
		UpdatedAt:   flag.UpdatedAt,
	}
}

// List returns every flag, newest first.
func (h *FeatureFlagHandler) List(c *gin.Context) {
	var flags []models.FeatureFlag
	if errFind := h.founder.WithContext(c.Request.Context()).Order("created_at DESC").Find(&flags).Error; errFind != nil {
		log.WithError(errFind).Error("list feature flags")
		respondError(c, http.StatusInternalServerError, "list feature flags failed")
		return
	}
	items := make([]flagItem, 0, len(flags))
	for _, flag := range flags {
		items = append(items, toFlagItem(flag))
	}
	respondData(c, http.StatusOK, items)
}

// updateFlagRequest captures the fields an operator may change.
type updateFlagRequest struct {
	IsEnabled *bool           `json:"is_enabled"`
	Value     json.RawMessage `json:"value"`
	Strategy  *string         `json:"strategy"`
}

// Update toggles a flag or changes its strategy and value, then records an audit entry.
func (h *FeatureFlagHandler) Update(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, http.StatusBadRequest, "invalid id")
		return
	}
	var body updateFlagRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		respondError(c, http.StatusBadRequest, "invalid json")
		return
	}

	now := time.Now().UTC()
	updates := map[string]any{"updated_at": now}
	changed := make([]string, 0, 3)
	if body.IsEnabled != nil {
		updates["is_enabled"] = *body.IsEnabled
		changed = append(changed, "is_enabled")
	}
	if len(body.Value) > 0 && string(body.Value) != "null" {
		if !json.Valid(body.Value) {
			respondError(c, http.StatusBadRequest, "value must be valid json")
			return
		}
		updates["value"] = datatypes.JSON(body.Value)
		changed = append(changed, "value")
	}
	if body.Strategy != nil {
		strategy := models.FlagStrategy(strings.ToLower(strings.TrimSpace(*body.Strategy)))
		if !strategy.Valid() {
			respondError(c, http.StatusBadRequest, "strategy must be one of global, percentage, targeted, ab_test, time_based")
			return
		}
		updates["strategy"] = strategy
		changed = append(changed, "strategy")
	}
	if len(changed) == 0 {
		respondError(c, http.StatusBadRequest, "nothing to update")
		return
	}

	ctx := c.Request.Context()
	var flag models.FeatureFlag
	if errFind := h.founder.WithContext(ctx).Where("id = ?", id).First(&flag).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "feature flag not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "load feature flag failed")
		return
	}
	if errUpdate := h.founder.WithContext(ctx).Model(&flag).Updates(updates).Error; errUpdate != nil {
		log.WithError(errUpdate).WithField("flag", flag.Key).Error("update feature flag")
		respondError(c, http.StatusInternalServerError, "update feature flag failed")
		return
	}
	if errReload := h.founder.WithContext(ctx).Where("id = ?", id).First(&flag).Error; errReload != nil {
		respondError(c, http.StatusInternalServerError, "load feature flag failed")
		return
	}

	h.audit(c, flag, changed)
	respondData(c, http.StatusOK, toFlagItem(flag))
}

// audit records the change. The acting admin is kept in details since admins are not
// main-system users. A failed write is logged; the flag update already happened.
func (h *FeatureFlagHandler) audit(c *gin.Context, flag models.FeatureFlag, changed []string) {
	details, errMarshal := json.Marshal(map[string]any{
		"flagName":  flag.Name,
		"flagKey":   flag.Key,
		"isEnabled": flag.IsEnabled,
		"strategy":  flag.Strategy,
		"changed":   changed,
		"adminId":   getAdminID(c),
	})
	if errMarshal != nil {
		return
	}
	resourceType := "feature_flag"
	resourceID := flag.ID
	now := time.Now().UTC()
	entry := models.AuditLog{
		Action:       AuditActionFlagUpdated,
		ResourceType: &resourceType,
		ResourceID:   &resourceID,
		Details:      datatypes.JSON(details),
		CreatedAt:    &now,
	}
	if errCreate := h.main.WithContext(c.Request.Context()).Create(&entry).Error; errCreate != nil {
		log.WithError(errCreate).WithField("flag", flag.Key).Warn("write feature flag audit entry")
	}
}
