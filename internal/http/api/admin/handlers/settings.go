package handlers

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/verly-ai/founder-platform/internal/settings"
	"gorm.io/gorm"
)

const maxPlatformNameLength = 100

// SettingsHandler reads and updates DB-backed runtime settings.
type SettingsHandler struct {
	db               *gorm.DB
	defaultWindow    int // Cost window when unset.
	defaultRetention int // Snapshot retention when unset.
}

// NewSettingsHandler constructs a SettingsHandler.
func NewSettingsHandler(db *gorm.DB, defaultWindow, defaultRetention int) *SettingsHandler {
	return &SettingsHandler{db: db, defaultWindow: defaultWindow, defaultRetention: defaultRetention}
}

type settingsResponse struct {
	PlatformName          string `json:"platform_name"`
	SupportEmail          string `json:"support_email"`
	CostWindowDays        int    `json:"cost_window_days"`
	SnapshotRetentionDays int    `json:"snapshot_retention_days"`

	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (h *SettingsHandler) current() settingsResponse {
	resp := settingsResponse{
		PlatformName:          settings.PlatformName(),
		SupportEmail:          settings.SupportEmail(),
		CostWindowDays:        settings.CostWindowDays(h.defaultWindow),
		SnapshotRetentionDays: settings.SnapshotRetentionDays(h.defaultRetention),
	}
	if updated := settings.UpdatedAt(); !updated.IsZero() {
		resp.UpdatedAt = &updated
	}
	return resp
}

// Get returns the effective settings.
func (h *SettingsHandler) Get(c *gin.Context) {
	respondData(c, http.StatusOK, h.current())
}

type updateSettingsRequest struct {
	PlatformName          *string `json:"platform_name"`
	SupportEmail          *string `json:"support_email"`
	CostWindowDays        *int    `json:"cost_window_days"`
	SnapshotRetentionDays *int    `json:"snapshot_retention_days"`
}

// Update validates and stores the provided settings. Omitted fields keep their value.
func (h *SettingsHandler) Update(c *gin.Context) {
	var body updateSettingsRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		respondError(c, http.StatusBadRequest, "invalid request")
		return
	}

	values := make(map[string]json.RawMessage)
	if body.PlatformName != nil {
		name := strings.TrimSpace(*body.PlatformName)
		if name == "" || len(name) > maxPlatformNameLength {
			respondError(c, http.StatusBadRequest, "invalid platform_name")
			return
		}
		values[settings.PlatformNameKey] = mustJSON(name)
	}
	if body.SupportEmail != nil {
		email := strings.TrimSpace(*body.SupportEmail)
		if email != "" {
			if _, errParse := mail.ParseAddress(email); errParse != nil {
				respondError(c, http.StatusBadRequest, "invalid support_email")
				return
			}
		}
		values[settings.SupportEmailKey] = mustJSON(email)
	}
	if body.CostWindowDays != nil {
		if *body.CostWindowDays <= 0 || *body.CostWindowDays > settings.MaxCostWindowDays {
			respondError(c, http.StatusBadRequest, "invalid cost_window_days")
			return
		}
		values[settings.CostWindowDaysKey] = mustJSON(*body.CostWindowDays)
	}
	if body.SnapshotRetentionDays != nil {
		if *body.SnapshotRetentionDays < 0 {
			respondError(c, http.StatusBadRequest, "invalid snapshot_retention_days")
			return
		}
		values[settings.SnapshotRetentionDaysKey] = mustJSON(*body.SnapshotRetentionDays)
	}
	if len(values) == 0 {
		respondError(c, http.StatusBadRequest, "no settings provided")
		return
	}

	if errSave := settings.Save(c.Request.Context(), h.db, getAdminID(c), values); errSave != nil {
		log.WithError(errSave).Error("save settings")
		respondError(c, http.StatusInternalServerError, "save settings failed")
		return
	}
	log.WithField("admin_id", getAdminID(c)).Info("settings updated")
	respondData(c, http.StatusOK, h.current())
}

func mustJSON(v any) json.RawMessage {
	raw, _ := json.Marshal(v)
	return raw
}
