package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/verly-ai/founder-platform/internal/models"
	"gorm.io/gorm"
)

// Audit actions written by the main system.
const (
	AuditActionAccountCreated       = "ACCOUNT_CREATED"
	AuditActionSubscriptionCreated  = "SUBSCRIPTION_CREATED"
	AuditActionSubscriptionUpdated  = "SUBSCRIPTION_UPDATED"
	AuditActionSubscriptionCanceled = "SUBSCRIPTION_CANCELED"
)

const (
	defaultActivityLimit = 10
	maxActivityLimit     = 100
	unknownAccountName   = "Unknown"
)

// ActivityHandler lists recent audit log entries.
type ActivityHandler struct {
	main *gorm.DB
	now  func() time.Time
}

// NewActivityHandler constructs an ActivityHandler.
func NewActivityHandler(main *gorm.DB) *ActivityHandler {
	return &ActivityHandler{main: main, now: time.Now}
}

type activityItem struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`  // Human readable description.
	Account   string    `json:"account"` // Account name or Unknown.
	Time      string    `json:"time"`    // Relative time label.
	CreatedAt time.Time `json:"created_at"`
}

// List returns the newest audit entries.
func (h *ActivityHandler) List(c *gin.Context) {
	limit := parseLimitQuery(c, defaultActivityLimit, maxActivityLimit)
	items, errLoad := loadActivity(c.Request.Context(), h.main, limit, h.now())
	if errLoad != nil {
		log.WithError(errLoad).Error("load recent activity")
		respondError(c, http.StatusInternalServerError, "load activity failed")
		return
	}
	respondData(c, http.StatusOK, items)
}

func loadActivity(ctx context.Context, db *gorm.DB, limit int, now time.Time) ([]activityItem, error) {
	var logs []models.AuditLog
	if errFind := db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error; errFind != nil {
		return nil, errFind
	}

	accountIDsSet := make(map[string]struct{})
	for _, entry := range logs {
		if entry.AccountID != nil && *entry.AccountID != "" {
			accountIDsSet[*entry.AccountID] = struct{}{}
		}
	}
	accountNames := make(map[string]string, len(accountIDsSet))
	if len(accountIDsSet) > 0 {
		accountIDs := make([]string, 0, len(accountIDsSet))
		for id := range accountIDsSet {
			accountIDs = append(accountIDs, id)
		}
		var accounts []models.Account
		if errAccounts := db.WithContext(ctx).
			Model(&models.Account{}).
			Select("id", "name").
			Where("id IN ?", accountIDs).
			Find(&accounts).Error; errAccounts != nil {
			return nil, errAccounts
		}
		for _, a := range accounts {
			accountNames[a.ID] = a.Name
		}
	}

	items := make([]activityItem, 0, len(logs))
	for _, entry := range logs {
		accountName := unknownAccountName
		if entry.AccountID != nil {
			if name := strings.TrimSpace(accountNames[*entry.AccountID]); name != "" {
				accountName = name
			}
		}
		createdAt := now
		if entry.CreatedAt != nil {
			createdAt = *entry.CreatedAt
		}
		items = append(items, activityItem{
			ID:        entry.ID,
			Action:    describeAction(entry),
			Account:   accountName,
			Time:      formatTimeAgo(now, createdAt),
			CreatedAt: createdAt,
		})
	}
	return items, nil
}

// describeAction renders an audit entry for the activity feed. Unknown actions are shown as is.
func describeAction(entry models.AuditLog) string {
	var details struct {
		PlanName string `json:"planName"`
		FlagName string `json:"flagName"`
	}
	if len(entry.Details) > 0 {
		_ = json.Unmarshal(entry.Details, &details)
	}
	switch entry.Action {
	case AuditActionAccountCreated:
		return "New account created"
	case AuditActionSubscriptionCreated:
		return "Plan subscribed to " + orDefault(details.PlanName, "plan")
	case AuditActionSubscriptionUpdated:
		return "Plan upgraded to " + orDefault(details.PlanName, "plan")
	case AuditActionSubscriptionCanceled:
		return "Subscription canceled"
	case AuditActionFlagUpdated:
		return fmt.Sprintf("Feature flag %s updated", orDefault(details.FlagName, "feature"))
	default:
		return entry.Action
	}
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

// formatTimeAgo renders the elapsed time between then and now.
func formatTimeAgo(now, then time.Time) string {
	diff := now.Sub(then)
	minutes := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	days := int(diff / (24 * time.Hour))
	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return plural(minutes, "minute") + " ago"
	case hours < 24:
		return plural(hours, "hour") + " ago"
	default:
		return plural(days, "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
