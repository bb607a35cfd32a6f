package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	dbutil "github.com/verly-ai/founder-platform/internal/db"
	"github.com/verly-ai/founder-platform/internal/models"
	"gorm.io/gorm"
)

const (
	defaultAccountLimit = 100
	maxAccountLimit     = 500

	noSubscriptionStatus = "no_subscription"
	defaultPlanLabel     = "Free"
)

// AccountHandler serves read-only views of customer accounts from the main datastore.
type AccountHandler struct {
	db *gorm.DB // Main system database.
}

// NewAccountHandler constructs an AccountHandler.
func NewAccountHandler(db *gorm.DB) *AccountHandler {
	return &AccountHandler{db: db}
}

// accountItem is one row of the accounts table.
type accountItem struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Plan      string     `json:"plan"`
	Status    string     `json:"status"`
	MRR       float64    `json:"mrr"`      // Plan price when the subscription is active, else 0.
	Chatbots  int64      `json:"chatbots"` // Chatbots owned by the account.
	Users     int64      `json:"users"`    // Account members.
	CreatedAt *time.Time `json:"created_at"`
}

// accountSubscription is the subscription row shown for an account.
type accountSubscription struct {
	AccountID     string
	Status        string
	PlanID        string
	PlanName      *string
	TierType      *string
	PriceMonthly  decimal.NullDecimal
	CustomPricing []byte
	CreatedAt     *time.Time
}

// List returns accounts newest first with their plan, status and usage counts.
func (h *AccountHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	q := h.db.WithContext(ctx).Model(&models.Account{})
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+search+"%")
		q = q.Where(
			dbutil.CaseInsensitiveLikeExpr(h.db, "name")+" OR "+dbutil.CaseInsensitiveLikeExpr(h.db, "billing_email"),
			pattern, pattern,
		)
	}

	var accounts []models.Account
	if errFind := q.Order("created_at DESC").Limit(parseLimitQuery(c, defaultAccountLimit, maxAccountLimit)).Find(&accounts).Error; errFind != nil {
		log.WithError(errFind).Error("list accounts")
		respondError(c, http.StatusInternalServerError, "list accounts failed")
		return
	}
	if len(accounts) == 0 {
		respondData(c, http.StatusOK, []accountItem{})
		return
	}

	ids := make([]string, 0, len(accounts))
	for _, account := range accounts {
		ids = append(ids, account.ID)
	}
	subs, errSubs := h.loadSubscriptions(c, ids)
	if errSubs != nil {
		log.WithError(errSubs).Error("list accounts: load subscriptions")
		respondError(c, http.StatusInternalServerError, "list accounts failed")
		return
	}
	chatbots, errBots := h.countByAccount(c, &models.ChatBot{}, ids)
	if errBots != nil {
		log.WithError(errBots).Error("list accounts: count chatbots")
		respondError(c, http.StatusInternalServerError, "list accounts failed")
		return
	}
	members, errMembers := h.countByAccount(c, &models.AccountMember{}, ids)
	if errMembers != nil {
		log.WithError(errMembers).Error("list accounts: count members")
		respondError(c, http.StatusInternalServerError, "list accounts failed")
		return
	}

	items := make([]accountItem, 0, len(accounts))
	for _, account := range accounts {
		item := accountItem{
			ID:        account.ID,
			Name:      account.Name,
			Email:     "N/A",
			Plan:      defaultPlanLabel,
			Status:    noSubscriptionStatus,
			Chatbots:  chatbots[account.ID],
			Users:     members[account.ID],
			CreatedAt: account.CreatedAt,
		}
		if email := trimmedPtr(account.BillingEmail); email != "" {
			item.Email = email
		}
		if sub, ok := subs[account.ID]; ok {
			if name := trimmedPtr(sub.PlanName); name != "" {
				item.Plan = name
			}
			item.Status = sub.Status
			if sub.Status == models.SubscriptionStatusActive {
				item.MRR = amount(sub.monthlyPrice())
			}
		}
		items = append(items, item)
	}
	respondData(c, http.StatusOK, items)
}

// accountDetail is the account drill-down payload.
type accountDetail struct {
	accountItem
	PlanID        string   `json:"plan_id,omitempty"`
	Tier          string   `json:"tier,omitempty"`
	WalletBalance *float64 `json:"wallet_balance"`
	Currency      string   `json:"currency,omitempty"`
}

// Get returns one account with its subscription, wallet and counts.
func (h *AccountHandler) Get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, http.StatusBadRequest, "invalid id")
		return
	}

	ctx := c.Request.Context()
	var account models.Account
	if errFind := h.db.WithContext(ctx).Where("id = ?", id).First(&account).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "account not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "load account failed")
		return
	}

	ids := []string{account.ID}
	subs, errSubs := h.loadSubscriptions(c, ids)
	chatbots, errBots := h.countByAccount(c, &models.ChatBot{}, ids)
	members, errMembers := h.countByAccount(c, &models.AccountMember{}, ids)
	if errJoined := errors.Join(errSubs, errBots, errMembers); errJoined != nil {
		log.WithError(errJoined).WithField("account_id", account.ID).Error("load account details")
		respondError(c, http.StatusInternalServerError, "load account failed")
		return
	}

	detail := accountDetail{accountItem: accountItem{
		ID:        account.ID,
		Name:      account.Name,
		Email:     "N/A",
		Plan:      defaultPlanLabel,
		Status:    noSubscriptionStatus,
		Chatbots:  chatbots[account.ID],
		Users:     members[account.ID],
		CreatedAt: account.CreatedAt,
	}}
	if email := trimmedPtr(account.BillingEmail); email != "" {
		detail.Email = email
	}
	if sub, ok := subs[account.ID]; ok {
		detail.PlanID = sub.PlanID
		detail.Tier = trimmedPtr(sub.TierType)
		if name := trimmedPtr(sub.PlanName); name != "" {
			detail.Plan = name
		}
		detail.Status = sub.Status
		if sub.Status == models.SubscriptionStatusActive {
			detail.MRR = amount(sub.monthlyPrice())
		}
	}

	var wallet models.AccountWallet
	errWallet := h.db.WithContext(ctx).Where("account_id = ?", account.ID).First(&wallet).Error
	switch {
	case errWallet == nil:
		balance := amount(wallet.Balance)
		detail.WalletBalance = &balance
		detail.Currency = wallet.Currency
	case errors.Is(errWallet, gorm.ErrRecordNotFound):
	default:
		log.WithError(errWallet).WithField("account_id", account.ID).Warn("load account wallet")
	}

	respondData(c, http.StatusOK, detail)
}

// loadSubscriptions returns the subscription to display per account: the active one when
// present, otherwise the most recent.
func (h *AccountHandler) loadSubscriptions(c *gin.Context, accountIDs []string) (map[string]accountSubscription, error) {
	var rows []accountSubscription
	errFind := h.db.WithContext(c.Request.Context()).
		Table("subscriptions").
		Select("subscriptions.account_id, subscriptions.status, subscriptions.plan_id, subscriptions.custom_pricing, subscriptions.created_at, " +
			"subscription_plans.plan_name, subscription_plans.tier_type, subscription_plans.price_monthly").
		Joins("LEFT JOIN subscription_plans ON subscription_plans.plan_id = subscriptions.plan_id").
		Where("subscriptions.account_id IN ?", accountIDs).
		Order("subscriptions.created_at DESC").
		Scan(&rows).Error
	if errFind != nil {
		return nil, errFind
	}
	out := make(map[string]accountSubscription, len(rows))
	for _, row := range rows {
		current, exists := out[row.AccountID]
		if !exists || (current.Status != models.SubscriptionStatusActive && row.Status == models.SubscriptionStatusActive) {
			out[row.AccountID] = row
		}
	}
	return out, nil
}

func (h *AccountHandler) countByAccount(c *gin.Context, model any, accountIDs []string) (map[string]int64, error) {
	var rows []struct {
		AccountID string
		Total     int64
	}
	errCount := h.db.WithContext(c.Request.Context()).
		Model(model).
		Select("account_id, COUNT(*) AS total").
		Where("account_id IN ?", accountIDs).
		Group("account_id").
		Scan(&rows).Error
	if errCount != nil {
		return nil, errCount
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.AccountID] = row.Total
	}
	return out, nil
}

func (s accountSubscription) monthlyPrice() decimal.Decimal {
	price := decimal.Zero
	if s.PriceMonthly.Valid {
		price = s.PriceMonthly.Decimal
	}
	if custom, ok := parseCustomMonthlyPrice(s.CustomPricing); ok {
		price = custom
	}
	return price
}
