package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/verly-ai/founder-platform/internal/metrics"
)

// MetricsUnavailableMessage is shown when the ledger cannot be read.
const MetricsUnavailableMessage = "metrics unavailable, try again"

// respondData writes a successful envelope.
func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// respondError writes a failed envelope.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// respondMetricsError maps an engine failure to a response. Unavailable data is never
// reported as zero metrics.
func respondMetricsError(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, metrics.ErrDataUnavailable) {
		log.WithError(err).Warn("metrics request failed: ledger unavailable")
		respondError(c, http.StatusServiceUnavailable, MetricsUnavailableMessage)
		return
	}
	log.WithError(err).Error("metrics request failed")
	respondError(c, http.StatusInternalServerError, "load metrics failed")
}

// getAdminID extracts the admin ID from gin context.
func getAdminID(c *gin.Context) uint64 {
	val, exists := c.Get("adminID")
	if !exists {
		return 0
	}
	id, _ := val.(uint64)
	return id
}

// parseDaysQuery reads a positive day count from the query string. A missing value
// returns fallback; an invalid value returns false.
func parseDaysQuery(c *gin.Context, key string, fallback, maxDays int) (int, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, true
	}
	days, errAtoi := strconv.Atoi(raw)
	if errAtoi != nil || days <= 0 || days > maxDays {
		return 0, false
	}
	return days, true
}

// parseLimitQuery reads a bounded page size.
func parseLimitQuery(c *gin.Context, fallback, maxLimit int) int {
	limit, errAtoi := strconv.Atoi(strings.TrimSpace(c.Query("limit")))
	if errAtoi != nil || limit <= 0 {
		return fallback
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// amount converts a money value for JSON output.
func amount(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// percent converts a share to a float rounded to two places.
func percent(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func trimmedPtr(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
