package admin

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/verly-ai/founder-platform/internal/config"
	"github.com/verly-ai/founder-platform/internal/db"
	"github.com/verly-ai/founder-platform/internal/http/api/admin/handlers"
	"github.com/verly-ai/founder-platform/internal/metrics"
	"github.com/verly-ai/founder-platform/internal/models"
	"github.com/verly-ai/founder-platform/internal/security"
	"github.com/verly-ai/founder-platform/internal/session"
	"gorm.io/gorm"
)

// Options carries the collaborators the admin API needs.
type Options struct {
	Handles  *db.Handles
	JWT      config.JWTConfig
	Sessions session.Registry
	Metrics  *metrics.Service

	CostWindowDays        int // Fallback when the setting is unset.
	SnapshotRetentionDays int // Fallback when the setting is unset.
}

// RegisterAdminRoutes registers the health check and the founder admin API.
func RegisterAdminRoutes(r *gin.Engine, opts Options) {
	if r == nil || opts.Handles == nil || opts.Sessions == nil || opts.Metrics == nil {
		return
	}
	founderDB := opts.Handles.Founder
	mainDB := opts.Handles.Main

	healthHandler := handlers.NewHealthHandler(opts.Handles)
	r.GET("/healthz", healthHandler.Healthz)

	admin := r.Group("/v0/admin")

	authHandler := handlers.NewAuthHandler(founderDB, opts.JWT, opts.Sessions)
	admin.POST("/login", authHandler.Login)

	authed := admin.Group("")
	authed.Use(adminAuthMiddleware(founderDB, opts.JWT, opts.Sessions))
	authed.POST("/logout", authHandler.Logout)
	authed.GET("/me", authHandler.Me)

	authed = authed.Group("")
	authed.Use(adminRoleMiddleware())

	accountHandler := handlers.NewAccountHandler(mainDB)
	authed.GET("/accounts", accountHandler.List)
	authed.GET("/accounts/:id", accountHandler.Get)

	planHandler := handlers.NewPlanHandler(mainDB)
	authed.GET("/plans", planHandler.List)

	serviceRateHandler := handlers.NewServiceRateHandler(mainDB)
	authed.GET("/service-rates", serviceRateHandler.List)
	authed.POST("/service-rates", serviceRateHandler.Create)
	authed.PUT("/service-rates/:id", serviceRateHandler.Update)

	flagHandler := handlers.NewFeatureFlagHandler(founderDB, mainDB)
	authed.GET("/flags", flagHandler.List)
	authed.PUT("/flags/:id", flagHandler.Update)

	metricsHandler := handlers.NewMetricsHandler(opts.Metrics, founderDB)
	authed.GET("/metrics", metricsHandler.Overview)
	authed.GET("/metrics/costs", metricsHandler.Costs)
	authed.GET("/metrics/revenue", metricsHandler.Revenue)
	authed.GET("/metrics/snapshots", metricsHandler.Snapshots)

	dashboardHandler := handlers.NewDashboardHandler(opts.Metrics, founderDB, mainDB)
	authed.GET("/dashboard", dashboardHandler.Get)

	activityHandler := handlers.NewActivityHandler(mainDB)
	authed.GET("/activity", activityHandler.List)

	settingsHandler := handlers.NewSettingsHandler(founderDB, opts.CostWindowDays, opts.SnapshotRetentionDays)
	authed.GET("/settings", settingsHandler.Get)
	authed.PUT("/settings", settingsHandler.Update)
}

// adminAuthMiddleware validates the admin JWT, checks its session is still live and loads
// the admin into context.
func adminAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig, sessions session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			abortUnauthorized(c, "invalid authorization format")
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			abortUnauthorized(c, "empty token")
			return
		}

		claims, errJWT := security.ParseAdminToken(jwtCfg.Secret, token)
		if errJWT != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		ctx := c.Request.Context()
		sess, errSession := sessions.Get(ctx, claims.SessionID())
		if errSession != nil {
			if !errors.Is(errSession, session.ErrNotFound) {
				log.WithError(errSession).Warn("admin auth: load session")
			}
			abortUnauthorized(c, "session expired")
			return
		}
		if sess.AdminID != claims.AdminID {
			abortUnauthorized(c, "invalid token")
			return
		}

		var admin models.Admin
		if errFind := db.WithContext(ctx).First(&admin, claims.AdminID).Error; errFind != nil {
			abortUnauthorized(c, "admin not found")
			return
		}
		if !admin.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "admin disabled"})
			return
		}

		c.Set("adminID", admin.ID)
		c.Set("adminRole", admin.Role)
		c.Set("sessionID", sess.ID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": message})
}
