package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/verly-ai/founder-platform/internal/config"
	"github.com/verly-ai/founder-platform/internal/models"
	"github.com/verly-ai/founder-platform/internal/security"
	"github.com/verly-ai/founder-platform/internal/session"
	"gorm.io/gorm"
)

// AuthHandler handles admin authentication endpoints.
type AuthHandler struct {
	db       *gorm.DB
	jwtCfg   config.JWTConfig
	sessions session.Registry
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig, sessions session.Registry) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg, sessions: sessions}
}

// loginRequest defines the request body for admin login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// adminResponse is the public view of an admin.
type adminResponse struct {
	ID          uint64     `json:"id"`
	Username    string     `json:"username"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func toAdminResponse(admin models.Admin) adminResponse {
	return adminResponse{
		ID:          admin.ID,
		Username:    admin.Username,
		Name:        admin.Name,
		Role:        admin.Role,
		LastLoginAt: admin.LastLoginAt,
	}
}

// Login authenticates an admin, opens a session and issues a JWT bound to it.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		respondError(c, http.StatusBadRequest, "invalid json")
		return
	}

	username := strings.TrimSpace(body.Username)
	password := strings.TrimSpace(body.Password)
	if username == "" || password == "" {
		respondError(c, http.StatusBadRequest, "username and password are required")
		return
	}

	ctx := c.Request.Context()
	var admin models.Admin
	if errFind := h.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error; errFind != nil {
		if !errors.Is(errFind, gorm.ErrRecordNotFound) {
			log.WithError(errFind).Error("admin login: load admin")
		}
		respondError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !security.CheckPassword(admin.Password, password) {
		respondError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !admin.Active {
		respondError(c, http.StatusForbidden, "admin account is disabled")
		return
	}

	sess := session.New(admin.ID, admin.Username, admin.Role, h.jwtCfg.Expiry)
	if errCreate := h.sessions.Create(ctx, sess); errCreate != nil {
		log.WithError(errCreate).Error("admin login: create session")
		respondError(c, http.StatusInternalServerError, "create session failed")
		return
	}
	token, errToken := security.GenerateAdminToken(h.jwtCfg.Secret, admin.ID, admin.Username, admin.Role, sess.ID, h.jwtCfg.Expiry)
	if errToken != nil {
		_ = h.sessions.Revoke(ctx, sess.ID)
		respondError(c, http.StatusInternalServerError, "generate token failed")
		return
	}

	now := time.Now().UTC()
	if errUpdate := h.db.WithContext(ctx).Model(&models.Admin{}).
		Where("id = ?", admin.ID).
		Update("last_login_at", now).Error; errUpdate != nil {
		log.WithError(errUpdate).Warn("admin login: update last login")
	}
	admin.LastLoginAt = &now

	log.WithFields(log.Fields{"admin_id": admin.ID, "username": admin.Username}).Info("admin signed in")
	respondData(c, http.StatusOK, gin.H{
		"token":      token,
		"expires_at": sess.ExpiresAt,
		"admin":      toAdminResponse(admin),
	})
}

// Logout revokes the current session.
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID := c.GetString("sessionID")
	if sessionID == "" {
		respondError(c, http.StatusUnauthorized, "session not found")
		return
	}
	if errRevoke := h.sessions.Revoke(c.Request.Context(), sessionID); errRevoke != nil {
		log.WithError(errRevoke).Error("admin logout: revoke session")
		respondError(c, http.StatusInternalServerError, "logout failed")
		return
	}
	respondData(c, http.StatusOK, gin.H{"logged_out": true})
}

// Me returns the signed-in admin.
func (h *AuthHandler) Me(c *gin.Context) {
	var admin models.Admin
	if errFind := h.db.WithContext(c.Request.Context()).First(&admin, getAdminID(c)).Error; errFind != nil {
		respondError(c, http.StatusUnauthorized, "admin not found")
		return
	}
	respondData(c, http.StatusOK, toAdminResponse(admin))
}
