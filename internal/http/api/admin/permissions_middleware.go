package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/verly-ai/founder-platform/internal/models"
)

// adminRoleMiddleware blocks mutating requests for read-only admins.
func adminRoleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		role, okRole := readAdminRoleFromContext(c)
		if !okRole {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "admin not found"})
			return
		}
		if (models.Admin{Role: role}).IsReadOnly() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "permission denied"})
			return
		}
		c.Next()
	}
}

// readAdminRoleFromContext extracts the admin role from the gin context.
func readAdminRoleFromContext(c *gin.Context) (string, bool) {
	value, ok := c.Get("adminRole")
	if !ok {
		return "", false
	}
	role, ok := value.(string)
	return role, ok
}
