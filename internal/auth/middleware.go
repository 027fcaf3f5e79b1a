package auth

import (
	"errors"
	"net/http"

	"garageadmin/internal/api"

	"github.com/gin-gonic/gin"
)

const (
	ctxAdminID    = "admin_id"
	ctxAdminEmail = "admin_email"
	ctxAdminRole  = "admin_role"
)

// AuthMiddleware accepts only bearer tokens signed with secret and stores the
// admin's id, email and role on the gin context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.Err(err.Error()))
			return
		}

		claims, err := ValidateToken(token, secret)
		switch {
		case errors.Is(err, ErrTokenExpired):
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.Err("Token expired"))
			return
		case err != nil:
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.Err("Invalid token"))
			return
		}

		c.Set(ctxAdminID, claims.AdminID)
		c.Set(ctxAdminEmail, claims.Email)
		c.Set(ctxAdminRole, claims.Role)
		c.Next()
	}
}

func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ctxAdminRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.Err("Role not found"))
			return
		}

		roleStr, ok := role.(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.Err("Invalid role type"))
			return
		}

		if roleStr != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, api.Err("Insufficient permissions"))
			return
		}

		c.Next()
	}
}

func GetAdminID(c *gin.Context) (int, bool) {
	v, exists := c.Get(ctxAdminID)
	if !exists {
		return 0, false
	}

	id, ok := v.(int)
	return id, ok
}

func GetAdminEmail(c *gin.Context) string {
	return c.GetString(ctxAdminEmail)
}
