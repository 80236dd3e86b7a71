package middleware

import (
	"net/http"

	"github.com/adfinitum/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Permission classes
const (
	PermissionAllowAny      = "allow_any"
	PermissionAuthenticated = "authenticated"
	PermissionAdmin         = "admin"
)

// PermissionConfig holds configuration for permission middleware
type PermissionConfig struct {
	// Logger for middleware logging
	Logger *zap.Logger
	// OnDenied is called when permission is denied (optional)
	OnDenied func(c *gin.Context, class string)
}

// RequireAuthenticated rejects anonymous callers with 401. Place it after
// OptionalJWTAuthMiddleware.
func RequireAuthenticated() gin.HandlerFunc {
	return RequireAuthenticatedWithConfig(PermissionConfig{})
}

// RequireAuthenticatedWithConfig creates middleware with custom config
func RequireAuthenticatedWithConfig(cfg PermissionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAuthenticated(c) {
			denyUnauthenticated(c, cfg, PermissionAuthenticated)
			return
		}
		c.Next()
	}
}

// RequireAdmin lets only staff, superusers and admin-role users through.
// Anonymous callers get 401, authenticated non-admins 403.
func RequireAdmin() gin.HandlerFunc {
	return RequireAdminWithConfig(PermissionConfig{})
}

// RequireAdminWithConfig creates middleware with custom config
func RequireAdminWithConfig(cfg PermissionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			denyUnauthenticated(c, cfg, PermissionAdmin)
			return
		}
		if !claims.CanManage {
			if cfg.OnDenied != nil {
				cfg.OnDenied(c, PermissionAdmin)
				c.Abort()
				return
			}
			if cfg.Logger != nil {
				cfg.Logger.Warn("Permission denied",
					zap.String("user_id", claims.UserID),
					zap.String("role", claims.Role),
					zap.String("required", PermissionAdmin),
					zap.String("path", c.Request.URL.Path),
				)
			}
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden,
				"You do not have permission to perform this action.",
				getRequestIDFromContext(c),
			))
			return
		}
		c.Next()
	}
}

func denyUnauthenticated(c *gin.Context, cfg PermissionConfig, class string) {
	if cfg.OnDenied != nil {
		cfg.OnDenied(c, class)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeUnauthorized,
		"Authentication credentials were not provided.",
		getRequestIDFromContext(c),
	))
}
