package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"instra/internal/application/access/services"
	"instra/internal/shared/constants"
	"instra/internal/shared/logger"
	"instra/internal/shared/utils"
)

type PermissionMiddleware struct {
	resolver *services.PermissionResolver
	logger   logger.Interface
}

func NewPermissionMiddleware(resolver *services.PermissionResolver, logger logger.Interface) *PermissionMiddleware {
	return &PermissionMiddleware{
		resolver: resolver,
		logger:   logger,
	}
}

// RequirePermission guards a route behind an effective permission code.
// The check runs against the caller's active role from the X-Active-Role
// header, with the resolver's fallback chain when the header is absent.
func (m *PermissionMiddleware) RequirePermission(permCode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get(constants.ContextKeyUserID)
		if !exists {
			utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
			c.Abort()
			return
		}

		activeRole := c.GetString(constants.ContextKeyActiveRole)

		allowed, err := m.resolver.CheckPermission(c.Request.Context(), userID.(uint), permCode, activeRole)
		if err != nil {
			m.logger.Errorw("permission check failed",
				"error", err, "user_id", userID, "permission", permCode, "active_role", activeRole)
			utils.ErrorResponse(c, http.StatusInternalServerError, "permission check failed")
			c.Abort()
			return
		}

		if !allowed {
			m.logger.Warnw("permission denied",
				"user_id", userID, "permission", permCode, "active_role", activeRole)
			utils.ErrorResponse(c, http.StatusForbidden, "insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}
