package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainUser "bookstore-api/internal/domain/user"
	"bookstore-api/internal/logger"
	"bookstore-api/internal/metrics"
	appErrors "bookstore-api/pkg/errors"
)

// RestrictTo lets the request through only when the authenticated user has
// one of roles. It must be mounted after Authenticate.
func RestrictTo(roles ...domainUser.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			Fail(c, appErrors.ErrNotLoggedIn)
			return
		}

		if !slices.Contains(roles, u.Role) {
			metrics.RecordAuthEvent(metrics.AuthAccessForbidden)
			logger.FromContext(c.Request.Context()).Warn("Access denied",
				zap.String("role", string(u.Role)),
				zap.String("path", c.FullPath()),
				zap.String("event", "access_forbidden"),
			)
			Fail(c, appErrors.ErrForbidden)
			return
		}

		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return RestrictTo(domainUser.RoleAdmin)
}
