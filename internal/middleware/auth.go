package middleware

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainUser "bookstore-api/internal/domain/user"
	"bookstore-api/internal/logger"
	"bookstore-api/internal/metrics"
	appErrors "bookstore-api/pkg/errors"
	"bookstore-api/pkg/utils"
)

const (
	UserKey   = "user"
	UserIDKey = "userID"
	RoleKey   = "role"
)

type userCtxKey struct{}

// TokenVerifier checks a session token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*utils.Claims, error)
}

// UserFinder resolves the subject of a verified token.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*domainUser.User, error)
}

// Authenticate resolves the session token to a user. The token is read from
// the named cookie, falling back to an Authorization bearer header.
func Authenticate(verifier TokenVerifier, users UserFinder, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c, cookieName)
		if token == "" {
			Fail(c, appErrors.ErrNotLoggedIn)
			return
		}

		log := logger.FromContext(c.Request.Context())

		claims, err := verifier.Verify(token)
		if err != nil {
			metrics.RecordAuthEvent(metrics.AuthTokenRejected)
			if stderrors.Is(err, utils.ErrTokenExpired) {
				log.Info("Rejected expired token", zap.String("event", "token_expired"))
				Fail(c, appErrors.ErrTokenExpired)
				return
			}
			log.Warn("Rejected invalid token", zap.String("event", "token_invalid"))
			Fail(c, appErrors.ErrInvalidToken)
			return
		}

		u, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			var castErr *appErrors.CastError
			if stderrors.Is(err, domainUser.ErrUserNotFound) || stderrors.As(err, &castErr) {
				metrics.RecordAuthEvent(metrics.AuthTokenRejected)
				log.Warn("Token subject no longer exists",
					zap.String("user_id", claims.UserID),
					zap.String("event", "token_subject_missing"),
				)
				Fail(c, appErrors.ErrUserNoLongerExists)
				return
			}
			Fail(c, err)
			return
		}

		c.Set(UserKey, u)
		c.Set(UserIDKey, u.HexID())
		c.Set(RoleKey, u.Role)

		ctx := context.WithValue(c.Request.Context(), userCtxKey{}, u)
		ctx = logger.NewContext(ctx, log.With(zap.String("user_id", u.HexID())))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func tokenFromRequest(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}

	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// CurrentUser returns the identity attached by Authenticate.
func CurrentUser(c *gin.Context) (*domainUser.User, bool) {
	v, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	u, ok := v.(*domainUser.User)
	return u, ok
}

// UserFromContext returns the identity attached by Authenticate to a request context.
func UserFromContext(ctx context.Context) (*domainUser.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(*domainUser.User)
	return u, ok
}
