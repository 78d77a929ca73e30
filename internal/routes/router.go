package routes

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookstore-api/internal/config"
	"bookstore-api/internal/delivery/http/handler"
	domainBook "bookstore-api/internal/domain/book"
	domainUser "bookstore-api/internal/domain/user"
	"bookstore-api/internal/logger"
	"bookstore-api/internal/metrics"
	"bookstore-api/internal/middleware"
	"bookstore-api/internal/usecase/book"
	"bookstore-api/internal/usecase/user"
	appErrors "bookstore-api/pkg/errors"
	"bookstore-api/pkg/utils"
)

const healthTimeout = 2 * time.Second

// HealthChecker pings the backing store.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Dependencies are the collaborators built by main and shared by every route.
type Dependencies struct {
	Config   *config.Config
	Users    domainUser.Repository
	Books    domainBook.Repository
	Hasher   domainUser.PasswordHasher
	Tokens   *utils.TokenManager
	Mailer   user.Mailer
	Notifier book.Notifier
	Store    HealthChecker
	// Done stops background work started by middleware.
	Done <-chan struct{}
}

func SetupRoutes(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Order: request ID, logging, metrics, error handler, recovery, security headers,
	// CORS, request size limit, general rate limit
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.ErrorHandler(cfg.IsProduction()))
	router.Use(middleware.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst, deps.Done))

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := deps.Store.Health(ctx); err != nil {
			metrics.SetDependencyHealth("database", false)
			logger.FromContext(c.Request.Context()).Warn("Health check failed",
				zap.String("event", "health_check_failed"),
				zap.Error(err),
			)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		metrics.SetDependencyHealth("database", true)
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.NoRoute(func(c *gin.Context) {
		middleware.Fail(c, appErrors.NotFound(fmt.Sprintf("Can't find %s on this server!", c.Request.URL.Path)))
	})

	userService := user.NewService(deps.Users, deps.Hasher, deps.Tokens, deps.Mailer, cfg)
	userHandler := handler.NewUserHandler(userService, cfg)

	bookService := book.NewService(deps.Books, deps.Notifier, cfg)
	bookHandler := handler.NewBookHandler(bookService)

	v1 := router.Group("/api/v1")
	{
		userHandler.RegisterRoutes(v1)
		bookHandler.RegisterRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.Authenticate(deps.Tokens, deps.Users, cfg.JWT.CookieName))
		{
			userHandler.RegisterProtectedRoutes(protected)
			bookHandler.RegisterProtectedRoutes(protected)

			admin := protected.Group("")
			admin.Use(middleware.AdminOnly())
			{
				userHandler.RegisterAdminRoutes(admin)
				bookHandler.RegisterAdminRoutes(admin)
			}
		}
	}

	logger.Info("All routes initialized")
	return router
}
