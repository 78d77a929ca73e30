package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"bookstore-api/internal/metrics"
)

// MetricsMiddleware records request count and latency per route template.
// It must wrap ErrorHandler so that error statuses are observed.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
