package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "bookstore-api/pkg/errors"
)

const (
	DefaultMaxRequestSize = 10 << 10
)

var ErrRequestTooLarge = appErrors.New("Request body too large", http.StatusRequestEntityTooLarge)

// RequestSizeLimitMiddleware limits the size of incoming requests to maxSize bytes.
func RequestSizeLimitMiddleware(maxSize int64) gin.HandlerFunc {
	if maxSize <= 0 {
		maxSize = DefaultMaxRequestSize
	}

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			Fail(c, ErrRequestTooLarge)
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
