package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookstore-api/internal/middleware"
	appErrors "bookstore-api/pkg/errors"
)

// bindJSON decodes the request body into dst. On failure the error has
// already been handed to the error handler and false is returned.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.Fail(c, middleware.ErrRequestTooLarge)
			return false
		}
		middleware.Fail(c, appErrors.NewAppError(appErrors.ErrInvalidRequestBody.Message, http.StatusBadRequest, err))
		return false
	}
	return true
}
