package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"bookstore-api/internal/logger"
	appErrors "bookstore-api/pkg/errors"
	"bookstore-api/pkg/utils"
)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Fail hands err to ErrorHandler and stops the chain. Handlers and
// middleware never write error bodies themselves.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandler writes the response for the last error pushed onto the
// context. In production the failure is classified; otherwise the raw error
// and its stack are echoed back.
func ErrorHandler(isProduction bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		if isProduction {
			appErr := appErrors.Classify(err)
			logFailure(c, appErr.StatusCode, err)
			c.JSON(appErr.StatusCode, utils.NewErrorResponse(appErr))
			return
		}

		status := appErrors.StatusOf(err)
		logFailure(c, status, err)
		c.JSON(status, debugResponse(status, err))
	}
}

func debugResponse(status int, err error) utils.DebugErrorResponse {
	resp := utils.DebugErrorResponse{
		Status:  appErrors.StatusError,
		Error:   utils.DebugDetail{Type: fmt.Sprintf("%T", err), Detail: detailOf(err)},
		Message: err.Error(),
	}
	if status < http.StatusInternalServerError {
		resp.Status = appErrors.StatusFail
	}

	var st stackTracer
	if errors.As(err, &st) {
		resp.Stack = fmt.Sprintf("%+v", st)
	}
	return resp
}

// detailOf returns the first taxonomy error in the chain, which is known to
// encode cleanly.
func detailOf(err error) any {
	var validationErr *appErrors.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr
	}
	var castErr *appErrors.CastError
	if errors.As(err, &castErr) {
		return castErr
	}
	var dupErr *appErrors.DuplicateKeyError
	if errors.As(err, &dupErr) {
		return dupErr
	}
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func logFailure(c *gin.Context, status int, err error) {
	if status < http.StatusInternalServerError {
		return
	}
	logger.FromContext(c.Request.Context()).Error("Request failed",
		zap.String("path", c.Request.URL.Path),
		zap.Int("status_code", status),
		zap.String("event", "unhandled_error"),
		zap.Error(err),
	)
}

// Recovery turns a panic into an unclassified error for ErrorHandler.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		Fail(c, errors.Errorf("panic recovered: %v", recovered))
	})
}
