package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "budgetledger/internal/errors"
	"budgetledger/internal/logger"
)

// StatusFor maps an error to the HTTP status the API reports for it.
// Constraint violations surface as conflicts; every other storage
// failure is a 500 whose details stay in the log.
func StatusFor(err error) int {
	if errors.Is(err, apperrors.ErrConstraintViolation) {
		return http.StatusConflict
	}
	if errors.Is(err, apperrors.ErrStoreUnavailable) {
		return http.StatusServiceUnavailable
	}
	switch apperrors.KindOf(err) {
	case apperrors.KindInvalidArgument:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err as the standard JSON error envelope. Errors
// that are not AppErrors are logged and replaced by a generic storage
// error so that driver text never reaches the client.
func WriteError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		logger.Get().Errorw("unexpected error",
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"request_id", RequestID(c),
		)
		appErr = apperrors.ErrStorage
	} else if appErr.Internal != nil {
		logger.Get().Errorw("app error",
			"code", appErr.Code,
			"op", appErr.Op,
			"internal", appErr.Internal.Error(),
			"path", c.Request.URL.Path,
			"request_id", RequestID(c),
		)
	}

	c.JSON(StatusFor(appErr), gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}

// ErrorHandler returns a Gin middleware that converts errors set on the
// Gin context into the JSON error envelope. Handlers that already wrote
// a response are left alone.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		WriteError(c, c.Errors.Last().Err)
	}
}
