package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-settlement/internal/settlementerrors"
	"auction-settlement/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request parameters: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request parameters")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps settlement and scheduling errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, settlementerrors.ErrJobRunning):
		return http.StatusConflict, "job already running"
	case errors.Is(err, settlementerrors.ErrLeaseHeld):
		return http.StatusConflict, "job running on another instance"
	case errors.Is(err, settlementerrors.ErrUnknownJob):
		return http.StatusNotFound, "unknown job"
	case errors.Is(err, settlementerrors.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid amount"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
