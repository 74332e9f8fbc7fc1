package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"inkwell/internal/service"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Message string `json:"message"`
}

// writeError maps service errors to HTTP statuses. Unknown errors are logged
// and masked so internals never leak to clients.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "error", err)
		c.JSON(status, errorResponse{Message: "internal error"})
		return
	}

	c.JSON(status, errorResponse{Message: err.Error()})
}

func abortError(c *gin.Context, err error) {
	writeError(c, err)
	c.Abort()
}
