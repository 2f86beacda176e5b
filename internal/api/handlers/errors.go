package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"office-panel/internal/policy"
	"office-panel/internal/services"

	"github.com/gin-gonic/gin"
)

// respondError maps service and policy errors to HTTP responses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, policy.ErrUnauthenticated):
		c.JSON(401, gin.H{"error": "Authentication required"})
	case errors.Is(err, policy.ErrForbidden):
		c.JSON(403, gin.H{"error": "Forbidden: insufficient permissions"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(404, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(401, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrLastAdmin):
		c.JSON(409, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		slog.Default().ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
		c.JSON(500, gin.H{"error": "Internal server error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
}

// parseID reads a numeric path parameter, answering 400 when it is malformed.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(400, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}
