package handler

import (
	"errors"
	"net/http"
	"synapo/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// respondError translates a service error into the matching HTTP response.
// NotFound and Conflict are expected outcomes; anything else has already
// been logged by the service and surfaces as a generic failure.
func respondError(c *gin.Context, err error, notFoundMsg, conflictMsg string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflictMsg})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
