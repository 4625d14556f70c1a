package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pomegranateis/webfinalserver/internal/database"
	apierrors "github.com/pomegranateis/webfinalserver/internal/errors"
	"github.com/pomegranateis/webfinalserver/internal/logger"
)

// Health reports whether the database answers
// GET /health
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":    "healthy",
		"service":   h.service,
		"database":  "ok",
		"timestamp": time.Now().UTC(),
	}

	if err := database.Health(h.db); err != nil {
		logger.WarnWithFields("Health check failed", err)
		apiErr := apierrors.ServiceUnavailable("database")
		body["status"] = "unhealthy"
		body["database"] = "unavailable"
		body["error"] = apiErr
		c.JSON(apiErr.Status, body)
		return
	}

	c.JSON(http.StatusOK, body)
}
