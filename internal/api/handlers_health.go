// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/batch-image-converter/backend/internal/batch"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	batches *batch.Manager
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, batches *batch.Manager) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		batches: batches,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"version":       h.version,
		"activeBatches": h.batches.Count(),
	})
}
