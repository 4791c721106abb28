// handlers_config.go - Read-only runtime configuration handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/batch-image-converter/backend/internal/convert"
)

// ConfigHandlerImpl implements the ConfigHandler interface
type ConfigHandlerImpl struct {
	presets []convert.Preset
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(presets []convert.Preset) ConfigHandler {
	return &ConfigHandlerImpl{presets: presets}
}

// HandleGetPresets returns the conversion presets loaded at startup
func (h *ConfigHandlerImpl) HandleGetPresets(c echo.Context) error {
	return c.JSON(http.StatusOK, h.presets)
}
