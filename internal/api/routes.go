// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/batch-image-converter/backend/internal/batch"
	"github.com/batch-image-converter/backend/internal/convert"
	"github.com/batch-image-converter/backend/internal/orchestrate"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Batches      *batch.Manager
	Orchestrator *orchestrate.Orchestrator
	Presets      []convert.Preset
	AllowedMIME  []string
	MaxFiles     int
	Version      string
}

// Handlers holds all handler instances
type Handlers struct {
	Health    HealthHandler
	Batch     BatchHandler
	Download  DownloadHandler
	Config    ConfigHandler
	WebSocket *WebSocketHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies, ws *WebSocketHandler) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(deps.Version, deps.Batches),
		Batch:     NewBatchHandler(deps.Batches, deps.Orchestrator, deps.AllowedMIME, deps.MaxFiles),
		Download:  NewDownloadHandler(deps.Batches),
		Config:    NewConfigHandler(deps.Presets),
		WebSocket: ws,
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/api/health", handlers.Health.HandleHealth)

	// Batch lifecycle routes
	batchGroup := e.Group("/api/batches")
	batchGroup.POST("", handlers.Batch.HandleCreateBatch)
	batchGroup.GET("/:batchId", handlers.Batch.HandleGetBatch)
	batchGroup.GET("/:batchId/entries", handlers.Batch.HandleGetEntries)
	batchGroup.GET("/:batchId/entries/msgpack", handlers.Batch.HandleGetEntriesMsgpack)
	batchGroup.PUT("/:batchId/entries/:entryId/format", handlers.Batch.HandleSetEntryFormat)
	batchGroup.PUT("/:batchId/format", handlers.Batch.HandleSetAllFormats)
	batchGroup.POST("/:batchId/convert", handlers.Batch.HandleConvertBatch)
	batchGroup.POST("/:batchId/keepalive", handlers.Batch.HandleBatchKeepAlive)
	batchGroup.DELETE("/:batchId", handlers.Batch.HandleDeleteBatch)

	// Result delivery routes
	batchGroup.GET("/:batchId/entries/:entryId/download", handlers.Download.HandleDownloadEntry)
	batchGroup.GET("/:batchId/download", handlers.Download.HandleDownloadArchive)

	// Runtime configuration
	e.GET("/api/config/presets", handlers.Config.HandleGetPresets)

	// Conversion progress stream
	if handlers.WebSocket != nil {
		e.GET("/api/ws/batches/:batchId", handlers.WebSocket.HandleWebSocket)
	}
}
