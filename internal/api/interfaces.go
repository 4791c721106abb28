// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
)

// BatchHandler handles batch lifecycle operations
type BatchHandler interface {
	HandleCreateBatch(c echo.Context) error
	HandleGetBatch(c echo.Context) error
	HandleGetEntries(c echo.Context) error
	HandleGetEntriesMsgpack(c echo.Context) error
	HandleSetEntryFormat(c echo.Context) error
	HandleSetAllFormats(c echo.Context) error
	HandleConvertBatch(c echo.Context) error
	HandleDeleteBatch(c echo.Context) error
	HandleBatchKeepAlive(c echo.Context) error
}

// DownloadHandler handles result delivery operations
type DownloadHandler interface {
	HandleDownloadEntry(c echo.Context) error
	HandleDownloadArchive(c echo.Context) error
}

// ConfigHandler exposes read-only runtime configuration
type ConfigHandler interface {
	HandleGetPresets(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
