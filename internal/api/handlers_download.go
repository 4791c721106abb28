// handlers_download.go - Result delivery handlers
package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/batch-image-converter/backend/internal/archive"
	"github.com/batch-image-converter/backend/internal/batch"
	"github.com/batch-image-converter/backend/internal/models"
)

// DownloadHandlerImpl implements the DownloadHandler interface
type DownloadHandlerImpl struct {
	batches *batch.Manager
}

// NewDownloadHandler creates a new download handler instance
func NewDownloadHandler(batches *batch.Manager) DownloadHandler {
	return &DownloadHandlerImpl{batches: batches}
}

// HandleDownloadEntry delivers one converted result with its assigned name
func (h *DownloadHandlerImpl) HandleDownloadEntry(c echo.Context) error {
	store, apiErr := h.lookup(c)
	if apiErr != nil {
		return apiErr
	}

	entryID := c.Param("entryId")
	entry, ok := store.Entry(entryID)
	if !ok {
		return NewNotFoundError("entry", entryID)
	}
	if entry.Status != models.StatusConverted {
		return NewConflictError(fmt.Sprintf("entry %s is %s; only converted entries can be downloaded", entryID, entry.Status))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, entry.ResultName))
	return c.Blob(http.StatusOK, entry.ResultMIME, entry.Result)
}

// HandleDownloadArchive zips every converted result into a single download.
// Entries in error status are silently excluded.
func (h *DownloadHandlerImpl) HandleDownloadArchive(c echo.Context) error {
	store, apiErr := h.lookup(c)
	if apiErr != nil {
		return apiErr
	}

	var items []archive.Item
	for _, e := range store.Entries() {
		if e.Status == models.StatusConverted && e.Result != nil {
			items = append(items, archive.Item{Name: e.ResultName, Data: e.Result})
		}
	}
	if len(items) == 0 {
		return NewConflictError("batch has no converted entries to download")
	}

	var buf bytes.Buffer
	if err := archive.Build(&buf, items); err != nil {
		return NewInternalError("failed to build archive", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, archive.ArchiveName))
	return c.Blob(http.StatusOK, "application/zip", buf.Bytes())
}

func (h *DownloadHandlerImpl) lookup(c echo.Context) (*batch.Store, *APIError) {
	id := c.Param("batchId")
	if id == "" {
		return nil, NewValidationError("batchId")
	}
	store, ok := h.batches.Get(id)
	if !ok {
		return nil, NewNotFoundError("batch", id)
	}
	return store, nil
}
