// handlers_batch.go - Batch lifecycle handlers
package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/batch-image-converter/backend/internal/batch"
	"github.com/batch-image-converter/backend/internal/models"
	"github.com/batch-image-converter/backend/internal/orchestrate"
)

// BatchHandlerImpl implements the BatchHandler interface
type BatchHandlerImpl struct {
	batches      *batch.Manager
	orchestrator *orchestrate.Orchestrator
	allowedMIME  []string
	maxFiles     int
}

// NewBatchHandler creates a new batch handler instance
func NewBatchHandler(batches *batch.Manager, orch *orchestrate.Orchestrator, allowedMIME []string, maxFiles int) BatchHandler {
	return &BatchHandlerImpl{
		batches:      batches,
		orchestrator: orch,
		allowedMIME:  allowedMIME,
		maxFiles:     maxFiles,
	}
}

// HandleCreateBatch accepts a multipart upload of images and creates a new
// batch. Optional repeated "lastModified" form values (Unix milliseconds)
// align positionally with the files and feed the entry id rule.
func (h *BatchHandlerImpl) HandleCreateBatch(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("invalid multipart form", err)
	}

	files := form.File["files"]
	if len(files) == 0 {
		return NewValidationError("files")
	}
	if h.maxFiles > 0 && len(files) > h.maxFiles {
		return NewBadRequestError(fmt.Sprintf("too many files: %d (max %d)", len(files), h.maxFiles), nil)
	}

	lastModified := form.Value["lastModified"]

	sources := make([]models.SourceFile, 0, len(files))
	for i, fh := range files {
		mimeType := fh.Header.Get("Content-Type")
		if !h.mimeAllowed(mimeType) {
			return NewUnsupportedMediaError(mimeType)
		}

		data, err := readFormFile(fh)
		if err != nil {
			return NewInternalError(fmt.Sprintf("failed to read uploaded file %s", fh.Filename), err)
		}

		var mtime int64
		if i < len(lastModified) {
			mtime, _ = strconv.ParseInt(lastModified[i], 10, 64)
		}
		if mtime == 0 {
			mtime = time.Now().UnixMilli()
		}

		sources = append(sources, models.SourceFile{
			Name:         fh.Filename,
			MIMEType:     mimeType,
			LastModified: mtime,
			Data:         data,
		})
	}

	id, store, err := h.batches.Create(sources)
	if err != nil {
		return NewConflictError(err.Error())
	}

	return c.JSON(http.StatusCreated, batchInfo(id, store))
}

// HandleGetBatch returns the batch with its entries
func (h *BatchHandlerImpl) HandleGetBatch(c echo.Context) error {
	store, apiErr := h.lookup(c)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, batchInfo(c.Param("batchId"), store))
}

// HandleGetEntries returns the entry list in insertion order
func (h *BatchHandlerImpl) HandleGetEntries(c echo.Context) error {
	store, apiErr := h.lookup(c)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, store.Entries())
}

// HandleGetEntriesMsgpack returns the entry list msgpack-encoded for cheap
// frontend polling
func (h *BatchHandlerImpl) HandleGetEntriesMsgpack(c echo.Context) error {
	store, apiErr := h.lookup(c)
	if apiErr != nil {
		return apiErr
	}

	data, err := msgpack.Marshal(store.Entries())
	if err != nil {
		return NewInternalError("failed to encode entries", err)
	}
	return c.Blob(http.StatusOK, "application/x-msgpack", data)
}

// HandleSetEntryFormat updates one entry's target format while it is pending
func (h *BatchHandlerImpl) HandleSetEntryFormat(c echo.Context) error {
	store, apiErr := h.lookup(c)
	if apiErr != nil {
		return apiErr
	}

	entryID := c.Param("entryId")
	var req setFormatRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if !req.Format.Valid() {
		return NewValidationError("format")
	}

	entry, ok := store.Entry(entryID)
	if !ok {
		return NewNotFoundError("entry", entryID)
	}
	if !store.SetTargetFormat(entryID, req.Format) {
		return NewConflictError(fmt.Sprintf("entry %s is %s; format can only change while pending", entryID, entry.Status))
	}

	entry, _ = store.Entry(entryID)
	return c.JSON(http.StatusOK, entry)
}

// HandleSetAllFormats applies a target format to every entry in the batch,
// regardless of entry status
func (h *BatchHandlerImpl) HandleSetAllFormats(c echo.Context) error {
	store, apiErr := h.lookup(c)
	if apiErr != nil {
		return apiErr
	}

	var req setFormatRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if !req.Format.Valid() {
		return NewValidationError("format")
	}

	store.SetAllTargetFormats(req.Format)
	return c.JSON(http.StatusOK, store.Entries())
}

// HandleConvertBatch converts every entry and responds once all conversions
// have settled. Re-dispatch of an already-converted batch is rejected here;
// the orchestrator itself does not defend against it.
func (h *BatchHandlerImpl) HandleConvertBatch(c echo.Context) error {
	store, apiErr := h.lookup(c)
	if apiErr != nil {
		return apiErr
	}

	if store.Len() == 0 {
		return NewConflictError("batch is empty")
	}
	if store.Dispatched() {
		return NewConflictError("batch has already been converted")
	}

	h.orchestrator.ConvertAll(c.Request().Context(), c.Param("batchId"), store)

	return c.JSON(http.StatusOK, batchInfo(c.Param("batchId"), store))
}

// HandleDeleteBatch drops the batch and all of its blobs
func (h *BatchHandlerImpl) HandleDeleteBatch(c echo.Context) error {
	id := c.Param("batchId")
	if !h.batches.Delete(id) {
		return NewNotFoundError("batch", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleBatchKeepAlive refreshes the batch's cleanup timer
func (h *BatchHandlerImpl) HandleBatchKeepAlive(c echo.Context) error {
	id := c.Param("batchId")
	if !h.batches.Touch(id) {
		return NewNotFoundError("batch", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// lookup resolves the batch id path param to its store
func (h *BatchHandlerImpl) lookup(c echo.Context) (*batch.Store, *APIError) {
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

func (h *BatchHandlerImpl) mimeAllowed(mimeType string) bool {
	if !strings.HasPrefix(mimeType, "image/") {
		return false
	}
	if len(h.allowedMIME) == 0 {
		return true
	}
	for _, allowed := range h.allowedMIME {
		if mimeType == allowed {
			return true
		}
	}
	return false
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}

func batchInfo(id string, store *batch.Store) *models.BatchInfo {
	return &models.BatchInfo{
		ID:        id,
		Phase:     store.Phase(),
		CreatedAt: store.CreatedAt(),
		Entries:   store.Entries(),
	}
}

// Request types

type setFormatRequest struct {
	Format models.TargetFormat `json:"format"`
}
