package batch

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/batch-image-converter/backend/internal/models"
)

// Store owns the ordered entry sequence of one batch and its derived phase.
// All mutation goes through its methods under the lock; callers only ever
// see clones, so the slice order and entry fields have a single writer.
type Store struct {
	mu         sync.RWMutex
	entries    []*models.FileEntry
	dispatched bool
	converted  bool
	createdAt  time.Time
}

// NewStore creates an empty store in the upload phase.
func NewStore() *Store {
	return &Store{createdAt: time.Now()}
}

// EntryID builds the stable entry identifier from the original name, the
// browser-reported modification time and the position in the upload. The
// index disambiguates duplicate selections of the same file.
func EntryID(name string, lastModified int64, index int) string {
	return fmt.Sprintf("%s-%d-%d", name, lastModified, index)
}

// CreateBatch replaces any existing entries with fresh ones built from the
// accepted files. Every entry starts pending with the default target format.
// An empty source list yields an empty batch back in the upload phase.
func (s *Store) CreateBatch(sources []models.SourceFile) {
	now := time.Now()
	entries := make([]*models.FileEntry, 0, len(sources))
	for i, src := range sources {
		entries = append(entries, &models.FileEntry{
			ID:             EntryID(src.Name, src.LastModified, i),
			OriginalName:   src.Name,
			OriginalFormat: formatFromMIME(src.MIMEType),
			OriginalSize:   int64(len(src.Data)),
			UploadedAt:     now,
			TargetFormat:   models.DefaultTargetFormat,
			Status:         models.StatusPending,
			Original:       src.Data,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	s.dispatched = false
	s.converted = false
}

// SetTargetFormat updates the target format of one entry. The change is only
// permitted while the entry is still pending; any other state (or an unknown
// id) is reported as false and left untouched.
func (s *Store) SetTargetFormat(id string, format models.TargetFormat) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.ID != id {
			continue
		}
		if e.Status != models.StatusPending {
			return false
		}
		e.TargetFormat = format
		return true
	}
	return false
}

// SetAllTargetFormats applies the format to every entry regardless of
// status. The batch-wide override intentionally ignores the pending-only
// rule that SetTargetFormat enforces.
func (s *Store) SetAllTargetFormats(format models.TargetFormat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		e.TargetFormat = format
	}
}

// UpdateEntry applies a mutation to the entry with the given id under the
// store lock. Used by the orchestrator to record conversion outcomes.
func (s *Store) UpdateEntry(id string, apply func(*models.FileEntry)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.ID == id {
			apply(e)
			return true
		}
	}
	return false
}

// Entry returns a clone of the entry with the given id.
func (s *Store) Entry(id string) (*models.FileEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return nil, false
}

// Entries returns clones of all entries in insertion order.
func (s *Store) Entries() []*models.FileEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.FileEntry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Clone()
	}
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// CreatedAt returns when the store was created.
func (s *Store) CreatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.createdAt
}

// Reset clears all entries and returns the batch to the upload phase.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.dispatched = false
	s.converted = false
}

// MarkDispatched flips every entry to converting in one synchronous step and
// returns the snapshot the conversion tasks will work from. The whole batch
// shows converting before any task runs.
func (s *Store) MarkDispatched() []*models.FileEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dispatched = true
	out := make([]*models.FileEntry, len(s.entries))
	for i, e := range s.entries {
		e.Status = models.StatusConverting
		e.Error = ""
		e.ResultName = ""
		e.ResultMIME = ""
		e.ResultSize = 0
		e.Result = nil
		e.ConvertedAt = nil
		out[i] = e.Clone()
	}
	return out
}

// MarkConverted records that a convert-all dispatch has fully settled. The
// phase becomes converted even when individual entries failed.
func (s *Store) MarkConverted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.converted = true
}

// Dispatched reports whether a convert-all has been issued for this batch.
func (s *Store) Dispatched() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dispatched
}

// Phase derives the batch lifecycle stage: upload while empty, converted
// once a convert-all dispatch has settled, managing otherwise.
func (s *Store) Phase() models.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case len(s.entries) == 0:
		return models.PhaseUpload
	case s.converted:
		return models.PhaseConverted
	default:
		return models.PhaseManaging
	}
}

// formatFromMIME extracts the subtype of an image MIME type ("image/png"
// -> "png"). Unrecognized values fall through unchanged.
func formatFromMIME(mimeType string) string {
	if sub, ok := strings.CutPrefix(mimeType, "image/"); ok {
		return sub
	}
	return mimeType
}
