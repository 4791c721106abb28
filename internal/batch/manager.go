package batch

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/batch-image-converter/backend/internal/models"
)

// MaxBatches limits concurrent batches to prevent memory exhaustion; every
// batch holds its blobs in memory.
const MaxBatches = 32

// BatchMaxAge is how long an untouched batch is kept before cleanup.
const BatchMaxAge = 30 * time.Minute

// Manager is the registry of live batches, one per browser session.
type Manager struct {
	mu      sync.RWMutex
	batches map[string]*managedBatch
}

type managedBatch struct {
	store        *Store
	lastAccessed time.Time
}

// NewManager creates an empty batch registry.
func NewManager() *Manager {
	return &Manager{batches: make(map[string]*managedBatch)}
}

// Create registers a new batch populated from the accepted files and returns
// its id. Fails when the registry is full even after evicting stale batches.
func (m *Manager) Create(sources []models.SourceFile) (string, *Store, error) {
	m.CleanupOldBatches(BatchMaxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.batches) >= MaxBatches {
		return "", nil, fmt.Errorf("too many active batches (max %d)", MaxBatches)
	}

	id := uuid.New().String()
	store := NewStore()
	store.CreateBatch(sources)
	m.batches[id] = &managedBatch{store: store, lastAccessed: time.Now()}
	return id, store, nil
}

// Get returns the store for a batch id and refreshes its last-access time.
func (m *Manager) Get(id string) (*Store, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mb, ok := m.batches[id]
	if !ok {
		return nil, false
	}
	mb.lastAccessed = time.Now()
	return mb.store, true
}

// Touch refreshes a batch's last-access time without returning it.
func (m *Manager) Touch(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	mb, ok := m.batches[id]
	if ok {
		mb.lastAccessed = time.Now()
	}
	return ok
}

// Delete removes a batch from the registry, releasing its blobs.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	mb, ok := m.batches[id]
	if !ok {
		return false
	}
	mb.store.Reset()
	delete(m.batches, id)
	return true
}

// Count returns the number of live batches.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.batches)
}

// CleanupOldBatches evicts batches untouched for longer than maxAge and
// returns how many were removed.
func (m *Manager) CleanupOldBatches(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, mb := range m.batches {
		if mb.lastAccessed.Before(cutoff) {
			mb.store.Reset()
			delete(m.batches, id)
			removed++
		}
	}
	return removed
}
