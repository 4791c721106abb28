package batch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batch-image-converter/backend/internal/models"
)

func TestManager_CreateAndGet(t *testing.T) {
	m := NewManager()

	id, store, err := m.Create(sampleSources())
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, 3, store.Len())

	got, ok := m.Get(id)
	require.True(t, ok)
	assert.Same(t, store, got)

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestManager_Delete(t *testing.T) {
	m := NewManager()
	id, _, err := m.Create(sampleSources())
	require.NoError(t, err)

	assert.True(t, m.Delete(id))
	assert.False(t, m.Delete(id))
	assert.Equal(t, 0, m.Count())
}

func TestManager_CleanupOldBatches(t *testing.T) {
	m := NewManager()
	oldID, _, err := m.Create(sampleSources())
	require.NoError(t, err)

	// Age the first batch artificially
	m.mu.Lock()
	m.batches[oldID].lastAccessed = time.Now().Add(-time.Hour)
	m.mu.Unlock()

	freshID, _, err := m.Create(nil)
	require.NoError(t, err)

	removed := m.CleanupOldBatches(30 * time.Minute)
	assert.Equal(t, 1, removed)

	_, ok := m.Get(oldID)
	assert.False(t, ok)
	_, ok = m.Get(freshID)
	assert.True(t, ok)
}

func TestManager_TouchKeepsBatchAlive(t *testing.T) {
	m := NewManager()
	id, _, err := m.Create(nil)
	require.NoError(t, err)

	m.mu.Lock()
	m.batches[id].lastAccessed = time.Now().Add(-time.Hour)
	m.mu.Unlock()

	require.True(t, m.Touch(id))
	assert.Equal(t, 0, m.CleanupOldBatches(30*time.Minute))
}

func TestManager_MaxBatches(t *testing.T) {
	m := NewManager()
	for i := 0; i < MaxBatches; i++ {
		_, _, err := m.Create([]models.SourceFile{})
		require.NoError(t, err)
	}

	_, _, err := m.Create(nil)
	assert.Error(t, err)
}
