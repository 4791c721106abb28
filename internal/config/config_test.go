package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_CreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "BatchImageConverter.config")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// File was written for next run
	_, statErr := os.Stat(path)
	require.NoError(t, statErr)

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, float64(1), cfg.Conversion.SizeLimitMB)
	assert.Equal(t, 1920, cfg.Conversion.MaxDimensionPx)
	assert.Equal(t, 100, cfg.Security.MaxFilesPerBatch)
}

func TestLoadConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.config")

	original := DefaultConfig()
	original.Server.Port = 9999
	original.Conversion.SizeLimitMB = 2.5
	require.NoError(t, original.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, loaded.Server.Port)
	assert.Equal(t, 2.5, loaded.Conversion.SizeLimitMB)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.config")
	require.NoError(t, DefaultConfig().Save(path))

	t.Setenv("PORT", "7777")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7777, cfg.Server.Port)
}

func TestResolvePaths_PresetsRelativeToConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.config")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "presets.yaml"), cfg.Conversion.PresetsFile)
}

func TestGetServerAddr(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.BindAddress = "127.0.0.1"
	cfg.Server.Port = 8090
	assert.Equal(t, "127.0.0.1:8090", cfg.GetServerAddr())
}

func TestAllowedMIMEList(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Security.AllowedMIMETypes = "image/png, image/jpeg ,image/webp,"
	assert.Equal(t, []string{"image/png", "image/jpeg", "image/webp"}, cfg.AllowedMIMEList())
}
