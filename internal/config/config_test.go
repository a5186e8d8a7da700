package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1920, cfg.Normalizer.MaxWidth)
	assert.Equal(t, 1920, cfg.Normalizer.MaxHeight)
	assert.InDelta(t, 0.85, cfg.Normalizer.Quality, 1e-9)
	assert.Equal(t, 400, cfg.Normalizer.ThumbnailSize)
	assert.InDelta(t, 0.8, cfg.Normalizer.ThumbnailQuality, 1e-9)
	assert.Equal(t, int64(100_000_000), cfg.Normalizer.MaxPixels)
	assert.Equal(t, 5*time.Minute, cfg.Settings.RefreshInterval)
	assert.Equal(t, "image_normalization", cfg.RabbitMQ.QueueName)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("NORMALIZE_MAX_WIDTH", "1280")
	t.Setenv("NORMALIZE_QUALITY", "0.7")
	t.Setenv("SETTINGS_REFRESH_INTERVAL", "30s")
	t.Setenv("ALLOWED_TYPES", "image/jpeg, IMAGE/PNG,")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("NORMALIZE_MAX_PIXELS", "40000000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1280, cfg.Normalizer.MaxWidth)
	assert.InDelta(t, 0.7, cfg.Normalizer.Quality, 1e-9)
	assert.Equal(t, 30*time.Second, cfg.Settings.RefreshInterval)
	assert.Equal(t, []string{"image/jpeg", "image/png"}, cfg.Storage.AllowedTypes)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, int64(40_000_000), cfg.Normalizer.MaxPixels)
}

func TestIsAllowedType(t *testing.T) {
	storage := StorageConfig{AllowedTypes: []string{"image/jpeg", "image/png"}}

	assert.True(t, storage.IsAllowedType("image/jpeg"))
	assert.True(t, storage.IsAllowedType("IMAGE/PNG"))
	assert.True(t, storage.IsAllowedType("image/png; charset=binary"))
	assert.False(t, storage.IsAllowedType("application/pdf"))
	assert.False(t, storage.IsAllowedType(""))
}
