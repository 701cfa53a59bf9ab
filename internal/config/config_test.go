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

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "./cache/gefs_subset.nc", cfg.DataPath)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.InDelta(t, 30.0, cfg.LatMin, 1e-9)
	assert.InDelta(t, 50.0, cfg.LatMax, 1e-9)
	assert.InDelta(t, -125.0, cfg.LonMin, 1e-9)
	assert.InDelta(t, -100.0, cfg.LonMax, 1e-9)
	assert.False(t, cfg.Debug)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("GEFS_DATA_PATH", "/data/pnw.nc")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("CACHE_TTL", "30m")
	t.Setenv("LAT_MIN", "42.5")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "/data/pnw.nc", cfg.DataPath)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.InDelta(t, 42.5, cfg.LatMin, 1e-9)
	assert.True(t, cfg.Debug)
}

func TestLoadInvalidBBox(t *testing.T) {
	t.Setenv("LAT_MIN", "60")
	t.Setenv("LAT_MAX", "50")

	_, err := Load()
	require.Error(t, err)
}
