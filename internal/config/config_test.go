package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOOKING_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()
	require.Equal(t, "https://api.aladhan.com/v1", cfg.CalendarBaseURL)
	require.Equal(t, 5*time.Second, cfg.CalendarTimeout)
	require.Equal(t, 30*24*time.Hour, cfg.CacheDuration)
	require.Equal(t, BackendSQLite, cfg.CacheBackend)
	require.Equal(t, 18, cfg.WindowStartDay)
	require.Equal(t, 30, cfg.WindowEndDay)
	require.False(t, cfg.DedupeInflight)
	require.Equal(t, "@daily", cfg.WarmupSchedule)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "pricing_window_start: 20\ncache_backend: memory\ndata_dir: " + dir + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	t.Setenv("BOOKING_CONFIG", path)
	t.Setenv("PRICING_WINDOW_END", "27")
	t.Setenv("CALENDAR_TIMEOUT", "2s")

	cfg := Load()
	require.Equal(t, 20, cfg.WindowStartDay)
	require.Equal(t, 27, cfg.WindowEndDay)
	require.Equal(t, 2*time.Second, cfg.CalendarTimeout)
	require.Equal(t, BackendMemory, cfg.CacheBackend)
	require.Equal(t, filepath.Join(dir, "ramadan_cache.db"), cfg.CachePath())
}
