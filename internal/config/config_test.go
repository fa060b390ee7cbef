package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PLANBOARD_CONFIG", "")
	t.Setenv("PLANBOARD_DB", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".planboard", "planboard.db"), cfg.DBPath)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, 3.0, cfg.Scheduler.WindowMultiplier)
	assert.Equal(t, 180, cfg.Scheduler.WindowFloorDays)
	assert.Equal(t, 1825, cfg.Scheduler.MaxDays)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db: /var/lib/planboard.db
listen: ":9000"
log_level: debug
shutdown_timeout: 30s
scheduler:
  window_multiplier: 4
  max_days: 365
`), 0o644))
	t.Setenv("PLANBOARD_CONFIG", path)
	t.Setenv("PLANBOARD_LISTEN", "127.0.0.1:7000")
	t.Setenv("PLANBOARD_WINDOW_FLOOR_DAYS", "90")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/planboard.db", cfg.DBPath)
	assert.Equal(t, "127.0.0.1:7000", cfg.Listen, "env wins over file")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 4.0, cfg.Scheduler.WindowMultiplier)
	assert.Equal(t, 90, cfg.Scheduler.WindowFloorDays)
	assert.Equal(t, 365, cfg.Scheduler.MaxDays)
}

func TestLoad_InvalidEnvNumbersIgnored(t *testing.T) {
	t.Setenv("PLANBOARD_CONFIG", "")
	t.Setenv("PLANBOARD_DB", "/tmp/x.db")
	t.Setenv("PLANBOARD_MAX_DAYS", "lots")
	t.Setenv("PLANBOARD_WINDOW_MULTIPLIER", "-2")
	t.Setenv("PLANBOARD_SHUTDOWN_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1825, cfg.Scheduler.MaxDays)
	assert.Equal(t, 3.0, cfg.Scheduler.WindowMultiplier)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("PLANBOARD_DB", "/tmp/x.db")

	t.Setenv("PLANBOARD_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scheduler:\n  window_multiplier: 0.5\n"), 0o644))
	t.Setenv("PLANBOARD_CONFIG", path)
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window_multiplier must be >= 1")

	t.Setenv("PLANBOARD_CONFIG", "")
	t.Setenv("PLANBOARD_LOG_LEVEL", "loud")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
