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
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 50, cfg.RateLimit.UploadPerHour)
	assert.Equal(t, 50*time.Millisecond, cfg.Simulator.TickInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.Simulator.GraceDelay)
	assert.Equal(t, int64(100<<20), cfg.MaxUploadBytes())
	assert.Greater(t, cfg.BodyLimitBytes(), int(cfg.MaxUploadBytes()))
	assert.Empty(t, cfg.Dataset.Path)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SIMULATOR_TICK_INTERVAL", "10ms")
	t.Setenv("DATASET_PATH", "/data/mock.json")
	t.Setenv("UPLOAD_MAX_SIZE_MB", "20")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 10*time.Millisecond, cfg.Simulator.TickInterval)
	assert.Equal(t, "/data/mock.json", cfg.Dataset.Path)
	assert.Equal(t, int64(20<<20), cfg.MaxUploadBytes())
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	yaml := "server:\n  port: \"7000\"\nsession:\n  idle_ttl: 5m\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Session.IdleTTL)
}

func TestReadSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pw")
	require.NoError(t, os.WriteFile(path, []byte("s3cret\n"), 0o600))
	t.Setenv("REDIS_PASSWORD", "")
	t.Setenv("REDIS_PASSWORD_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Redis.Password)
}
