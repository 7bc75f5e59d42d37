package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
server:
  port: "9090"
  keepalive: 20s
redis:
  addr: localhost:6379
engine:
  retention: 3h
  max_participants: 50
log:
  level: debug
`

func TestLoadYAMLWithEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("ENGINE_MAX_PARTICIPANTS", "120")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "20s", cfg.Server.Keepalive)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, "3h", cfg.Engine.Retention)
	assert.Equal(t, 120, cfg.Engine.MaxParticipants)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://quiz@localhost/quiz")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://quiz@localhost/quiz", cfg.Postgres.URL)
	assert.Empty(t, cfg.Server.Port)
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [port"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 2*time.Hour, Duration("", 2*time.Hour))
	assert.Equal(t, 90*time.Second, Duration("90s", time.Hour))
	assert.Equal(t, time.Hour, Duration("soon", time.Hour))
	assert.Equal(t, time.Hour, Duration("-5m", time.Hour))
}

func TestInt(t *testing.T) {
	assert.Equal(t, 32, Int(0, 32))
	assert.Equal(t, 8, Int(8, 32))
}
