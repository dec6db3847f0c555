package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, ":8080", cfg.Server.WebSocket.Address)
	assert.Equal(t, int64(4096), cfg.Server.WebSocket.ReadLimit)
	assert.Equal(t, 10*time.Second, cfg.Server.WebSocket.WriteTimeout)
	assert.Equal(t, 1000, cfg.Server.MaxSessions)
	assert.Equal(t, 30*time.Minute, cfg.Server.SessionTTL)
	assert.Equal(t, time.Minute, cfg.Server.CleanupInterval)
	assert.Equal(t, "data/results.db", cfg.Store.Path)
	assert.False(t, cfg.Replay.Enabled)
	assert.Zero(t, cfg.Game.Seed)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
server:
  websocket:
    address: "127.0.0.1:9000"
    write_timeout: 3s
  max_sessions: 5
  session_ttl: 2m
replay:
  enabled: true
  directory: /tmp/replays
game:
  seed: 42
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.WebSocket.Address)
	assert.Equal(t, 3*time.Second, cfg.Server.WebSocket.WriteTimeout)
	assert.Equal(t, 5, cfg.Server.MaxSessions)
	assert.Equal(t, 2*time.Minute, cfg.Server.SessionTTL)
	assert.True(t, cfg.Replay.Enabled)
	assert.Equal(t, "/tmp/replays", cfg.Replay.Directory)
	assert.Equal(t, uint64(42), cfg.Game.Seed)
	// untouched keys keep their defaults
	assert.Equal(t, int64(4096), cfg.Server.WebSocket.ReadLimit)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: debug\n")
	t.Setenv("TRIAD_LOGGING_LEVEL", "warn")
	t.Setenv("TRIAD_SERVER_SESSION_TTL", "5m")
	t.Setenv("TRIAD_GAME_SEED", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 5*time.Minute, cfg.Server.SessionTTL)
	assert.Equal(t, uint64(7), cfg.Game.Seed)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"address", func(c *Config) { c.Server.WebSocket.Address = "" }, "server.websocket.address"},
		{"read limit", func(c *Config) { c.Server.WebSocket.ReadLimit = 0 }, "read_limit"},
		{"sessions", func(c *Config) { c.Server.MaxSessions = -1 }, "max_sessions"},
		{"ttl", func(c *Config) { c.Server.SessionTTL = 0 }, "session_ttl"},
		{"replay dir", func(c *Config) { c.Replay = ReplayConfig{Enabled: true} }, "replay.directory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
