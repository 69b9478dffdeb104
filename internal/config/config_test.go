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
	cfg, err := LoadWithPath(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "booking-wizard", cfg.TaskQueue)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.BackendTimeout)
	assert.False(t, cfg.CacheEnabled())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SERVER_PORT=9090\nREDIS_ADDR=localhost:6379\nSESSION_IDLE_TIMEOUT=5m\n"), 0o600))
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := LoadWithPath(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.ServerPort)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 5*time.Minute, cfg.SessionIdleTimeout)
	assert.True(t, cfg.CacheEnabled())
}

func TestValidate(t *testing.T) {
	valid := Config{
		ServerPort:         "8080",
		DatabaseDSN:        "dsn",
		BackendBaseURL:     "http://backend",
		TaskQueue:          "q",
		BackendTimeout:     time.Second,
		SessionIdleTimeout: time.Minute,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no backend", func(c *Config) { c.BackendBaseURL = "" }},
		{"no dsn", func(c *Config) { c.DatabaseDSN = "" }},
		{"zero idle timeout", func(c *Config) { c.SessionIdleTimeout = 0 }},
		{"negative backend timeout", func(c *Config) { c.BackendTimeout = -time.Second }},
		{"negative redis db", func(c *Config) { c.RedisDB = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
