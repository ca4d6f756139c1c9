package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8080\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "clipzone", cfg.Database.DBName)
	assert.Equal(t, "clips", cfg.Storage.BucketName)
	assert.Equal(t, 9091, cfg.Metrics.Port)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, time.Hour, cfg.Storage.URLExpiry)
	assert.Equal(t, 20, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 40, cfg.RateLimit.Burst)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9999
  host: 127.0.0.1
auth:
  jwtSecret: super-secret
  tokenTTL: 1h
redis:
  ttl: 5s
webhooks:
  - url: https://hooks.example.com/settlements
    secret: hook-secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "super-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 5*time.Second, cfg.Redis.TTL)
	require.Len(t, cfg.Webhooks, 1)
	assert.Equal(t, "https://hooks.example.com/settlements", cfg.Webhooks[0].URL)
	assert.Equal(t, "hook-secret", cfg.Webhooks[0].Secret)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
