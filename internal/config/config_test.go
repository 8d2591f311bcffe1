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

	cfg := Load()
	assert.Equal(t, "dev", cfg.Env)
	assert.True(t, cfg.Debug)
	assert.False(t, cfg.Production())
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "http://localhost:5000", cfg.APIBaseURL)
	assert.Zero(t, cfg.APITimeout, "requests only end with the transport or the caller")
	assert.Equal(t, "cookie", cfg.SessionBackend)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, 10, cfg.LoginRatePerMin)
	assert.Nil(t, cfg.CORSOrigins)
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ENV", "production")
	t.Setenv("API_BASE_URL", "https://api.example.uz/")
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("SESSION_BACKEND", "Redis")
	t.Setenv("CORS_ORIGINS", "https://a.uz, https://b.uz,")
	t.Setenv("LOGIN_RATE_PER_MIN", "3")

	cfg := Load()
	assert.True(t, cfg.Production())
	assert.False(t, cfg.Debug)
	assert.Equal(t, "https://api.example.uz", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.APITimeout)
	assert.Equal(t, "redis", cfg.SessionBackend)
	assert.Equal(t, []string{"https://a.uz", "https://b.uz"}, cfg.CORSOrigins)
	assert.Equal(t, 3, cfg.LoginRatePerMin)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("API_TIMEOUT", "soon")
	t.Setenv("AVATAR_MAX_PX", "big")
	t.Setenv("DEBUG", "maybe")

	cfg := Load()
	assert.Zero(t, cfg.APITimeout)
	assert.Equal(t, 512, cfg.AvatarMaxPx)
	assert.True(t, cfg.Debug)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", ".env.qa"), []byte("HTTP_PORT=9999\nBUILD=qa-1\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("APP_ENV", "qa")
	t.Setenv("BUILD", "from-env")
	t.Cleanup(func() { os.Unsetenv("HTTP_PORT") })

	cfg := Load()
	assert.Equal(t, "9999", cfg.HTTPPort)
	assert.Equal(t, "from-env", cfg.Build)
}
