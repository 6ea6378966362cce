package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Вспомогательные хелперы.
func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

// Полный корректный YAML с заданными значениями (не зависящими от дефолтов).
const sampleYAML = `
env: "prod"
api:
  base_url: "https://skills.example.com/api/v1"
  user_agent: "skilltrack-test"
session:
  backend: "redis"
  redis_url: "redis://localhost:6379/2"
  redis_key: "st:sess"
cache:
  disabled: true
  ttl: "5m"
timeouts:
  request: "3s"
  refresh: "2s"
`

// Минимально валидный YAML: всё остальное берётся из env-default.
const minimalYAML = `
env: "dev"
`

// Некорректный YAML — для проверки ошибок парсинга.
const brokenYAML = `
api:
  base_url: [unclosed
`

func TestLoad_WithExplicitPath_OK(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "https://skills.example.com/api/v1", cfg.API.BaseURL)
	require.Equal(t, "skilltrack-test", cfg.API.UserAgent)
	require.Equal(t, SessionBackendRedis, cfg.Session.Backend)
	require.Equal(t, "redis://localhost:6379/2", cfg.Session.RedisURL)
	require.Equal(t, "st:sess", cfg.Session.RedisKey)
	require.True(t, cfg.Cache.Disabled)
	require.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	require.Equal(t, 3*time.Second, cfg.Timeouts.Request)
	require.Equal(t, 2*time.Second, cfg.Timeouts.Refresh)
}

func TestLoad_Minimal_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "min.yaml", minimalYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, "http://localhost:8000/api/v1", cfg.API.BaseURL)
	require.Equal(t, "skilltrack-cli", cfg.API.UserAgent)
	require.Equal(t, SessionBackendFile, cfg.Session.Backend)
	require.Equal(t, "skilltrack:session", cfg.Session.RedisKey)
	require.False(t, cfg.Cache.Disabled)
	require.Equal(t, 60*time.Second, cfg.Cache.TTL)
	require.Equal(t, 15*time.Second, cfg.Timeouts.Request)
	require.Equal(t, 10*time.Second, cfg.Timeouts.Refresh)
}

func TestLoad_EnvOverlaysFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)

	t.Setenv("API_BASE_URL", "http://127.0.0.1:9000/api/v1")
	t.Setenv("REQUEST_TIMEOUT", "7s")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:9000/api/v1", cfg.API.BaseURL)
	require.Equal(t, 7*time.Second, cfg.Timeouts.Request)
}

func TestLoad_WithExplicitPath_FileDoesNotExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "stat failed")
}

func TestLoad_WithExplicitPath_BrokenYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "broken.yaml", brokenYAML)

	_, err := Load(cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_WithCONFIG_PATH_OK(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "from_env_path.yaml", minimalYAML)

	t.Setenv("CONFIG_PATH", cfgPath)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "dev", cfg.Env)
}

func TestLoad_WithLocalYAML_OK(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, ".", "local.yaml", sampleYAML)

	t.Setenv("CONFIG_PATH", "")
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
}

func TestLoad_EnvOnly_UsesDefaults(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("SESSION_BACKEND", "memory")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, SessionBackendMemory, cfg.Session.Backend)
	require.Equal(t, "http://localhost:8000/api/v1", cfg.API.BaseURL)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() Config {
		return Config{
			API:     APIConfig{BaseURL: "http://localhost:8000/api/v1"},
			Session: SessionConfig{Backend: SessionBackendFile},
			Cache:   CacheConfig{TTL: time.Minute},
		}
	}

	cases := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"relative base url", func(c *Config) { c.API.BaseURL = "/api/v1" }, false},
		{"unknown backend", func(c *Config) { c.Session.Backend = "sqlite" }, false},
		{"redis without url", func(c *Config) { c.Session.Backend = SessionBackendRedis }, false},
		{"redis with url", func(c *Config) {
			c.Session.Backend = SessionBackendRedis
			c.Session.RedisURL = "redis://localhost:6379/0"
		}, true},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }, false},
		{"zero ttl but disabled", func(c *Config) {
			c.Cache.TTL = 0
			c.Cache.Disabled = true
		}, true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := base()
			tc.mutate(&c)
			err := c.Validate()
			if tc.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}
