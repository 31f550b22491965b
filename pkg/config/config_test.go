package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 80, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 750*time.Millisecond, cfg.RateLimit.MinInterval())
	assert.Equal(t, 4096*time.Second, cfg.Retry.MaxDelay)
	assert.Equal(t, 2*time.Hour, cfg.Retry.MaxElapsed)
	assert.Equal(t, 100, cfg.API.PageSize)
	assert.True(t, cfg.Output.AriaFormat)
	assert.True(t, cfg.Output.GroupByCollection)
	assert.Equal(t, "info", cfg.Logging.Level)

	require.NoError(t, cfg.Validate())
}

func TestMinInterval(t *testing.T) {
	tests := []struct {
		rpm      int
		expected time.Duration
	}{
		{80, 750 * time.Millisecond},
		{60, time.Second},
		{120, 500 * time.Millisecond},
		{0, 0},
	}

	for _, test := range tests {
		c := RateLimitConfig{RequestsPerMinute: test.rpm}
		assert.Equal(t, test.expected, c.MinInterval(), "rpm=%d", test.rpm)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LOCIMAGES_REQUESTS_PER_MINUTE", "40")
	t.Setenv("LOCIMAGES_PAGE_SIZE", "25")
	t.Setenv("LOCIMAGES_RETRY_MAX_ELAPSED", "30m")
	t.Setenv("LOCIMAGES_ROOT_DIR", "/tmp/loc-images")
	t.Setenv("LOCIMAGES_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, 40, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 25, cfg.API.PageSize)
	assert.Equal(t, 30*time.Minute, cfg.Retry.MaxElapsed)
	assert.Equal(t, "/tmp/loc-images", cfg.Output.RootDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("LOCIMAGES_REQUESTS_PER_MINUTE", "not-a-number")
	t.Setenv("LOCIMAGES_RETRY_MAX_ELAPSED", "soon")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, 80, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 2*time.Hour, cfg.Retry.MaxElapsed)
}

func TestLoadFromFile(t *testing.T) {
	content := `
rate_limit:
  requests_per_minute: 20
retry:
  max_delay: 1024s
  jitter_factor: 0.2
output:
  aria_format: false
  root_dir: "/data/images"
logging:
  level: warn
`
	path := filepath.Join(t.TempDir(), "locimages.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, 20, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 1024*time.Second, cfg.Retry.MaxDelay)
	assert.Equal(t, 0.2, cfg.Retry.JitterFactor)
	assert.False(t, cfg.Output.AriaFormat)
	assert.Equal(t, "/data/images", cfg.Output.RootDir)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Untouched values keep their defaults
	assert.Equal(t, 100, cfg.API.PageSize)
}

func TestLoadFromFileExplicitPathMustExist(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestApplyFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyFlags(map[string]interface{}{
		"requests-per-minute": 10,
		"aria-format":         false,
		"group-by-collection": false,
		"root-dir":            "/flags/dir",
		"max-elapsed":         time.Hour,
		"log-level":           "error",
	})

	assert.Equal(t, 10, cfg.RateLimit.RequestsPerMinute)
	assert.False(t, cfg.Output.AriaFormat)
	assert.False(t, cfg.Output.GroupByCollection)
	assert.Equal(t, "/flags/dir", cfg.Output.RootDir)
	assert.Equal(t, time.Hour, cfg.Retry.MaxElapsed)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero rate limit", func(c *Config) { c.RateLimit.RequestsPerMinute = 0 }},
		{"negative rate limit", func(c *Config) { c.RateLimit.RequestsPerMinute = -1 }},
		{"zero page size", func(c *Config) { c.API.PageSize = 0 }},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }},
		{"zero max delay", func(c *Config) { c.Retry.MaxDelay = 0 }},
		{"negative max elapsed", func(c *Config) { c.Retry.MaxElapsed = -time.Second }},
		{"jitter above one", func(c *Config) { c.Retry.JitterFactor = 1.5 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := DefaultConfig()
			test.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadLayersSources(t *testing.T) {
	content := `
rate_limit:
  requests_per_minute: 20
logging:
  level: warn
`
	path := filepath.Join(t.TempDir(), "locimages.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	// Env overrides file, flags override env
	t.Setenv("LOCIMAGES_REQUESTS_PER_MINUTE", "40")

	cfg, err := Load(path, map[string]interface{}{"log-level": "debug"})
	require.NoError(t, err)

	assert.Equal(t, 40, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, "debug", cfg.Logging.Level)
}
