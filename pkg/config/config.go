package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the loc.gov image crawler
type Config struct {
	// API settings for loc.gov
	API APIConfig `yaml:"api" json:"api"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Retry and backoff configuration
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// APIConfig holds loc.gov API settings
type APIConfig struct {
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
	PageSize  int           `yaml:"page_size" json:"page_size"`
}

// RateLimitConfig holds rate limiting configuration.
//
// The loc.gov crawl limit is 80 requests per minute for the JSON API, with a
// one hour block for violators, so the default stays at the documented
// ceiling. See https://www.loc.gov/apis/json-and-yaml/
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// MinInterval returns the minimum spacing between request starts
func (c *RateLimitConfig) MinInterval() time.Duration {
	if c.RequestsPerMinute <= 0 {
		return 0
	}
	return time.Minute / time.Duration(c.RequestsPerMinute)
}

// RetryConfig holds retry and backoff configuration
type RetryConfig struct {
	// MaxDelay caps the exponential backoff curve. The default of 4096s is
	// just over the observed one hour temporary-ban window.
	MaxDelay time.Duration `yaml:"max_delay" json:"max_delay"`
	// MaxElapsed is the wall-clock retry budget for a single page fetch.
	// Zero means retry until the outage clears or the run is cancelled.
	MaxElapsed time.Duration `yaml:"max_elapsed" json:"max_elapsed"`
	// JitterFactor adds bounded randomness to backoff delays (0.0 to 1.0)
	JitterFactor float64 `yaml:"jitter_factor" json:"jitter_factor"`
}

// OutputConfig holds output formatting configuration
type OutputConfig struct {
	// AriaFormat emits URLs in aria2c's -i/--input-file format instead of a
	// plain newline-delimited list
	AriaFormat bool `yaml:"aria_format" json:"aria_format"`
	// GroupByCollection sets the aria2c "dir" option to the item's source
	// collection under RootDir
	GroupByCollection bool `yaml:"group_by_collection" json:"group_by_collection"`
	// RootDir is the root directory for aria2c downloads
	RootDir string `yaml:"root_dir" json:"root_dir"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Timeout:   30 * time.Second,
			UserAgent: "locimages/1.0 (+https://github.com/locimages/locimages)",
			PageSize:  100,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 80,
		},
		Retry: RetryConfig{
			MaxDelay:     4096 * time.Second,
			MaxElapsed:   2 * time.Hour,
			JitterFactor: 0.1,
		},
		Output: OutputConfig{
			AriaFormat:        true,
			GroupByCollection: true,
			RootDir:           ".",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if rpm := os.Getenv("LOCIMAGES_REQUESTS_PER_MINUTE"); rpm != "" {
		if val, err := strconv.Atoi(rpm); err == nil && val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}

	if pageSize := os.Getenv("LOCIMAGES_PAGE_SIZE"); pageSize != "" {
		if val, err := strconv.Atoi(pageSize); err == nil && val > 0 {
			c.API.PageSize = val
		}
	}

	if userAgent := os.Getenv("LOCIMAGES_USER_AGENT"); userAgent != "" {
		c.API.UserAgent = userAgent
	}

	if maxElapsed := os.Getenv("LOCIMAGES_RETRY_MAX_ELAPSED"); maxElapsed != "" {
		if val, err := time.ParseDuration(maxElapsed); err == nil && val >= 0 {
			c.Retry.MaxElapsed = val
		}
	}

	if rootDir := os.Getenv("LOCIMAGES_ROOT_DIR"); rootDir != "" {
		c.Output.RootDir = rootDir
	}

	if logLevel := os.Getenv("LOCIMAGES_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile looks for a config file in default locations
func (c *Config) findConfigFile() string {
	locations := []string{
		"locimages.yaml",
		"locimages.yml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations,
			filepath.Join(home, ".locimages.yaml"),
			filepath.Join(home, ".config", "locimages", "config.yaml"),
		)
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// ApplyFlags applies command-line flag overrides to the configuration
func (c *Config) ApplyFlags(flags map[string]interface{}) {
	for key, value := range flags {
		switch key {
		case "requests-per-minute":
			if v, ok := value.(int); ok && v > 0 {
				c.RateLimit.RequestsPerMinute = v
			}
		case "page-size":
			if v, ok := value.(int); ok && v > 0 {
				c.API.PageSize = v
			}
		case "max-elapsed":
			if v, ok := value.(time.Duration); ok {
				c.Retry.MaxElapsed = v
			}
		case "aria-format":
			if v, ok := value.(bool); ok {
				c.Output.AriaFormat = v
			}
		case "group-by-collection":
			if v, ok := value.(bool); ok {
				c.Output.GroupByCollection = v
			}
		case "root-dir":
			if v, ok := value.(string); ok && v != "" {
				c.Output.RootDir = v
			}
		case "log-level":
			if v, ok := value.(string); ok && v != "" {
				c.Logging.Level = v
			}
		}
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("requests_per_minute must be positive, got %d", c.RateLimit.RequestsPerMinute)
	}

	if c.API.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.API.PageSize)
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.API.Timeout)
	}

	if c.Retry.MaxDelay <= 0 {
		return fmt.Errorf("max_delay must be positive, got %s", c.Retry.MaxDelay)
	}

	if c.Retry.MaxElapsed < 0 {
		return fmt.Errorf("max_elapsed must not be negative, got %s", c.Retry.MaxElapsed)
	}

	if c.Retry.JitterFactor < 0 || c.Retry.JitterFactor > 1 {
		return fmt.Errorf("jitter_factor must be between 0 and 1, got %f", c.Retry.JitterFactor)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}

// Load builds the effective configuration: defaults, then config file, then
// environment variables, then command-line flags.
func Load(configFile string, flags map[string]interface{}) (*Config, error) {
	// Load .env file if present; missing is fine
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configFile); err != nil {
		return nil, err
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}

	cfg.ApplyFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
