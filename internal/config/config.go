// Package config holds runtime settings for the authentication SDK and the
// demo CLI. Values are layered: built-in defaults, then a JSON file (via
// -c/-config), then environment variables, then command-line flags. Later
// sources take precedence.
package config

import (
	"errors"
	"net/url"
	"time"
)

// Config is the enumerated configuration surface consumed by the facade.
type Config struct {
	// BaseURL is the root of the auth API, e.g. "https://api.example.com".
	// Required.
	BaseURL string

	// APIVersion is the version segment inserted after BaseURL, e.g. "v1".
	APIVersion string

	// RequestTimeout bounds each individual HTTP attempt. Retries get a
	// fresh window; the timeout is not cumulative.
	RequestTimeout time.Duration

	// ConnectTimeout bounds the connectivity probe.
	ConnectTimeout time.Duration

	// MaxRetries is how many times a retryable failure is retried, so the
	// total attempt count is MaxRetries+1.
	MaxRetries int

	// RetryBaseDelay is the base of the exponential backoff between
	// attempts (base, 2×base, 4×base, ...).
	RetryBaseDelay time.Duration

	// LoggingEnabled toggles SDK logging.
	LoggingEnabled bool

	// DefaultHeaders are attached to every request.
	DefaultHeaders map[string]string

	// StorePath is the sqlite file backing the secure credential store.
	StorePath string

	// StoreKey is the passphrase, handed over by the platform keystore,
	// from which the store's encryption key is derived.
	StoreKey string
}

// LoadDefaults populates c with sensible defaults. BaseURL has no default;
// it must come from a later layer.
func (c *Config) LoadDefaults() {
	c.APIVersion = "v1"
	c.RequestTimeout = 10 * time.Second
	c.ConnectTimeout = 3 * time.Second
	c.MaxRetries = 2
	c.RetryBaseDelay = 500 * time.Millisecond
	c.LoggingEnabled = false
	c.StorePath = "auth.db"
}

// Validate reports whether the config is usable for Configure.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base url is required")
	}
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return errors.New("base url is not a valid URL")
	}
	if c.MaxRetries < 0 {
		return errors.New("max retries must not be negative")
	}
	if c.StoreKey == "" {
		return errors.New("store key is required")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present), environment variables, and command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
