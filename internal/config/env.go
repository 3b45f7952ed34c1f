package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig mirrors Config for environment parsing. Pointer fields
// distinguish "unset" from zero values so the overlay never clobbers an
// earlier layer with a default.
type envConfig struct {
	BaseURL        *string            `env:"AUTH_BASE_URL"`
	APIVersion     *string            `env:"AUTH_API_VERSION"`
	RequestTimeout *string            `env:"AUTH_REQUEST_TIMEOUT"`
	ConnectTimeout *string            `env:"AUTH_CONNECT_TIMEOUT"`
	MaxRetries     *int               `env:"AUTH_MAX_RETRIES"`
	RetryBaseDelay *string            `env:"AUTH_RETRY_BASE_DELAY"`
	LoggingEnabled *bool              `env:"AUTH_LOGGING_ENABLED"`
	DefaultHeaders map[string]string  `env:"AUTH_DEFAULT_HEADERS"`
	StorePath      *string            `env:"AUTH_STORE_PATH"`
	StoreKey       *string            `env:"AUTH_STORE_KEY"`
}

// parseEnv overlays cfg with values from AUTH_* environment variables.
// Duration variables use Go syntax, e.g. AUTH_REQUEST_TIMEOUT=15s.
func parseEnv(cfg *Config) {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		panic(err)
	}
	applyEnv(cfg, &ec)
}

func applyEnv(cfg *Config, ec *envConfig) {
	if ec.BaseURL != nil {
		cfg.BaseURL = *ec.BaseURL
	}
	if ec.APIVersion != nil {
		cfg.APIVersion = *ec.APIVersion
	}
	if ec.RequestTimeout != nil {
		cfg.RequestTimeout = mustParseDuration(*ec.RequestTimeout)
	}
	if ec.ConnectTimeout != nil {
		cfg.ConnectTimeout = mustParseDuration(*ec.ConnectTimeout)
	}
	if ec.MaxRetries != nil {
		cfg.MaxRetries = *ec.MaxRetries
	}
	if ec.RetryBaseDelay != nil {
		cfg.RetryBaseDelay = mustParseDuration(*ec.RetryBaseDelay)
	}
	if ec.LoggingEnabled != nil {
		cfg.LoggingEnabled = *ec.LoggingEnabled
	}
	if len(ec.DefaultHeaders) > 0 {
		cfg.DefaultHeaders = ec.DefaultHeaders
	}
	if ec.StorePath != nil {
		cfg.StorePath = *ec.StorePath
	}
	if ec.StoreKey != nil {
		cfg.StoreKey = *ec.StoreKey
	}
}

func mustParseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(err)
	}
	return d
}
