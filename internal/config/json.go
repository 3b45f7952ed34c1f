package config

import (
	"encoding/json"
	"os"

	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/flagx"
	"github.com/avikshith-np/questions-auth-module-app-sub000/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept either "3s"-style strings or integer nanoseconds via timex.Duration.
type JSONConfig struct {
	BaseURL        string            `json:"base_url"`
	APIVersion     string            `json:"api_version"`
	RequestTimeout timex.Duration    `json:"request_timeout"`
	ConnectTimeout timex.Duration    `json:"connect_timeout"`
	MaxRetries     *int              `json:"max_retries"`
	RetryBaseDelay timex.Duration    `json:"retry_base_delay"`
	LoggingEnabled *bool             `json:"logging_enabled"`
	DefaultHeaders map[string]string `json:"default_headers"`
	StorePath      string            `json:"store_path"`
	StoreKey       string            `json:"store_key"`
}

// parseJSON overlays cfg with values from the JSON file named by the -c or
// -config flag. Absent file path means no overlay. Read or unmarshal errors
// panic; the caller may recover if desired.
func parseJSON(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	applyJSON(cfg, &jc)
}

func applyJSON(cfg *Config, jc *JSONConfig) {
	if jc.BaseURL != "" {
		cfg.BaseURL = jc.BaseURL
	}
	if jc.APIVersion != "" {
		cfg.APIVersion = jc.APIVersion
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.ConnectTimeout.Duration != 0 {
		cfg.ConnectTimeout = jc.ConnectTimeout.Duration
	}
	if jc.MaxRetries != nil {
		cfg.MaxRetries = *jc.MaxRetries
	}
	if jc.RetryBaseDelay.Duration != 0 {
		cfg.RetryBaseDelay = jc.RetryBaseDelay.Duration
	}
	if jc.LoggingEnabled != nil {
		cfg.LoggingEnabled = *jc.LoggingEnabled
	}
	if jc.DefaultHeaders != nil {
		cfg.DefaultHeaders = jc.DefaultHeaders
	}
	if jc.StorePath != "" {
		cfg.StorePath = jc.StorePath
	}
	if jc.StoreKey != "" {
		cfg.StoreKey = jc.StoreKey
	}
}
