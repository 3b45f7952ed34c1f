package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseEnvOverlay(t *testing.T) {
	t.Setenv("AUTH_BASE_URL", "https://env.example.com")
	t.Setenv("AUTH_REQUEST_TIMEOUT", "7s")
	t.Setenv("AUTH_MAX_RETRIES", "5")
	t.Setenv("AUTH_LOGGING_ENABLED", "true")
	t.Setenv("AUTH_STORE_KEY", "env-key")

	var cfg Config
	cfg.LoadDefaults()
	parseEnv(&cfg)

	require.Equal(t, "https://env.example.com", cfg.BaseURL)
	require.Equal(t, 7*time.Second, cfg.RequestTimeout)
	require.Equal(t, 5, cfg.MaxRetries)
	require.True(t, cfg.LoggingEnabled)
	require.Equal(t, "env-key", cfg.StoreKey)

	// unset variables leave defaults alone
	require.Equal(t, "v1", cfg.APIVersion)
	require.Equal(t, "auth.db", cfg.StorePath)
}

func TestParseEnvNoVariables(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults()
	before := cfg

	parseEnv(&cfg)
	require.Equal(t, before, cfg)
}
