package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("PROVIDER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, ProviderYahooFinviz, cfg.Provider.Name)
	assert.Equal(t, 2, cfg.Provider.MaxRetries)
	assert.Equal(t, 15*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 4, cfg.Analysis.Concurrency)
	assert.Equal(t, 10*time.Minute, cfg.Redis.CacheTTL)
}

func TestLoadWithCustomValues(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("PROVIDER", "Yahoo")
	t.Setenv("PROVIDER_MAX_RETRIES", "5")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("WATCHLIST", "aapl, msft,,nvda ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, ProviderYahoo, cfg.Provider.Name)
	assert.Equal(t, 5, cfg.Provider.MaxRetries)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, cfg.Watch.Tickers)
}

func TestValidateInvalidEnv(t *testing.T) {
	t.Setenv("ENV", "invalid")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateInvalidProvider(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("PROVIDER", "bloomberg")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateConcurrency(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("PROVIDER", "")
	t.Setenv("ANALYSIS_CONCURRENCY", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "2h")
	assert.Equal(t, 2*time.Hour, getEnvAsDuration("TEST_DURATION", "1h"))

	t.Setenv("TEST_DURATION", "bogus")
	assert.Equal(t, time.Hour, getEnvAsDuration("TEST_DURATION", "1h"))
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("TEST_INT", "100")
	assert.Equal(t, 100, getEnvAsInt("TEST_INT", 50))

	t.Setenv("TEST_INT", "abc")
	assert.Equal(t, 50, getEnvAsInt("TEST_INT", 50))
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	assert.True(t, getEnvAsBool("TEST_BOOL", false))
}

func TestGetEnvAsList(t *testing.T) {
	t.Setenv("TEST_LIST", "")
	assert.Nil(t, getEnvAsList("TEST_LIST"))

	t.Setenv("TEST_LIST", "brk.b, tsla")
	assert.Equal(t, []string{"BRK.B", "TSLA"}, getEnvAsList("TEST_LIST"))
}
