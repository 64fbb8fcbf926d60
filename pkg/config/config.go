package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Redis snapshot cache
	Redis RedisConfig

	// Market data provider
	Provider ProviderConfig

	// Analysis
	Analysis AnalysisConfig

	// Watchlist scheduler
	Watch WatchConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	CacheTTL time.Duration
}

// ProviderConfig selects and tunes the market data provider
type ProviderConfig struct {
	Name          string // yahoo, finviz, yahoo+finviz
	YahooBaseURL  string
	FinvizBaseURL string
	UserAgent     string
	Timeout       time.Duration
	MaxRetries    int
	RateLimit     int // requests per second, per upstream
}

// AnalysisConfig holds engine settings that are not part of the YAML weights file
type AnalysisConfig struct {
	ConfigPath  string // optional YAML with weights/thresholds
	Concurrency int    // tickers analyzed in parallel
}

// WatchConfig holds the cron watchlist settings
type WatchConfig struct {
	Tickers    []string
	Schedule   string
	RetryDelay time.Duration
}

// Providers accepted by PROVIDER
const (
	ProviderYahoo       = "yahoo"
	ProviderFinviz      = "finviz"
	ProviderYahooFinviz = "yahoo+finviz"
)

// Load reads configuration from environment variables
// ⭐ SSOT: only this function calls os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			CacheTTL: getEnvAsDuration("CACHE_TTL", "10m"),
		},

		Provider: ProviderConfig{
			Name:          strings.ToLower(getEnv("PROVIDER", ProviderYahooFinviz)),
			YahooBaseURL:  getEnv("YAHOO_BASE_URL", "https://query2.finance.yahoo.com"),
			FinvizBaseURL: getEnv("FINVIZ_BASE_URL", "https://finviz.com"),
			UserAgent:     getEnv("PROVIDER_USER_AGENT", "Mozilla/5.0 (compatible; stock-analysis/1.0)"),
			Timeout:       getEnvAsDuration("PROVIDER_TIMEOUT", "15s"),
			MaxRetries:    getEnvAsInt("PROVIDER_MAX_RETRIES", 2),
			RateLimit:     getEnvAsInt("PROVIDER_RATE_LIMIT", 5),
		},

		Analysis: AnalysisConfig{
			ConfigPath:  getEnv("ANALYSIS_CONFIG", ""),
			Concurrency: getEnvAsInt("ANALYSIS_CONCURRENCY", 4),
		},

		Watch: WatchConfig{
			Tickers:    getEnvAsList("WATCHLIST"),
			Schedule:   getEnv("WATCH_SCHEDULE", "0 30 16 * * 1-5"),
			RetryDelay: getEnvAsDuration("WATCH_RETRY_DELAY", "1m"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Provider.Name {
	case ProviderYahoo, ProviderFinviz, ProviderYahooFinviz:
	default:
		return fmt.Errorf("PROVIDER must be one of: %s, %s, %s", ProviderYahoo, ProviderFinviz, ProviderYahooFinviz)
	}

	if c.Provider.MaxRetries < 0 {
		return fmt.Errorf("PROVIDER_MAX_RETRIES must be >= 0")
	}

	if c.Provider.RateLimit <= 0 {
		return fmt.Errorf("PROVIDER_RATE_LIMIT must be > 0")
	}

	if c.Analysis.Concurrency <= 0 {
		return fmt.Errorf("ANALYSIS_CONCURRENCY must be > 0")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value, upper-casing tickers
func getEnvAsList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToUpper(part))
		}
	}
	return out
}
