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
	Env  string // development, staging, production, test

	// AllowedOrigins lists Origin values accepted on /ws/scan. Empty means
	// same-origin only; "*" accepts any origin.
	AllowedOrigins []string

	// Database (optional, result store is disabled when URL is empty)
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Market data providers
	Yahoo YahooConfig
	TWSE  TWSEConfig

	// Scan defaults
	Scan ScanConfig

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
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a result store should be opened
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// YahooConfig holds Yahoo Finance endpoint configuration
type YahooConfig struct {
	BaseURL    string
	RatePerSec float64
	Burst      int
}

// TWSEConfig holds the TWSE listing page configuration
type TWSEConfig struct {
	ListedURL string // 上市
	OTCURL    string // 上櫃
}

// ScanConfig holds defaults for a scan invocation
type ScanConfig struct {
	Workers       int
	LookbackYears int
	FetchTimeout  time.Duration
	Benchmark     string // overrides the strategy file when set
	StrategyFile  string
	UniverseFile  string
	Cron          string
	Timezone      string
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only function calling os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		AllowedOrigins: getEnvAsList("WS_ALLOWED_ORIGINS"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Yahoo: YahooConfig{
			BaseURL:    getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			RatePerSec: getEnvAsFloat("YAHOO_RATE_PER_SEC", 4),
			Burst:      getEnvAsInt("YAHOO_RATE_BURST", 2),
		},

		TWSE: TWSEConfig{
			ListedURL: getEnv("TWSE_LISTED_URL", "https://isin.twse.com.tw/isin/C_public.jsp?strMode=2"),
			OTCURL:    getEnv("TWSE_OTC_URL", "https://isin.twse.com.tw/isin/C_public.jsp?strMode=4"),
		},

		Scan: ScanConfig{
			Workers:       getEnvAsInt("SCAN_WORKERS", 4),
			LookbackYears: getEnvAsInt("SCAN_LOOKBACK_YEARS", 2),
			FetchTimeout:  getEnvAsDuration("SCAN_FETCH_TIMEOUT", "15s"),
			Benchmark:     getEnv("SCAN_BENCHMARK", ""),
			StrategyFile:  getEnv("STRATEGY_FILE", "config/strategy/swing_v1.yaml"),
			UniverseFile:  getEnv("UNIVERSE_FILE", "config/universe/tw_alpha16.yaml"),
			Cron:          getEnv("SCAN_CRON", "0 45 13 * * 1-5"),
			Timezone:      getEnv("SCAN_TIMEZONE", "Asia/Taipei"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	switch c.Env {
	case "development", "staging", "production", "test":
	default:
		return fmt.Errorf("ENV must be one of: development, staging, production, test")
	}

	if c.Scan.Workers <= 0 {
		return fmt.Errorf("SCAN_WORKERS must be > 0")
	}
	if c.Scan.LookbackYears <= 0 {
		return fmt.Errorf("SCAN_LOOKBACK_YEARS must be > 0")
	}
	if c.Scan.FetchTimeout <= 0 {
		return fmt.Errorf("SCAN_FETCH_TIMEOUT must be positive")
	}
	if _, err := time.LoadLocation(c.Scan.Timezone); err != nil {
		return fmt.Errorf("SCAN_TIMEZONE: %w", err)
	}

	return nil
}

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

func getEnvAsList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
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
