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

// Data source kinds
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production, test

	// Price data
	Data DataConfig

	// Database (only used when Data.Source is postgres)
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Pipeline defaults for requests that omit a parameter
	Pipeline PipelineConfig

	// Scheduled report
	Report ReportConfig

	// API rate limit per client
	RateLimitPerMinute int

	// Logging
	LogLevel  string
	LogFormat string
}

// DataConfig selects where the price table is loaded from
type DataConfig struct {
	Source       string // csv, postgres
	CSVPath      string // local path or http(s) URL
	FetchTimeout time.Duration
	PresetsPath  string // optional YAML parameter presets
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

// PipelineConfig holds the default analysis parameters
type PipelineConfig struct {
	TopN        int
	OrderPct    int
	StopLossPct int
}

// ReportConfig holds the lead report job settings
type ReportConfig struct {
	Schedule     string // cron expression with seconds
	LookbackDays int
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Data: DataConfig{
			Source:       strings.ToLower(getEnv("DATA_SOURCE", SourceCSV)),
			CSVPath:      getEnv("DATA_CSV_PATH", "Equitydata.csv"),
			FetchTimeout: getEnvAsDuration("DATA_FETCH_TIMEOUT", "30s"),
			PresetsPath:  getEnv("PRESETS_PATH", ""),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 5),
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

		Pipeline: PipelineConfig{
			TopN:        getEnvAsInt("PIPELINE_TOP_N", 1),
			OrderPct:    getEnvAsInt("PIPELINE_ORDER_PCT", 1),
			StopLossPct: getEnvAsInt("PIPELINE_STOP_LOSS_PCT", 1),
		},

		Report: ReportConfig{
			Schedule:     getEnv("REPORT_SCHEDULE", "0 30 18 * * 1-5"),
			LookbackDays: getEnvAsInt("REPORT_LOOKBACK_DAYS", 30),
		},

		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
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

	switch c.Data.Source {
	case SourceCSV:
		if c.Data.CSVPath == "" {
			return fmt.Errorf("DATA_CSV_PATH is required when DATA_SOURCE=csv")
		}
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATA_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("DATA_SOURCE must be one of: csv, postgres")
	}

	if c.Pipeline.TopN < 1 {
		return fmt.Errorf("PIPELINE_TOP_N must be >= 1")
	}
	if c.Pipeline.OrderPct < -100 || c.Pipeline.StopLossPct < -100 {
		return fmt.Errorf("PIPELINE_ORDER_PCT and PIPELINE_STOP_LOSS_PCT must be >= -100")
	}
	if c.Report.LookbackDays < 1 {
		return fmt.Errorf("REPORT_LOOKBACK_DAYS must be >= 1")
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
