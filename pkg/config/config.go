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

// Market data sources
const (
	SourceRequest  = "request"  // 요청 본문에 포함된 market_data 사용
	SourcePostgres = "postgres" // 서버 보유 스냅샷 (cron 갱신)
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Market data
	MarketData MarketDataConfig

	// Pricing model
	Pricing PricingConfig

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Rate limiting (클라이언트별)
	RateLimit RateLimitConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool

	// Client
	APIURL string // remote 명령 대상
}

// MarketDataConfig selects where server-side market data comes from
type MarketDataConfig struct {
	Source  string
	Refresh string // cron spec (robfig/cron, seconds 필드 지원)
}

// PricingConfig selects the option pricer used by the engine
type PricingConfig struct {
	Model         string // black_scholes, binomial, merton_jump
	BinomialSteps int    // 1..10000

	// Merton jump-diffusion: 연간 점프 빈도, 로그 점프 평균/표준편차
	JumpIntensity float64
	JumpMean      float64
	JumpVol       float64
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool

	ResultTTL time.Duration // 계산 결과 캐시 TTL
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RateLimitConfig holds per-client request limits
type RateLimitConfig struct {
	RPS   int
	Burst int

	TrustedProxies []string      // X-Forwarded-For 를 신뢰할 프록시 (CIDR 또는 IP)
	IdleTTL        time.Duration // 미사용 클라이언트 제한기 보관 시간
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		MarketData: MarketDataConfig{
			Source:  getEnv("MARKET_DATA_SOURCE", SourceRequest),
			Refresh: getEnv("MARKET_DATA_REFRESH", "@every 1m"),
		},

		Pricing: PricingConfig{
			Model:         getEnv("PRICING_MODEL", "black_scholes"),
			BinomialSteps: getEnvAsInt("BINOMIAL_STEPS", 500),
			JumpIntensity: getEnvAsFloat("JUMP_INTENSITY", 0),
			JumpMean:      getEnvAsFloat("JUMP_MEAN", 0),
			JumpVol:       getEnvAsFloat("JUMP_VOL", 0),
		},

		// Database
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "optrisk"),
			User:            getEnv("DB_USER", "optrisk"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:      getEnv("REDIS_HOST", "localhost"),
			Port:      getEnv("REDIS_PORT", "6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvAsInt("REDIS_DB", 0),
			Enabled:   getEnvAsBool("REDIS_ENABLED", false),
			ResultTTL: getEnvAsDuration("RESULT_CACHE_TTL", "10m"),
		},

		RateLimit: RateLimitConfig{
			RPS:            getEnvAsInt("RATE_LIMIT_RPS", 50),
			Burst:          getEnvAsInt("RATE_LIMIT_BURST", 100),
			TrustedProxies: getEnvAsList("RATE_LIMIT_TRUSTED_PROXIES"),
			IdleTTL:        getEnvAsDuration("RATE_LIMIT_IDLE_TTL", "5m"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),

		APIURL: getEnv("RISK_API_URL", "http://localhost:8080"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// UsesSnapshot reports whether the server holds its own market data
func (c *Config) UsesSnapshot() bool {
	return c.MarketData.Source == SourcePostgres
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.MarketData.Source {
	case SourceRequest:
	case SourcePostgres:
		// 스냅샷 모드에서만 DB 필요
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when MARKET_DATA_SOURCE=%s", SourcePostgres)
		}
	default:
		return fmt.Errorf("MARKET_DATA_SOURCE must be one of: %s, %s", SourceRequest, SourcePostgres)
	}

	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
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

// getEnvAsList splits a comma separated value, dropping empty items
func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
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
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
