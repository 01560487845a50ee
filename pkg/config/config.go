package config

import (
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Analytics
	Analytics AnalyticsConfig

	// API rate limit
	RateLimit RateLimitConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
	MetricsPort    string
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

// AnalyticsConfig holds settings for dashboard computation
type AnalyticsConfig struct {
	Timezone         string  // IANA zone for weekday/duration/daily grouping
	StartingEquity   float64 // drawdown baseline
	HistogramBuckets int
	CacheTTL         time.Duration
	RefreshSchedule  string        // cron expression for dashboard_refresh
	RefreshTTL       time.Duration // lifetime of dashboards warmed by dashboard_refresh
}

// Location resolves the configured time zone
func (a AnalyticsConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", a.Timezone, err)
	}
	return loc, nil
}

// refreshParser matches the scheduler's six-field cron syntax
var refreshParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// RefreshInterval returns the longest gap between two dashboard_refresh runs
func (a AnalyticsConfig) RefreshInterval() (time.Duration, error) {
	schedule, err := refreshParser.Parse(a.RefreshSchedule)
	if err != nil {
		return 0, fmt.Errorf("parse refresh schedule %q: %w", a.RefreshSchedule, err)
	}

	// 주말 공백까지 잡히도록 연속 실행 간격을 충분히 샘플링
	prev := schedule.Next(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	var longest time.Duration
	for i := 0; i < 64 && !prev.IsZero(); i++ {
		next := schedule.Next(prev)
		if next.IsZero() {
			break
		}
		longest = max(longest, next.Sub(prev))
		prev = next
	}
	return longest, nil
}

// RateLimitConfig holds per-client API limits
type RateLimitConfig struct {
	Requests int
	Window   time.Duration

	// TrustedProxies lists proxy addresses or CIDRs whose X-Forwarded-For is honoured
	TrustedProxies []string
}

// TrustedProxyPrefixes parses TrustedProxies; bare addresses become single-host prefixes
func (r RateLimitConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(r.TrustedProxies))
	for _, entry := range r.TrustedProxies {
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("parse trusted proxy %q: %w", entry, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("parse trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		// Analytics
		Analytics: AnalyticsConfig{
			Timezone:         getEnv("ANALYTICS_TIMEZONE", "UTC"),
			StartingEquity:   getEnvAsFloat("ANALYTICS_STARTING_EQUITY", 0),
			HistogramBuckets: getEnvAsInt("ANALYTICS_HISTOGRAM_BUCKETS", 10),
			CacheTTL:         getEnvAsDuration("ANALYTICS_CACHE_TTL", "5m"),
			RefreshSchedule:  getEnv("ANALYTICS_REFRESH_SCHEDULE", "0 */15 * * * *"),
			RefreshTTL:       getEnvAsDuration("ANALYTICS_REFRESH_TTL", "1h"),
		},

		RateLimit: RateLimitConfig{
			Requests:       getEnvAsInt("RATE_LIMIT_REQUESTS", 60),
			Window:         getEnvAsDuration("RATE_LIMIT_WINDOW", "1m"),
			TrustedProxies: getEnvAsList("RATE_LIMIT_TRUSTED_PROXIES"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if _, err := c.Analytics.Location(); err != nil {
		return fmt.Errorf("ANALYTICS_TIMEZONE: %w", err)
	}

	if c.Analytics.HistogramBuckets < 1 {
		return fmt.Errorf("ANALYTICS_HISTOGRAM_BUCKETS must be at least 1, got %d", c.Analytics.HistogramBuckets)
	}

	// 사전 계산 결과가 다음 갱신 전에 만료되면 안 됨
	interval, err := c.Analytics.RefreshInterval()
	if err != nil {
		return fmt.Errorf("ANALYTICS_REFRESH_SCHEDULE: %w", err)
	}
	if c.Analytics.RefreshTTL < interval {
		return fmt.Errorf("ANALYTICS_REFRESH_TTL (%s) must cover the refresh interval (%s)", c.Analytics.RefreshTTL, interval)
	}

	if c.RateLimit.Requests < 1 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}

	if _, err := c.RateLimit.TrustedProxyPrefixes(); err != nil {
		return fmt.Errorf("RATE_LIMIT_TRUSTED_PROXIES: %w", err)
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",         // Current directory
		"backend/.env", // From project root
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

// getEnvAsList splits a comma-separated value, dropping blank entries
func getEnvAsList(key string) []string {
	parts := strings.Split(os.Getenv(key), ",")
	return lo.Compact(lo.Map(parts, func(p string, _ int) string {
		return strings.TrimSpace(p)
	}))
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
