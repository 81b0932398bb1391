package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven settings for the gamification service.
type Config struct {
	Port string

	// Storage: "postgres" (default) or "memory" for local runs without a database.
	StorageDriver string

	// PostgreSQL
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBMaxConns int32

	// Redis (leaderboard cache). Empty address disables the cache.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Auth
	JWTSecret      string
	JWTIssuer      string
	CronSecretHash string

	// Engine
	Location            *time.Location
	StoreTimeout        time.Duration
	LeaderboardCacheTTL time.Duration

	// HTTP
	TradeRateLimit float64 // requests per second per user
	TradeRateBurst int
	CORSOrigins    []string

	RunMigrations   bool
	EnableScheduler bool
	LogLevel        string
}

// LoadConfig reads environment variables (optionally via .env) into Config.
func LoadConfig() (*Config, error) {
	// Ignore error so the service still starts when .env is missing.
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "postgres")),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "trademind"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTIssuer:      getEnv("JWT_ISSUER", ""),
		CronSecretHash: getEnv("CRON_SECRET_HASH", ""),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),

		RunMigrations:   getEnv("RUN_MIGRATIONS", "true") == "true",
		EnableScheduler: getEnv("ENABLE_SCHEDULER", "true") == "true",
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.DBMaxConns, err = getInt32("DB_MAX_CONNS", 10); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.TradeRateBurst, err = getInt("TRADE_RATE_BURST", 10); err != nil {
		return nil, err
	}
	if cfg.TradeRateLimit, err = getFloat("TRADE_RATE_LIMIT", 5); err != nil {
		return nil, err
	}
	if cfg.StoreTimeout, err = getDuration("STORE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.LeaderboardCacheTTL, err = getDuration("LEADERBOARD_CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}

	tz := getEnv("TIMEZONE", "America/New_York")
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.TradeRateLimit <= 0 || c.TradeRateBurst <= 0 {
		return fmt.Errorf("TRADE_RATE_LIMIT and TRADE_RATE_BURST must be positive")
	}
	return nil
}

// PostgresURL returns the connection URL shared by the pool and the migrator.
func (c *Config) PostgresURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	return u.String()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getInt32(key string, def int32) (int32, error) {
	n, err := getInt(key, int(def))
	return int32(n), err
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
