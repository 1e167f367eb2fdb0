package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Store       StoreConfig
	Database    DatabaseConfig
	SQLite      SQLiteConfig
	Redis       RedisConfig
	Locks       LockConfig
	Cache       CacheConfig
	Events      EventsConfig
	Credentials CredentialsConfig
	Facade      FacadeConfig
	OTEL        OTELConfig
}

// AppConfig holds process-level settings
type AppConfig struct {
	Name     string
	Env      string
	LogLevel string
}

// StoreConfig selects the repository backend
type StoreConfig struct {
	// Driver is one of "memory", "postgres" or "sqlite".
	Driver string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// SQLiteConfig holds the embedded database settings
type SQLiteConfig struct {
	Path string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LockConfig configures the aggregate concurrency guard
type LockConfig struct {
	// Backend is "memory" for a single process or "redis" across processes.
	Backend string
	TTL     time.Duration
	Prefix  string
}

// CacheConfig configures read-through caching of places
type CacheConfig struct {
	Enabled    bool
	TTLSeconds int
	// WarmLimit is how many places are preloaded at startup; 0 disables warming.
	WarmLimit int
}

// EventsConfig configures post-commit domain event publication
type EventsConfig struct {
	Enabled bool
	Channel string
}

// CredentialsConfig configures password hashing
type CredentialsConfig struct {
	// Hasher is "bcrypt" or "argon2id".
	Hasher     string
	BcryptCost int
}

// FacadeConfig tunes the facade's unit of work
type FacadeConfig struct {
	RecomputeAttempts int
	// ForbidSelfReview rejects reviews written by the place owner.
	ForbidSelfReview bool
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "lodging-core"),
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", "memory"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "lodging"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "lodging.db"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Locks: LockConfig{
			Backend: getEnv("LOCK_BACKEND", "memory"),
			TTL:     time.Duration(getEnvAsInt("LOCK_TTL_MS", 10000)) * time.Millisecond,
			Prefix:  getEnv("LOCK_PREFIX", "lock:"),
		},
		Cache: CacheConfig{
			Enabled:    getEnvAsBool("CACHE_ENABLED", false),
			TTLSeconds: getEnvAsInt("CACHE_TTL_SECONDS", 300),
			WarmLimit:  getEnvAsInt("CACHE_WARM_LIMIT", 50),
		},
		Events: EventsConfig{
			Enabled: getEnvAsBool("EVENTS_ENABLED", false),
			Channel: getEnv("EVENTS_CHANNEL", "lodging:events"),
		},
		Credentials: CredentialsConfig{
			Hasher:     getEnv("PASSWORD_HASHER", "bcrypt"),
			BcryptCost: getEnvAsInt("BCRYPT_COST", 12),
		},
		Facade: FacadeConfig{
			RecomputeAttempts: getEnvAsInt("RECOMPUTE_ATTEMPTS", 3),
			ForbidSelfReview:  getEnvAsBool("FORBID_SELF_REVIEW", true),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "lodging-core"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown backend names
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	switch c.Locks.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown LOCK_BACKEND %q", c.Locks.Backend)
	}
	switch c.Credentials.Hasher {
	case "bcrypt", "argon2id":
	default:
		return fmt.Errorf("unknown PASSWORD_HASHER %q", c.Credentials.Hasher)
	}
	if c.Facade.RecomputeAttempts < 1 {
		return fmt.Errorf("RECOMPUTE_ATTEMPTS must be at least 1")
	}
	return nil
}

// NeedsRedis reports whether any configured component talks to Redis
func (c *Config) NeedsRedis() bool {
	return c.Locks.Backend == "redis" || c.Cache.Enabled || c.Events.Enabled
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
