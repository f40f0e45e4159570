package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBSSLMode         string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	AutoMigrate       bool

	// Redis is optional; an empty URL selects the in-process rate limiter.
	RedisURL string

	// Rate limiting for mutating recipe routes
	RateLimitRequests int
	RateLimitWindow   time.Duration

	CORSAllowedOrigins []string
	LogLevel           string
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{Environment: env}

	switch env {
	case CI, Development, Test:
		if err := loadEnvConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
		}
	case Production:
		if err := loadProdConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load production configuration: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadEnvConfig reads every setting from the process environment, falling back to local defaults
func loadEnvConfig(cfg *Config) error {
	cfg.ServerPort = getEnv("SERVER_PORT", "8000")
	cfg.ServerHost = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.DBHost = getEnv("POSTGRES_HOST", "localhost")
	cfg.DBPort = getEnv("POSTGRES_PORT", "5432")
	cfg.DBUser = getEnv("POSTGRES_USER", "recipe_user")
	cfg.DBPassword = getEnv("POSTGRES_PASSWORD", "recipe_pass")
	cfg.DBName = getEnv("POSTGRES_DB", "recipe_db")
	cfg.DBSSLMode = getEnv("POSTGRES_SSLMODE", "disable")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.CORSAllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"))
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	return loadTuning(cfg)
}

// loadProdConfig loads configuration for production; the database password may only come from a Docker secret or the environment
func loadProdConfig(cfg *Config) error {
	cfg.ServerPort = getEnv("SERVER_PORT", "8000")
	cfg.ServerHost = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.DBHost = os.Getenv("POSTGRES_HOST")
	cfg.DBPort = getEnv("POSTGRES_PORT", "5432")
	cfg.DBUser = os.Getenv("POSTGRES_USER")
	cfg.DBName = os.Getenv("POSTGRES_DB")
	cfg.DBSSLMode = getEnv("POSTGRES_SSLMODE", "require")

	cfg.DBPassword = readSecret("postgres_password")
	if cfg.DBPassword == "" {
		cfg.DBPassword = os.Getenv("POSTGRES_PASSWORD")
	}
	cfg.RedisURL = readSecret("redis_url")
	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}

	cfg.CORSAllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	return loadTuning(cfg)
}

func loadTuning(cfg *Config) error {
	var err error
	if cfg.DBMaxOpenConns, err = getInt("DB_MAX_OPEN_CONNS", 25); err != nil {
		return err
	}
	if cfg.DBMaxIdleConns, err = getInt("DB_MAX_IDLE_CONNS", 25); err != nil {
		return err
	}
	if cfg.DBConnMaxLifetime, err = getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute); err != nil {
		return err
	}
	if cfg.RateLimitRequests, err = getInt("RATE_LIMIT_REQUESTS", 60); err != nil {
		return err
	}
	if cfg.RateLimitWindow, err = getDuration("RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return err
	}
	if v := os.Getenv("AUTO_MIGRATE"); v != "" {
		if cfg.AutoMigrate, err = strconv.ParseBool(v); err != nil {
			return fmt.Errorf("invalid AUTO_MIGRATE %q: %w", v, err)
		}
	}
	return nil
}

// DSN returns the libpq style connection string for the configured database
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
