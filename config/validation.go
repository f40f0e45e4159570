package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks every field and reports all problems at once
func ValidateConfig(cfg *Config) error {
	var errs []ValidationError

	required := map[string]string{
		"POSTGRES_HOST": cfg.DBHost,
		"POSTGRES_PORT": cfg.DBPort,
		"POSTGRES_USER": cfg.DBUser,
		"POSTGRES_DB":   cfg.DBName,
		"SERVER_PORT":   cfg.ServerPort,
	}
	for _, field := range []string{"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_DB", "SERVER_PORT"} {
		if required[field] == "" {
			errs = append(errs, ValidationError{Field: field, Message: "is required"})
		}
	}

	if cfg.DBPassword == "" {
		if cfg.Environment == Production {
			errs = append(errs, ValidationError{Field: "postgres_password", Message: "secret is required"})
		} else {
			errs = append(errs, ValidationError{Field: "POSTGRES_PASSWORD", Message: "is required"})
		}
	}

	for field, port := range map[string]string{"POSTGRES_PORT": cfg.DBPort, "SERVER_PORT": cfg.ServerPort} {
		if port == "" {
			continue
		}
		if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("invalid port %q", port)})
		}
	}

	if cfg.DBMaxOpenConns <= 0 {
		errs = append(errs, ValidationError{Field: "DB_MAX_OPEN_CONNS", Message: "must be positive"})
	}
	if cfg.DBMaxIdleConns < 0 || cfg.DBMaxIdleConns > cfg.DBMaxOpenConns {
		errs = append(errs, ValidationError{Field: "DB_MAX_IDLE_CONNS", Message: "must be between 0 and DB_MAX_OPEN_CONNS"})
	}
	if cfg.RateLimitRequests <= 0 {
		errs = append(errs, ValidationError{Field: "RATE_LIMIT_REQUESTS", Message: "must be positive"})
	}
	if cfg.RateLimitWindow <= 0 {
		errs = append(errs, ValidationError{Field: "RATE_LIMIT_WINDOW", Message: "must be positive"})
	}
	if cfg.Environment == Production && len(cfg.CORSAllowedOrigins) == 0 {
		errs = append(errs, ValidationError{Field: "CORS_ALLOWED_ORIGINS", Message: "is required in production"})
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{Field: "LOG_LEVEL", Message: fmt.Sprintf("unknown level %q", cfg.LogLevel)})
	}

	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(msgs, "\n"))
	}

	return nil
}
