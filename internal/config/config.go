// Package config loads and validates environment-based configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: field %q: %s", e.Field, e.Message)
}

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	DBDSN string
	Port  int

	// Mapping provider credentials. Either may be empty at startup; the
	// directions core reports a configuration error only when the provider
	// actually selected for an itinerary has no key.
	KakaoAPIKey  string
	GoogleAPIKey string

	// DomesticRatio is the in-Korea point fraction above which an itinerary
	// routes through Kakao. Defaults to 0.7.
	DomesticRatio float64

	// JWT authentication settings.
	JWTSecret       string // Required for auth endpoints; signing key for HS256.
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// Load reads and validates required environment variables.
// Returns a ConfigError for any missing or invalid value.
func Load() (*Config, error) {
	cfg := &Config{}

	dbDSN := os.Getenv("DB_DSN")
	if dbDSN == "" {
		return nil, &ConfigError{Field: "DB_DSN", Message: "required but not set"}
	}
	cfg.DBDSN = dbDSN

	// Provider keys are not required for bootstrap; the routing layer fails
	// with a distinct configuration error if the selected provider has none.
	cfg.KakaoAPIKey = os.Getenv("KAKAO_REST_API_KEY")
	cfg.GoogleAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")

	cfg.DomesticRatio = 0.7
	if raw := os.Getenv("DOMESTIC_RATIO"); raw != "" {
		ratio, err := strconv.ParseFloat(raw, 64)
		if err != nil || ratio <= 0 || ratio > 1 {
			return nil, &ConfigError{Field: "DOMESTIC_RATIO", Message: "must be a number in (0, 1]"}
		}
		cfg.DomesticRatio = ratio
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	// Not required at startup; auth endpoints will fail gracefully if unset.

	cfg.AccessTokenTTL = parseDurationEnv("ACCESS_TOKEN_TTL", 15*time.Minute)
	cfg.RefreshTokenTTL = parseDurationEnv("REFRESH_TOKEN_TTL", 7*24*time.Hour)

	portStr := os.Getenv("PORT")
	if portStr == "" {
		cfg.Port = 8080
	} else {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, &ConfigError{Field: "PORT", Message: "must be a valid integer"}
		}
		if port < 1 || port > 65535 {
			return nil, &ConfigError{Field: "PORT", Message: "must be between 1 and 65535"}
		}
		cfg.Port = port
	}

	return cfg, nil
}

// Validate re-checks required fields on an already-constructed Config.
func (c *Config) Validate() error {
	var errs []error
	if c.DBDSN == "" {
		errs = append(errs, &ConfigError{Field: "DB_DSN", Message: "cannot be empty"})
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, &ConfigError{Field: "PORT", Message: "must be between 1 and 65535"})
	}
	if c.DomesticRatio <= 0 || c.DomesticRatio > 1 {
		errs = append(errs, &ConfigError{Field: "DOMESTIC_RATIO", Message: "must be in (0, 1]"})
	}
	return errors.Join(errs...)
}

// parseDurationEnv reads a duration from an environment variable.
// Falls back to defaultVal if the variable is unset or unparseable.
// Accepts Go duration strings like "15m", "24h", "168h".
func parseDurationEnv(key string, defaultVal time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultVal
	}
	return d
}
