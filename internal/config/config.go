// Package config loads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/NOLLEN17/bookshelf/internal/auth"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port         string
	DatabasePath string
	ResetDB      bool

	SecretKey string
	Algorithm string
	TokenTTL  time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads envFile (if it exists) into the environment without overriding
// variables that are already set, then builds a Config.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	ttlMinutes, err := getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", int(auth.DefaultTokenTTL/time.Minute))
	if err != nil {
		return nil, err
	}
	resetDB, err := getEnvAsBool("RESET_DB", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:         getEnvAsString("PORT", "8001"),
		DatabasePath: getEnvAsString("DATABASE_PATH", "books.db"),
		ResetDB:      resetDB,
		SecretKey:    os.Getenv("SECRET_KEY"),
		Algorithm:    getEnvAsString("JWT_ALGORITHM", "HS256"),
		TokenTTL:     time.Duration(ttlMinutes) * time.Minute,
		LogLevel:     getEnvAsString("LOG_LEVEL", "info"),
		LogFormat:    getEnvAsString("LOG_FORMAT", "text"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY is required")
	}
	switch c.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("JWT_ALGORITHM %q is not supported (use HS256, HS384 or HS512)", c.Algorithm)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %s", c.TokenTTL)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT %q is not supported (use text or json)", c.LogFormat)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnvAsString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
