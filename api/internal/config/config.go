package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// Config holds all dynamic configuration for the service.
// 🛡️ SLA: The encryption key is NOT configuration; it is derived in code.
type Config struct {
	Environment    string   `ini:"APP_ENV"` // "development" or "production"
	Port           string   `ini:"PORT"`
	GRPCPort       string   `ini:"GRPC_PORT"` // empty disables the gRPC listener
	AllowedOrigins []string `ini:"CORS_ALLOWED_ORIGINS" delim:","`

	LogLevel  string `ini:"LOG_LEVEL"`
	LogFormat string `ini:"LOG_FORMAT"` // "json" or "console"

	// 🛡️ The Cryptographic Boundary
	Algorithm        string        `ini:"ENCRYPTION_ALGORITHM"`
	BatchConcurrency int           `ini:"BATCH_CONCURRENCY"`
	MaxBodyBytes     int64         `ini:"MAX_BODY_BYTES"`
	RequestTimeout   time.Duration `ini:"REQUEST_TIMEOUT"`
}

// ConfigFileEnv points at an optional INI file applied before environment overrides.
const ConfigFileEnv = "DECRYPT_API_CONFIG"

func defaults() *Config {
	return &Config{
		Environment:      "development",
		Port:             "3000",
		AllowedOrigins:   []string{"*"},
		LogLevel:         "info",
		LogFormat:        "json",
		Algorithm:        "AES-256-GCM",
		BatchConcurrency: 16,
		MaxBodyBytes:     1_048_576,
		RequestTimeout:   60 * time.Second,
	}
}

// Load layers defaults, the optional INI file, then the environment (.env included).
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		file, err := ini.Load(path)
		if err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
		if err := file.MapTo(cfg); err != nil {
			return nil, fmt.Errorf("config: failed to map %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Environment {
	case "development", "production":
	default:
		errs = append(errs, fmt.Errorf("APP_ENV must be development or production, got %q", c.Environment))
	}
	if _, err := strconv.ParseUint(c.Port, 10, 16); err != nil {
		errs = append(errs, fmt.Errorf("PORT must be a TCP port, got %q", c.Port))
	}
	if c.GRPCPort != "" {
		if _, err := strconv.ParseUint(c.GRPCPort, 10, 16); err != nil {
			errs = append(errs, fmt.Errorf("GRPC_PORT must be a TCP port, got %q", c.GRPCPort))
		}
	}
	if len(c.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must list at least one origin"))
	}
	if c.BatchConcurrency < 1 {
		errs = append(errs, errors.New("BATCH_CONCURRENCY must be at least 1"))
	}
	if c.MaxBodyBytes < 1 {
		errs = append(errs, errors.New("MAX_BODY_BYTES must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// WildcardCORS reports whether any origin may call the API.
func (c *Config) WildcardCORS() bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

func applyEnv(cfg *Config) error {
	cfg.Environment = getEnv("APP_ENV", cfg.Environment)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.GRPCPort = getEnv("GRPC_PORT", cfg.GRPCPort)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.Algorithm = getEnv("ENCRYPTION_ALGORITHM", cfg.Algorithm)

	if origins := getEnv("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}

	if v := getEnv("BATCH_CONCURRENCY", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: BATCH_CONCURRENCY: %w", err)
		}
		cfg.BatchConcurrency = n
	}
	if v := getEnv("MAX_BODY_BYTES", ""); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: MAX_BODY_BYTES: %w", err)
		}
		cfg.MaxBodyBytes = n
	}
	if v := getEnv("REQUEST_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
