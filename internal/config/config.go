package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Checkout CheckoutConfig
	Gateway  GatewayConfig
	Database DatabaseConfig
	Logger   LoggerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr        string
	MetricsPort int
	// Rate limit for the surface-facing channel endpoints
	ChannelRatePerSec float64
	ChannelRateBurst  int
}

// CheckoutConfig holds the state machine's externally configured values.
// PublicKey is the public, non-secret client key the surface is
// initialized with; AllowedOrigins is the surface origin allow list.
type CheckoutConfig struct {
	PublicKey      string
	AllowedOrigins []string
	InitGraceDelay time.Duration
	AutoCloseDelay time.Duration
}

// GatewayConfig holds the submission gateway configuration
type GatewayConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DatabaseConfig holds the optional attempt-audit PostgreSQL configuration.
// An empty URL disables the audit log.
type DatabaseConfig struct {
	URL      string
	MaxConns int32
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:              getEnv("SERVER_ADDR", ":8080"),
			MetricsPort:       getEnvAsInt("METRICS_PORT", 9090),
			ChannelRatePerSec: getEnvAsFloat("CHANNEL_RATE_PER_SEC", 10),
			ChannelRateBurst:  getEnvAsInt("CHANNEL_RATE_BURST", 20),
		},
		Checkout: CheckoutConfig{
			PublicKey:      getEnv("CHECKOUT_PUBLIC_KEY", ""),
			AllowedOrigins: splitList(getEnv("CHECKOUT_ALLOWED_ORIGINS", "")),
			InitGraceDelay: getEnvAsDuration("CHECKOUT_INIT_GRACE_DELAY", 500*time.Millisecond),
			AutoCloseDelay: getEnvAsDuration("CHECKOUT_AUTO_CLOSE_DELAY", 5*time.Second),
		},
		Gateway: GatewayConfig{
			BaseURL: getEnv("GATEWAY_BASE_URL", ""),
			Timeout: getEnvAsDuration("GATEWAY_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 10)),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	if cfg.Checkout.PublicKey == "" {
		return nil, fmt.Errorf("CHECKOUT_PUBLIC_KEY is required")
	}
	if cfg.Gateway.BaseURL == "" {
		return nil, fmt.Errorf("GATEWAY_BASE_URL is required")
	}
	if len(cfg.Checkout.AllowedOrigins) == 0 {
		return nil, fmt.Errorf("CHECKOUT_ALLOWED_ORIGINS is required (use '*' explicitly for local development)")
	}

	return cfg, nil
}

// Helper functions

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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
