package internal

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// devSessionSecret is the fallback cookie encryption secret for local
// development. Production refuses to start with it.
const devSessionSecret = "dev-only-insecure-session-secret"

type Config struct {
	Env      string
	Port     int
	LogLevel string

	// Identity provider
	AuthAPIBaseURL      string
	AuthApplicationName string
	AuthDemoSessionID   string // pins the session id for demo deployments

	// Session cookie
	SessionCookieName string
	SessionSecret     string
	SessionInactivity time.Duration

	// Login form
	LoginMinSubmitMs int

	// OpenAPI document source
	SpecProvider string // "auto", "local", "remote" or "r2"
	SpecSource   string // path, URL, or object key depending on provider

	// R2 object storage (production spec source)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string
}

// IsProduction reports whether the server runs with production hardening
// (secure cookies, HSTS, JSON logs).
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		AuthAPIBaseURL:      getEnv("AUTH_API_BASE_URL", ""),
		AuthApplicationName: getEnv("AUTH_APPLICATION_NAME", "com.lapp.flutter"),
		AuthDemoSessionID:   getEnv("AUTH_DEMO_SESSION_ID", ""),

		SessionCookieName: getEnv("AUTH_SESSION_COOKIE_NAME", "api_doci_auth"),
		SessionSecret:     getEnv("AUTH_SESSION_SECRET", ""),
		SessionInactivity: time.Duration(getEnvInt("SESSION_INACTIVITY_MINUTES", 30)) * time.Minute,

		LoginMinSubmitMs: getEnvInt("LOGIN_MIN_SUBMIT_MS", 1200),

		SpecProvider: getEnv("OPENAPI_SPEC_PROVIDER", "auto"),
		SpecSource:   getEnv("OPENAPI_SPEC_SOURCE", "web/static/demo.json"),

		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),

		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	// The session secret guards every cookie; production must bring its
	// own, development falls back to a fixed insecure one.
	if cfg.SessionSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("AUTH_SESSION_SECRET is required in production")
		}
		cfg.SessionSecret = devSessionSecret
	}

	if cfg.SessionInactivity <= 0 {
		return nil, fmt.Errorf("SESSION_INACTIVITY_MINUTES must be positive")
	}

	// Validate spec source configuration
	switch cfg.SpecProvider {
	case "auto", "local", "remote":
	case "r2":
		if cfg.R2AccountID == "" {
			return nil, fmt.Errorf("R2_ACCOUNT_ID is required when OPENAPI_SPEC_PROVIDER is 'r2'")
		}
		if cfg.R2AccessKeyID == "" {
			return nil, fmt.Errorf("R2_ACCESS_KEY_ID is required when OPENAPI_SPEC_PROVIDER is 'r2'")
		}
		if cfg.R2SecretAccessKey == "" {
			return nil, fmt.Errorf("R2_SECRET_ACCESS_KEY is required when OPENAPI_SPEC_PROVIDER is 'r2'")
		}
		if cfg.R2BucketName == "" {
			return nil, fmt.Errorf("R2_BUCKET_NAME is required when OPENAPI_SPEC_PROVIDER is 'r2'")
		}
	default:
		return nil, fmt.Errorf("OPENAPI_SPEC_PROVIDER must be one of 'auto', 'local', 'remote', 'r2', got: %s", cfg.SpecProvider)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}
