package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP     HTTPConfig
	Graph    GraphConfig
	Logging  LoggingConfig
	Referral ReferralConfig
	Auth     AuthConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MetricsEnabled    bool
	AllowedOriginsCSV string
	RateLimitRPS      int
	RateLimitBurst    int
}

// GraphConfig describes connectivity to the Neo4j database holding the referral graph.
type GraphConfig struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	Colored       bool
	IncludeCaller bool
}

// ReferralConfig points the client tooling at a referral service and bounds
// the networks it will build.
type ReferralConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	MaxDepth       int
}

// AuthConfig holds the token settings used by the served API.
type AuthConfig struct {
	JWTSecret          string
	Issuer             string
	TokenTTL           time.Duration
	ValidationCacheTTL time.Duration
}

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 8080
	defaultReadTimeout      = 10 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
	defaultGraphMaxSessions = 10
	defaultRateLimitRPS     = 20
	defaultRateLimitBurst   = 40
	defaultReferralBaseURL  = "http://localhost:8080"
	defaultReferralTimeout  = 10 * time.Second
	defaultMaxDepth         = 64
	defaultIssuer           = "referralnet"
	defaultTokenTTL         = 24 * time.Hour
	defaultValidationTTL    = time.Minute
	defaultEnvFile          = ".env"
)

// Load reads configuration from environment variables, applying defaults.
// Values from an optional .env file (CONFIG_ENV_FILE) are applied first and
// never override variables already present in the environment.
func Load() (Config, error) {
	envFile := valueOrDefault("CONFIG_ENV_FILE", defaultEnvFile)
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	cfg := Config{
		HTTP: HTTPConfig{
			Host:            valueOrDefault("SERVER_HOST", defaultHost),
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
			RateLimitRPS:    parseIntWithDefault("SERVER_RATE_LIMIT_RPS", defaultRateLimitRPS),
			RateLimitBurst:  parseIntWithDefault("SERVER_RATE_LIMIT_BURST", defaultRateLimitBurst),
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			Colored:       parseBoolWithDefault("LOG_COLOR", false),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
		Graph: GraphConfig{
			URI:            os.Getenv("GRAPH_URI"),
			Database:       valueOrDefault("GRAPH_DATABASE", ""),
			Username:       os.Getenv("GRAPH_USERNAME"),
			Password:       os.Getenv("GRAPH_PASSWORD"),
			MaxConnections: parseIntWithDefault("GRAPH_MAX_CONNECTIONS", defaultGraphMaxSessions),
		},
		Referral: ReferralConfig{
			BaseURL:        valueOrDefault("REFERRAL_BASE_URL", defaultReferralBaseURL),
			RequestTimeout: defaultReferralTimeout,
			MaxDepth:       parseIntWithDefault("REFERRAL_MAX_DEPTH", defaultMaxDepth),
		},
		Auth: AuthConfig{
			JWTSecret:          os.Getenv("AUTH_JWT_SECRET"),
			Issuer:             valueOrDefault("AUTH_ISSUER", defaultIssuer),
			TokenTTL:           defaultTokenTTL,
			ValidationCacheTTL: defaultValidationTTL,
		},
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout},
		{"REFERRAL_REQUEST_TIMEOUT", &cfg.Referral.RequestTimeout},
		{"AUTH_TOKEN_TTL", &cfg.Auth.TokenTTL},
		{"AUTH_VALIDATION_CACHE_TTL", &cfg.Auth.ValidationCacheTTL},
	}
	for _, d := range durations {
		if err := parseDuration(d.key, d.dst); err != nil {
			return Config{}, err
		}
	}

	if cfg.Referral.MaxDepth <= 0 {
		return Config{}, fmt.Errorf("REFERRAL_MAX_DEPTH must be positive, got %d", cfg.Referral.MaxDepth)
	}
	if cfg.HTTP.RateLimitRPS <= 0 {
		return Config{}, fmt.Errorf("SERVER_RATE_LIMIT_RPS must be positive, got %d", cfg.HTTP.RateLimitRPS)
	}
	if cfg.HTTP.RateLimitBurst < 0 {
		return Config{}, fmt.Errorf("SERVER_RATE_LIMIT_BURST must not be negative, got %d", cfg.HTTP.RateLimitBurst)
	}

	cfg.HTTP.MetricsEnabled = parseBoolWithDefault("SERVER_METRICS_ENABLED", false)
	cfg.HTTP.AllowedOriginsCSV = os.Getenv("SERVER_ALLOWED_ORIGINS")

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
