// Package config loads server configuration from the environment (and an
// optional .env file) through viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrMissingJWTSecret is returned when no signing secret is configured
var ErrMissingJWTSecret = errors.New("JWT_SECRET environment variable is required")

type (
	Config struct {
		Environment string
		HTTP
		Database
		Auth
		Log
		Redis
		Telemetry
	}

	HTTP struct {
		Port            string
		AllowedOrigins  []string
		ShutdownTimeout time.Duration
	}
	Database struct {
		Driver          string // postgres or sqlite
		URL             string
		MaxIdleConns    int
		MaxOpenConns    int
		ConnMaxLifetime time.Duration
	}
	Auth struct {
		JWTSecret       string
		TokenTTL        time.Duration
		BcryptCost      int
		RateLimit       int // requests per window on /signup and /auth/login
		RateLimitWindow time.Duration
	}
	Log struct {
		Level string
		File  string
	}
	Redis struct {
		Host     string
		Port     string
		Password string
	}
	Telemetry struct {
		Enabled      bool
		ServiceName  string
		OTLPEndpoint string
		SamplingRate float64
	}
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("PORT", "8787")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 30)

	v.SetDefault("DATABASE_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "webfinal")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "webfinal.db")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)

	v.SetDefault("TOKEN_TTL_SECONDS", 3600)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("AUTH_RATE_LIMIT", 10)
	v.SetDefault("AUTH_RATE_LIMIT_WINDOW_SECONDS", 60)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "webfinal.log")

	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "webfinal-backend")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
	v.SetDefault("OTEL_SAMPLING_RATE", 1.0)
}

// Load reads .env (if present) and the process environment into a Config.
// The returned config is validated.
func Load() (*Config, error) {
	cfg := Read()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is Load without validation. Offline tools that never sign tokens
// (migrations, seeding) use it so they run without JWT_SECRET.
func Read() *Config {
	// Missing .env is fine; real deployments use the environment directly
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		HTTP: HTTP{
			Port:            v.GetString("PORT"),
			AllowedOrigins:  splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			ShutdownTimeout: time.Duration(v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")) * time.Second,
		},
		Database: Database{
			Driver:          strings.ToLower(v.GetString("DATABASE_DRIVER")),
			URL:             v.GetString("DATABASE_URL"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			ConnMaxLifetime: time.Hour,
		},
		Auth: Auth{
			JWTSecret:       v.GetString("JWT_SECRET"),
			TokenTTL:        time.Duration(v.GetInt("TOKEN_TTL_SECONDS")) * time.Second,
			BcryptCost:      v.GetInt("BCRYPT_COST"),
			RateLimit:       v.GetInt("AUTH_RATE_LIMIT"),
			RateLimitWindow: time.Duration(v.GetInt("AUTH_RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
		Log: Log{
			Level: v.GetString("LOG_LEVEL"),
			File:  v.GetString("LOG_FILE"),
		},
		Redis: Redis{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		Telemetry: Telemetry{
			Enabled:      v.GetBool("OTEL_ENABLED"),
			ServiceName:  v.GetString("OTEL_SERVICE_NAME"),
			OTLPEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			SamplingRate: v.GetFloat64("OTEL_SAMPLING_RATE"),
		},
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = defaultDSN(v, cfg.Database.Driver)
	}
	return cfg
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL_SECONDS must be positive")
	}
	return nil
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// RedisEnabled reports whether a Redis host was configured
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

// defaultDSN builds a connection string from the individual DB_* variables
func defaultDSN(v *viper.Viper, driver string) string {
	if driver == DriverSQLite {
		return v.GetString("SQLITE_PATH")
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		v.GetString("DB_HOST"),
		v.GetString("DB_PORT"),
		v.GetString("DB_USER"),
		v.GetString("DB_PASSWORD"),
		v.GetString("DB_NAME"),
		v.GetString("DB_SSLMODE"),
	)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
