package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultSessionSecret is the placeholder secret. It is only accepted with
// the sqlite driver, for local development.
const DefaultSessionSecret = "change-me"

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`

	DBDriver          string        `env:"DB_DRIVER" envDefault:"mysql"`
	DatabaseDSN       string        `env:"DATABASE_DSN" envDefault:"user:password@tcp(localhost:3306)/sneakerdex?charset=utf8mb4&parseTime=True&loc=Local"`
	DBConnectAttempts uint          `env:"DB_CONNECT_ATTEMPTS" envDefault:"4"`
	DBConnectDelay    time.Duration `env:"DB_CONNECT_RETRY_DELAY" envDefault:"1s"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
	ResetDB           bool          `env:"RESET_DB" envDefault:"false"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	SessionSecret       string        `env:"SESSION_SECRET" envDefault:"change-me"`
	SessionStrategy     string        `env:"SESSION_STRATEGY" envDefault:"token"`
	SessionMode         string        `env:"SESSION_MODE" envDefault:"standard"`
	SessionMaxAge       time.Duration `env:"SESSION_MAX_AGE"`
	SessionCookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL" envDefault:"http://localhost:8080/api/auth/google/callback"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	SwaggerHost string `env:"SWAGGER_HOST"`
}

// Load builds Config from an optional .env file and the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	return Parse()
}

// Parse reads Config from the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("parse config: SESSION_SECRET must not be empty")
	}
	if cfg.InsecureSessionSecret() && cfg.DBDriver != "sqlite" {
		return nil, fmt.Errorf("parse config: SESSION_SECRET must be set when DB_DRIVER is %q", cfg.DBDriver)
	}
	return &cfg, nil
}

// InsecureSessionSecret reports whether sessions are signed with the placeholder secret.
func (c *Config) InsecureSessionSecret() bool {
	return c.SessionSecret == DefaultSessionSecret
}

// GoogleEnabled reports whether Google sign-in credentials are configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
