// Package config loads the application configuration once at start-up.
// Values come from an optional dotenv file and the process environment.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/sbilibin2017/lamp-demo/internal/db"
)

// Config holds all application configuration.
type Config struct {
	// Application settings
	AppHost         string        `env:"APP_HOST" envDefault:"localhost"`
	AppPort         int           `env:"APP_PORT" envDefault:"8080"`
	LogLevel        string        `env:"APP_LOG_LEVEL" envDefault:"info"`
	ServerName      string        `env:"APP_SERVER_NAME" envDefault:"Go net/http"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database (PostgreSQL)
	DBHost            string        `env:"DB_HOST" envDefault:"localhost"`
	DBPort            int           `env:"DB_PORT" envDefault:"5432"`
	DBUser            string        `env:"DB_USER" envDefault:"root"`
	DBPassword        string        `env:"DB_PASSWORD" envDefault:"rootpassword"`
	DBName            string        `env:"DB_NAME" envDefault:"lamp_demo"`
	DBCharset         string        `env:"DB_CHARSET" envDefault:"UTF8"`
	DBSSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"16"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"8"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`

	// Mutation throttling (Redis)
	RateLimitEnabled   bool          `env:"RATE_LIMIT_ENABLED" envDefault:"false"`
	RateLimitMutations int64         `env:"RATE_LIMIT_MUTATIONS" envDefault:"20"`
	RateLimitWindow    time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	RedisHost          string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort          int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisDB            int           `env:"REDIS_DB" envDefault:"0"`
	RedisPassword      string        `env:"REDIS_PASSWORD" envDefault:""`

	// CSRF protection for the page forms. The key must be 32 bytes.
	CSRFAuthKey string `env:"CSRF_AUTH_KEY" envDefault:"lamp-demo-insecure-csrf-key-0001"`
	CSRFSecure  bool   `env:"CSRF_SECURE" envDefault:"false"`
}

// Load reads the dotenv file at path, if present, and parses the
// environment into a Config. Variables already set in the environment
// take precedence over the file.
func Load(path string) (*Config, error) {
	if path != "" {
		_ = godotenv.Load(path)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.CSRFAuthKey) != 32 {
		return fmt.Errorf("CSRF_AUTH_KEY must be 32 bytes, got %d", len(c.CSRFAuthKey))
	}
	if c.RateLimitEnabled && c.RateLimitMutations <= 0 {
		return fmt.Errorf("RATE_LIMIT_MUTATIONS must be positive when rate limiting is enabled")
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.AppHost, strconv.Itoa(c.AppPort))
}

// RedisAddr is the host:port of the Redis server.
func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.RedisHost, strconv.Itoa(c.RedisPort))
}

// Database returns the settings handed to the store layer.
func (c *Config) Database() db.Config {
	return db.Config{
		Host:            c.DBHost,
		Port:            c.DBPort,
		User:            c.DBUser,
		Password:        c.DBPassword,
		Name:            c.DBName,
		Charset:         c.DBCharset,
		SSLMode:         c.DBSSLMode,
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: c.DBConnMaxLifetime,
	}
}
