package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress   string `env:"SERVER_ADDRESS"`
	BaseURL         string `env:"BASE_URL"`
	DatabaseDSN     string `env:"DATABASE_DSN"`
	FileStoragePath string `env:"FILE_STORAGE_PATH"`

	AuthEnabled bool   `env:"AUTH_ENABLED" envDefault:"true"`
	JWTSecret   string `env:"JWT_SECRET_KEY"`
	JWTIssuer   string `env:"JWT_ISSUER" envDefault:"auth-service"`
	JWTAudience string `env:"JWT_AUDIENCE" envDefault:"shortener-service"`

	RateLimitEnabled bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitMax     int           `env:"RATE_LIMIT_REQUESTS" envDefault:"30"`
	RateLimitWindow  time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"60s"`
}

func ParseFlags() (*Config, error) {
	// a missing .env is fine, the environment may be set directly
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	envServerAddress := cfg.ServerAddress
	envBaseURL := cfg.BaseURL
	envDatabaseDSN := cfg.DatabaseDSN
	envFileStoragePath := cfg.FileStoragePath

	flag.StringVar(&cfg.ServerAddress, "a", "localhost:8080", "Address of the server")
	flag.StringVar(&cfg.BaseURL, "b", "http://localhost:8080", "Base URL for short URLs")
	flag.StringVar(&cfg.DatabaseDSN, "d", "", "PostgreSQL DSN (empty for in-memory storage)")
	flag.StringVar(&cfg.FileStoragePath, "f", "", "Snapshot file for the in-memory store")

	flag.Parse()

	if envServerAddress != "" {
		cfg.ServerAddress = envServerAddress
	}
	if envBaseURL != "" {
		cfg.BaseURL = envBaseURL
	}
	if envDatabaseDSN != "" {
		cfg.DatabaseDSN = envDatabaseDSN
	}
	if envFileStoragePath != "" {
		cfg.FileStoragePath = envFileStoragePath
	}

	cfg.applyDefaultValues()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaultValues() {
	if c.ServerAddress == "" {
		c.ServerAddress = "localhost:8080"
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8080"
	}
}

func (c *Config) Validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server address cannot be empty")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	if c.AuthEnabled && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET_KEY must be set when AUTH_ENABLED=true")
	}
	if c.RateLimitEnabled {
		if c.RateLimitMax <= 0 {
			return fmt.Errorf("rate limit request count must be positive")
		}
		if c.RateLimitWindow <= 0 {
			return fmt.Errorf("rate limit window must be positive")
		}
	}
	return nil
}
