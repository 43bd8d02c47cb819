package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Config holds the application configuration.
type Config struct {
	ServerPort int    `env:"PORT" envDefault:"8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty  bool   `env:"LOG_PRETTY" envDefault:"true"`

	StoreDriver   string        `env:"STORE_DRIVER" envDefault:"sqlite"`
	DatabasePath  string        `env:"DATABASE_PATH" envDefault:"./accounts.db"`
	MongoURI      string        `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string        `env:"MONGO_DATABASE" envDefault:"appdb"`
	StoreTimeout  time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`

	CookieSecret string   `env:"COOKIE_SECRET"`
	CookieSecure bool     `env:"COOKIE_SECURE" envDefault:"true"`
	CORSOrigins  []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	SaltLength  int `env:"SALT_LENGTH" envDefault:"64"`
	TokenLength int `env:"TOKEN_LENGTH" envDefault:"256"`
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration from environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverSQLite, DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid PORT %d", c.ServerPort)
	}
	if c.SaltLength <= 0 {
		return fmt.Errorf("SALT_LENGTH must be positive, got %d", c.SaltLength)
	}
	if c.TokenLength <= 0 {
		return fmt.Errorf("TOKEN_LENGTH must be positive, got %d", c.TokenLength)
	}
	return nil
}
