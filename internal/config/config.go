package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Tally"`
	}

	API struct {
		// Origin/path prefix shared by the generate and verify endpoints.
		BaseURL string        `envconfig:"API_BASE_URL" default:"http://localhost:8080/api"`
		Timeout time.Duration `envconfig:"API_TIMEOUT" default:"10s"`
	}

	Notify struct {
		TTL time.Duration `envconfig:"NOTIFY_TTL" default:"4s"`
	}

	Server struct {
		Port       int           `envconfig:"PORT" default:"8080"`
		Timeout    time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		SigningKey string        `envconfig:"SIGNING_KEY" default:"tally-dev-key"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:""`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"tally"`
	}
}

// UsePostgres reports whether a database host is configured. Without one
// the devserver keeps receipts in memory.
func (c *Config) UsePostgres() bool {
	return c.DB.Host != ""
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
