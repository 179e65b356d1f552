package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port           int           `envconfig:"PORT" default:"7000"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	Version        string        `envconfig:"VERSION" default:"dev"`
	ValidationMode string        `envconfig:"VALIDATION_MODE" default:"strict"`
	BcryptCost     int           `envconfig:"BCRYPT_COST" default:"10"`
	DBOwnerKey     string        `envconfig:"DB_OWNER_KEY" default:"admin-db"`
	DBHost         string        `envconfig:"DB_HOST" default:"127.0.0.1"`
	DBPort         int           `envconfig:"DB_PORT" default:"5432"`
	DBUser         string        `envconfig:"DB_USER" required:"true"`
	DBPassword     string        `envconfig:"DB_PASSWORD" default:""`
	DBName         string        `envconfig:"DB_NAME" required:"true"`
	DBPoolMin      int32         `envconfig:"DB_POOL_MIN" default:"0"`
	DBPoolMax      int32         `envconfig:"DB_POOL_MAX" default:"10"`
	DBIdleTimeout  time.Duration `envconfig:"DB_IDLE_TIMEOUT" default:"30s"`
	DBConnTimeout  time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"10s"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
