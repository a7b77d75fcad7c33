package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config represents the application configuration structure
type Config struct {
	Environment string `split_words:"true" default:"dev"`

	APIBaseURL      string `split_words:"true" default:"https://api.sikkasoft.com"`
	APIAppID        string `split_words:"true" required:"true"`
	APIAppKey       string `split_words:"true" required:"true"`
	APIOfficeID     string `split_words:"true" required:"true"`
	APIOfficeSecret string `split_words:"true" required:"true"`

	PostgresDSN string `split_words:"true" required:"true"`

	MirrorListenAddress string `split_words:"true" default:"localhost:8086"`

	SyncInterval time.Duration `split_words:"true" default:"15m"`
	SyncPageSize int           `split_words:"true" default:"100"`
}

// IsEnvProduction returns whether the application runs in production mode
func (config *Config) IsEnvProduction() bool {
	return config.Environment == "prod" || config.Environment == "production"
}

// LoadFromEnv loads a new configuration structure using environment variables and an optional .env file
func LoadFromEnv() (*Config, error) {
	// Load a .env file if it exists
	_ = godotenv.Overload()

	// Load a new configuration structure using environment variables
	config := new(Config)
	if err := envconfig.Process("sk", config); err != nil {
		return nil, err
	}
	return config, nil
}
