package client

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/adamwoolhether/nylas/api"
)

const envconfigPrefix = "NYLAS"

// Config holds the credentials and server selection shared by every call
// made through a Client. It is copied into the Client at Build and never
// changes afterwards. A zero Region or Timeout falls back to the defaults;
// use WithTimeout(0) to disable the timeout.
type Config struct {
	APIKey   string        `envconfig:"API_KEY" required:"true"`
	ClientID string        `envconfig:"CLIENT_ID"`
	GrantID  string        `envconfig:"GRANT_ID"`
	Region   api.Region    `envconfig:"REGION" default:"us"`
	Server   string        `envconfig:"SERVER"`
	Timeout  time.Duration `envconfig:"TIMEOUT" default:"30s"`
	Debug    bool          `envconfig:"DEBUG"`
}

// ConfigFromEnv reads a Config from NYLAS_* environment variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envconfigPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("reading nylas configuration from environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (cfg Config) validate() error {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return errors.New("api key must not be empty")
	}
	if cfg.Region != "" {
		if _, ok := api.Servers[cfg.Region]; !ok {
			return fmt.Errorf("unknown region %q", cfg.Region)
		}
	}
	if cfg.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	return nil
}

// server resolves the base URL: an explicit Server wins, otherwise the
// region's host, falling back to the US host.
func (cfg Config) server() string {
	if s := strings.TrimSpace(cfg.Server); s != "" {
		return strings.TrimRight(s, "/")
	}
	if s, ok := api.Servers[cfg.Region]; ok {
		return s
	}
	return api.Servers[api.RegionUS]
}
