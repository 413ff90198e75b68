// Package config loads server configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the server settings.
type Config struct {
	// Port is the HTTP listen port.
	Port int `env:"BILLSPLIT_PORT" envDefault:"8080"`

	// DBPath is the SQLite file holding share links.
	DBPath string `env:"BILLSPLIT_DB_PATH" envDefault:"./data/links.db"`

	// StaticPath is the directory with the browser UI.
	StaticPath string `env:"BILLSPLIT_STATIC_PATH" envDefault:"./web/static"`

	// MaxTokenBytes bounds stored state tokens.
	MaxTokenBytes int `env:"BILLSPLIT_MAX_TOKEN_BYTES" envDefault:"65536"`

	// MetricsNamespace prefixes every Prometheus metric.
	MetricsNamespace string `env:"BILLSPLIT_METRICS_NAMESPACE" envDefault:"billsplit"`
}

// Load parses Config from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
