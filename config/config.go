// Package config carries the engine's settings: where the commerce API
// lives, per-call timeouts, pagination size, and cart defaults. Values are
// resolved in three layers: defaults, an optional YAML file, then
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	PageSize       int           `yaml:"page_size"`

	// Cart defaults applied when the add-to-cart call site does not
	// supply store delivery metadata.
	DefaultDeliveryFee float64 `yaml:"default_delivery_fee"`
	DefaultDeliveryETA string  `yaml:"default_delivery_eta"`

	Breaker BreakerConfig `yaml:"breaker"`
}

type BreakerConfig struct {
	MaxRequests uint32        `yaml:"max_requests"`
	Interval    time.Duration `yaml:"interval"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxFailures uint32        `yaml:"max_failures"`
}

func Default() *Config {
	return &Config{
		BaseURL:            "http://localhost:8080/api/v1",
		RequestTimeout:     10 * time.Second,
		PageSize:           20,
		DefaultDeliveryFee: 2.99,
		DefaultDeliveryETA: "30-45 min",
		Breaker: BreakerConfig{
			MaxRequests: 3,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			MaxFailures: 5,
		},
	}
}

// Load builds a Config from defaults, then the YAML file at path (skipped
// when path is empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.PageSize < 1 {
		return nil, fmt.Errorf("page_size must be positive, got %d", cfg.PageSize)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ECOPLATE_API_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("ECOPLATE_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("ECOPLATE_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PageSize = n
		}
	}
	if v := os.Getenv("ECOPLATE_DEFAULT_DELIVERY_FEE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.DefaultDeliveryFee = f
		}
	}
}
