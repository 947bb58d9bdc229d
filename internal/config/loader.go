package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces every environment override, so PELOTA_ADDR sets
// addr and PELOTA_QUEUE_SIZE sets queue_size.
const envPrefix = "PELOTA_"

// fileEnvVar names the variable that points Load at a YAML file.
const fileEnvVar = "PELOTA_CONFIG"

// Load layers configuration onto the defaults from New: first the YAML
// file named by PELOTA_CONFIG when set, then PELOTA_* environment
// variables, which win over the file.
func Load(ctx context.Context) (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(fileEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Env keys become flat lowercase koanf keys, underscores intact.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects values that would leave the service unable to start.
func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.FeedMode {
	case "auto", "live", "synthetic":
	default:
		return fmt.Errorf("%w: feed_mode must be auto, live, or synthetic (got %q)", ErrInvalidConfig, c.FeedMode)
	}
	switch c.StoreDriver {
	case "sqlite", "postgres", "memory":
	default:
		return fmt.Errorf("%w: store_driver must be sqlite, postgres, or memory (got %q)", ErrInvalidConfig, c.StoreDriver)
	}
	if c.HistoryWindow < 1 {
		return fmt.Errorf("%w: history_window must be at least 1 (got %d)", ErrInvalidConfig, c.HistoryWindow)
	}
	if c.MinSamples < 1 {
		return fmt.Errorf("%w: min_samples must be at least 1 (got %d)", ErrInvalidConfig, c.MinSamples)
	}
	if c.AlignToleranceHours < 1 {
		return fmt.Errorf("%w: align_tolerance_hours must be at least 1 (got %d)", ErrInvalidConfig, c.AlignToleranceHours)
	}
	return nil
}
