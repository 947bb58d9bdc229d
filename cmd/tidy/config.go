package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/okian/pelota/internal/organize"
)

// dotConfig holds tidy defaults loaded from ~/.config/pelota/tidy.toml.
// Flags and positional arguments override it.
type dotConfig struct {
	Directory string `toml:"directory"`
	Rules     string `toml:"rules"`
	Verbose   bool   `toml:"verbose"`
	SettleMS  int    `toml:"settle_ms"`
}

func defaultDotConfig() dotConfig {
	return dotConfig{
		Directory: ".",
		SettleMS:  200,
	}
}

// loadDotConfig reads the first config file found on the standard paths,
// falling back to defaults when none exists.
func loadDotConfig() (dotConfig, error) {
	cfg := defaultDotConfig()

	for _, p := range dotConfigPaths() {
		if _, err := os.Stat(p); err == nil {
			if _, err := toml.DecodeFile(p, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", p, err)
			}
			break
		}
	}
	return cfg, nil
}

func dotConfigPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "pelota", "tidy.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "pelota", "tidy.toml"))
	}

	return paths
}

// newOrganizer builds an organizer from the resolved rules path and
// config. An empty rulesPath keeps the built-in table.
func newOrganizer(rulesPath string, cfg dotConfig) (*organize.Organizer, error) {
	rules := organize.DefaultRules()
	if rulesPath != "" {
		overrides, err := organize.LoadRules(rulesPath)
		if err != nil {
			return nil, err
		}
		rules = rules.Merge(overrides)
	}
	return organize.New(
		organize.WithRules(rules),
		organize.WithSettleDelay(time.Duration(cfg.SettleMS)*time.Millisecond),
	), nil
}
