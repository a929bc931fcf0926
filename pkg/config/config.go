// Package config loads the runtime configuration from a YAML or JSON file
// and command-line overrides.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/agentry/internal/logging"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration.
type Config struct {
	LogLevel string  `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
	Workers  int     `yaml:"workers" json:"workers" mapstructure:"workers"`
	Metrics  Metrics `yaml:"metrics" json:"metrics" mapstructure:"metrics"`
	Routine  Routine `yaml:"routine" json:"routine" mapstructure:"routine"`
}

// Metrics configures the Prometheus collectors and their scrape endpoint.
type Metrics struct {
	Enabled   bool   `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace" mapstructure:"namespace"`
	Addr      string `yaml:"addr" json:"addr" mapstructure:"addr"`
}

// Routine holds the defaults applied to spawned routines.
type Routine struct {
	Interval  time.Duration `yaml:"interval" json:"interval" mapstructure:"interval"`
	TimeLimit time.Duration `yaml:"time_limit" json:"time_limit" mapstructure:"time_limit"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LogLevel: "info",
		Workers:  0,
		Metrics: Metrics{
			Enabled:   false,
			Namespace: "agentry",
			Addr:      ":2112",
		},
		Routine: Routine{
			Interval: time.Second,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := decode(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Apply merges overrides into c. Keys may be dotted ("metrics.addr") and
// values are weakly typed, so "--set routine.interval=250ms" works.
func (c *Config) Apply(overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	nested := map[string]any{}
	for key, value := range overrides {
		parts := strings.Split(key, ".")
		node := nested
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	if err := decode(nested, c); err != nil {
		return fmt.Errorf("invalid override: %w", err)
	}
	return nil
}

// ParseOverrides turns "key=value" pairs into an overrides map.
func ParseOverrides(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("override %q: expected key=value", pair)
		}
		out[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return out, nil
}

// Level returns the slog level of LogLevel.
func (c Config) Level() slog.Level {
	return logging.ParseLevel(c.LogLevel)
}

func decode(input map[string]any, out *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
