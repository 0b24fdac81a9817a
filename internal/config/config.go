// Package config defines the JSON-serializable run configuration for the
// warehouse loader and validator.
//
// Configuration is resolved in three layers, later layers winning:
//
//  1. Defaults from Default().
//  2. An optional JSON config file.
//  3. Environment variables (FLEXIWH_*), typically supplied via a .env file
//     loaded at CLI startup. DSNs and other secret material belong here, not
//     in the config file.
//
// Decoding uses the standard library; the shape is small enough that a config
// framework would add more surface than it removes.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Warehouse selects and configures the destination store.
type Warehouse struct {
	// Kind is the backend: "sqlite" or "postgres".
	Kind string `json:"kind"`

	// DSN is the driver connection string. For SQLite this is the database
	// file path; for Postgres a postgresql:// URL.
	DSN string `json:"dsn"`
}

// Metrics configures the optional metrics backend.
type Metrics struct {
	// Backend is "" (disabled) or "pushgateway".
	Backend string `json:"backend"`

	// PushgatewayURL is the Pushgateway base URL, e.g. http://pushgateway:9091.
	PushgatewayURL string `json:"pushgateway_url"`

	// Job is the Pushgateway grouping key.
	Job string `json:"job"`
}

// Config is the top-level run configuration.
type Config struct {
	// DataDir holds the source CSV files, one per warehouse table.
	DataDir string `json:"data_dir"`

	// BatchSize is the fact-table batch size.
	BatchSize int `json:"batch_size"`

	Warehouse Warehouse `json:"warehouse"`
	Metrics   Metrics   `json:"metrics"`
}

// Default returns the configuration used when nothing else is specified: a
// local SQLite warehouse fed from ./data.
func Default() Config {
	return Config{
		DataDir:   "data",
		BatchSize: 1000,
		Warehouse: Warehouse{
			Kind: "sqlite",
			DSN:  "freelance_earnings.db",
		},
		Metrics: Metrics{Job: "flexiwh"},
	}
}

// Load resolves the configuration: defaults, then the JSON file at path (if
// path is non-empty), then FLEXIWH_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		dec := json.NewDecoder(strings.NewReader(string(raw)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the resolved configuration for values that would only fail
// later and less clearly.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("config: data_dir is required")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("config: batch_size must be > 0, got %d", c.BatchSize)
	}
	switch c.Warehouse.Kind {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unknown warehouse kind %q", c.Warehouse.Kind)
	}
	if c.Warehouse.DSN == "" {
		return fmt.Errorf("config: warehouse dsn is required")
	}
	switch c.Metrics.Backend {
	case "", "pushgateway":
	default:
		return fmt.Errorf("config: unknown metrics backend %q", c.Metrics.Backend)
	}
	if c.Metrics.Backend == "pushgateway" && c.Metrics.PushgatewayURL == "" {
		return fmt.Errorf("config: pushgateway_url is required for the pushgateway backend")
	}
	return nil
}

// applyEnv overlays FLEXIWH_* environment variables onto cfg.
func applyEnv(cfg *Config) {
	if v := os.Getenv("FLEXIWH_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("FLEXIWH_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BatchSize = n
		}
	}
	if v := os.Getenv("FLEXIWH_WAREHOUSE_KIND"); v != "" {
		cfg.Warehouse.Kind = v
	}
	if v := os.Getenv("FLEXIWH_WAREHOUSE_DSN"); v != "" {
		cfg.Warehouse.DSN = v
	}
	if v := os.Getenv("FLEXIWH_METRICS_BACKEND"); v != "" {
		cfg.Metrics.Backend = v
	}
	if v := os.Getenv("FLEXIWH_PUSHGATEWAY_URL"); v != "" {
		cfg.Metrics.PushgatewayURL = v
	}
	if v := os.Getenv("FLEXIWH_METRICS_JOB"); v != "" {
		cfg.Metrics.Job = v
	}
}
