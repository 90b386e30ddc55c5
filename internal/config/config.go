// Package config loads the scheduler's configuration the way the rest of
// this codebase does: a typed struct with defaults, an optional JSON file
// overlay, and environment-variable overrides applied last.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// DaemonConfig controls the HTTP front-end.
type DaemonConfig struct {
	HTTPAddr string `json:"http_addr"`
	LogLevel string `json:"log_level"`
}

// TracingConfig controls OpenTelemetry export.
type TracingConfig struct {
	Enabled    bool    `json:"enabled"`
	Exporter   string  `json:"exporter"` // otlp-http, stdout
	Endpoint   string  `json:"endpoint"`
	SampleRate float64 `json:"sample_rate"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

// PostgresConfig controls the optional invocation-log sink.
type PostgresConfig struct {
	DSN string `json:"dsn"`
}

// Config is the full set of recognized options.
type Config struct {
	Strategy          string        `json:"strategy"`
	WarmTime          time.Duration `json:"warm_time"`
	JanitorSleep      time.Duration `json:"janitor_sleep"`
	DefaultLimit      int           `json:"default_limit"`
	ExecutionTime     time.Duration `json:"execution_time"`
	SimulationEndTime int64         `json:"simulation_end_time"`

	Daemon   DaemonConfig   `json:"daemon"`
	Tracing  TracingConfig  `json:"tracing"`
	Metrics  MetricsConfig  `json:"metrics"`
	Postgres PostgresConfig `json:"postgres"`
}

// DefaultConfig returns the scheduler's built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Strategy:          "LCS",
		WarmTime:          20 * time.Second,
		JanitorSleep:      5 * time.Second,
		DefaultLimit:      5,
		ExecutionTime:     2 * time.Second,
		SimulationEndTime: 25,
		Daemon: DaemonConfig{
			HTTPAddr: ":8080",
			LogLevel: "info",
		},
		Tracing: TracingConfig{
			Enabled:    false,
			Exporter:   "stdout",
			SampleRate: 1.0,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9090",
		},
	}
}

// LoadFromFile overlays JSON from path onto DefaultConfig.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromEnv overrides cfg's fields from environment variables named
// WARMSCHED_ plus the field: tracing and metrics fields include their
// section (WARMSCHED_TRACING_ENDPOINT), daemon fields do not
// (WARMSCHED_HTTP_ADDR), and the Postgres DSN is WARMSCHED_PG_DSN.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("WARMSCHED_STRATEGY"); v != "" {
		cfg.Strategy = v
	}
	if v := os.Getenv("WARMSCHED_WARM_TIME"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.WarmTime = d
		}
	}
	if v := os.Getenv("WARMSCHED_JANITOR_SLEEP"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.JanitorSleep = d
		}
	}
	if v := os.Getenv("WARMSCHED_DEFAULT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DefaultLimit = n
		}
	}
	if v := os.Getenv("WARMSCHED_EXECUTION_TIME"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ExecutionTime = d
		}
	}
	if v := os.Getenv("WARMSCHED_SIMULATION_END_TIME"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.SimulationEndTime = n
		}
	}
	if v := os.Getenv("WARMSCHED_HTTP_ADDR"); v != "" {
		cfg.Daemon.HTTPAddr = v
	}
	if v := os.Getenv("WARMSCHED_LOG_LEVEL"); v != "" {
		cfg.Daemon.LogLevel = v
	}
	if v := os.Getenv("WARMSCHED_TRACING_ENABLED"); v != "" {
		cfg.Tracing.Enabled = parseBool(v, cfg.Tracing.Enabled)
	}
	if v := os.Getenv("WARMSCHED_TRACING_ENDPOINT"); v != "" {
		cfg.Tracing.Endpoint = v
	}
	if v := os.Getenv("WARMSCHED_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v, cfg.Metrics.Enabled)
	}
	if v := os.Getenv("WARMSCHED_PG_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return b
}
