package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Strategy != "LCS" {
		t.Errorf("Strategy = %q, want LCS", cfg.Strategy)
	}
	if cfg.WarmTime != 20*time.Second {
		t.Errorf("WarmTime = %v, want 20s", cfg.WarmTime)
	}
	if cfg.DefaultLimit != 5 {
		t.Errorf("DefaultLimit = %d, want 5", cfg.DefaultLimit)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics should be enabled by default")
	}
	if cfg.Tracing.Enabled {
		t.Error("Tracing should be disabled by default")
	}
}

func TestLoadFromFileOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{"strategy":"MRU","default_limit":9,"daemon":{"http_addr":":9999"}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Strategy != "MRU" {
		t.Errorf("Strategy = %q, want MRU", cfg.Strategy)
	}
	if cfg.DefaultLimit != 9 {
		t.Errorf("DefaultLimit = %d, want 9", cfg.DefaultLimit)
	}
	if cfg.Daemon.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q, want :9999", cfg.Daemon.HTTPAddr)
	}
	// Fields absent from the file should keep their defaults.
	if cfg.Metrics.Addr != ":9090" {
		t.Errorf("Metrics.Addr = %q, want default :9090", cfg.Metrics.Addr)
	}
}

func TestLoadFromFileMissingPath(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	for k, v := range map[string]string{
		"WARMSCHED_STRATEGY":      "MRU",
		"WARMSCHED_DEFAULT_LIMIT": "42",
		"WARMSCHED_HTTP_ADDR":     ":7000",
		"WARMSCHED_WARM_TIME":     "30s",
	} {
		t.Setenv(k, v)
	}

	cfg := DefaultConfig()
	LoadFromEnv(cfg)

	if cfg.Strategy != "MRU" {
		t.Errorf("Strategy = %q, want MRU", cfg.Strategy)
	}
	if cfg.DefaultLimit != 42 {
		t.Errorf("DefaultLimit = %d, want 42", cfg.DefaultLimit)
	}
	if cfg.Daemon.HTTPAddr != ":7000" {
		t.Errorf("HTTPAddr = %q, want :7000", cfg.Daemon.HTTPAddr)
	}
	if cfg.WarmTime != 30*time.Second {
		t.Errorf("WarmTime = %v, want 30s", cfg.WarmTime)
	}
}

func TestLoadFromEnvIgnoresUnsetVars(t *testing.T) {
	cfg := DefaultConfig()
	before := *cfg
	LoadFromEnv(cfg)
	if *cfg != before {
		t.Errorf("LoadFromEnv changed config with no env vars set: got %+v, want %+v", *cfg, before)
	}
}

func TestParseBoolFallsBackOnGarbage(t *testing.T) {
	if !parseBool("not-a-bool", true) {
		t.Error("parseBool should fall back to true for unparseable input")
	}
	if parseBool("false", true) {
		t.Error("parseBool should honor an explicit false")
	}
	if !parseBool("1", false) {
		t.Error("parseBool should accept strconv.ParseBool forms like \"1\"")
	}
}
