package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server:
  listen_address: "0.0.0.0:9000"
store:
  backend: memory
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9000" {
		t.Errorf("ListenAddress = %q, want 0.0.0.0:9000", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, DefaultReadTimeout)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("Store.Backend = %q, want memory", cfg.Store.Backend)
	}
	if cfg.Gate.MatcherBackend != DefaultMatcherBackend {
		t.Errorf("MatcherBackend = %q, want %q", cfg.Gate.MatcherBackend, DefaultMatcherBackend)
	}
	if cfg.Gate.SemanticThreshold != DefaultSemanticThreshold {
		t.Errorf("SemanticThreshold = %v, want %v", cfg.Gate.SemanticThreshold, DefaultSemanticThreshold)
	}
	if len(cfg.Gate.Money.CurrencySymbols) != 3 {
		t.Errorf("CurrencySymbols = %v, want 3 defaults", cfg.Gate.Money.CurrencySymbols)
	}
	if cfg.Audit.DriftWindow != DefaultDriftWindow {
		t.Errorf("DriftWindow = %v, want %v", cfg.Audit.DriftWindow, DefaultDriftWindow)
	}
	if cfg.Telemetry.Logging.Level != "info" || cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("logging defaults = %q/%q, want info/json",
			cfg.Telemetry.Logging.Level, cfg.Telemetry.Logging.Format)
	}
}

func TestLoadConfigFullFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  listen_address: "127.0.0.1:8420"
  read_timeout: 10s
  api_keys: ["key-one", "key-two"]
  rate_limit:
    enabled: true
    requests_per_minute: 120
store:
  backend: sqlite
  sqlite:
    path: /tmp/gw.db
    busy_timeout: 2s
gate:
  matcher_backend: semantic
  semantic_threshold: 0.75
  semantic:
    base_url: "http://localhost:8081/v1"
    api_key: test-key
  money:
    threshold: 250
    currency_symbols: ["$"]
anchors:
  seed_file: seeds/anchors.yaml
  watch: true
audit:
  drift_schedule: "0 * * * *"
  drift_window: 48h
telemetry:
  logging:
    level: debug
    format: text
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("ReadTimeout = %v, want 10s", cfg.Server.ReadTimeout)
	}
	if len(cfg.Server.APIKeys) != 2 {
		t.Errorf("APIKeys = %v, want 2 entries", cfg.Server.APIKeys)
	}
	if !cfg.Server.RateLimit.Enabled || cfg.Server.RateLimit.RequestsPerMinute != 120 {
		t.Errorf("RateLimit = %+v, want enabled at 120 rpm", cfg.Server.RateLimit)
	}
	if cfg.Store.SQLite.Path != "/tmp/gw.db" {
		t.Errorf("SQLite.Path = %q", cfg.Store.SQLite.Path)
	}
	if cfg.Store.SQLite.BusyTimeout != 2*time.Second {
		t.Errorf("BusyTimeout = %v, want 2s", cfg.Store.SQLite.BusyTimeout)
	}
	if cfg.Gate.MatcherBackend != "semantic" || cfg.Gate.SemanticThreshold != 0.75 {
		t.Errorf("gate = %q/%v, want semantic/0.75", cfg.Gate.MatcherBackend, cfg.Gate.SemanticThreshold)
	}
	if cfg.Gate.Money.Threshold != 250 {
		t.Errorf("Money.Threshold = %v, want 250", cfg.Gate.Money.Threshold)
	}
	if got := cfg.Gate.Money.CurrencySymbols; len(got) != 1 || got[0] != "$" {
		t.Errorf("CurrencySymbols = %v, want [$]", got)
	}
	if !cfg.Anchors.Watch || cfg.Anchors.SeedFile != "seeds/anchors.yaml" {
		t.Errorf("anchors = %+v", cfg.Anchors)
	}
	if cfg.Audit.DriftWindow != 48*time.Hour {
		t.Errorf("DriftWindow = %v, want 48h", cfg.Audit.DriftWindow)
	}
	if cfg.Telemetry.Logging.Level != "debug" || cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("logging = %q/%q, want debug/text", cfg.Telemetry.Logging.Level, cfg.Telemetry.Logging.Format)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("LoadConfig() expected error for missing file")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "server: [not a mapping")
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("LoadConfig() expected error for invalid YAML")
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
server:
  listen_address: "127.0.0.1:8420"
`)

	t.Setenv("GATEWRIGHT_SERVER_LISTEN_ADDRESS", "0.0.0.0:7777")
	t.Setenv("GATEWRIGHT_STORE_BACKEND", "memory")
	t.Setenv("GATEWRIGHT_GATE_MATCHER_BACKEND", "semantic")
	t.Setenv("GATEWRIGHT_GATE_SEMANTIC_API_KEY", "env-key")
	t.Setenv("GATEWRIGHT_TELEMETRY_LOGGING_LEVEL", "warn")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:7777" {
		t.Errorf("ListenAddress = %q, want env override", cfg.Server.ListenAddress)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("Store.Backend = %q, want memory", cfg.Store.Backend)
	}
	if cfg.Gate.MatcherBackend != "semantic" {
		t.Errorf("MatcherBackend = %q, want semantic", cfg.Gate.MatcherBackend)
	}
	if cfg.Gate.Semantic.APIKey != "env-key" {
		t.Errorf("Semantic.APIKey = %q, want env-key", cfg.Gate.Semantic.APIKey)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigWithEnvOverridesInvalid(t *testing.T) {
	path := writeConfigFile(t, "store:\n  backend: memory\n")

	t.Setenv("GATEWRIGHT_STORE_BACKEND", "cassandra")

	_, err := LoadConfigWithEnvOverrides(path)
	if err == nil {
		t.Fatal("expected validation error after env override")
	}
	if !strings.Contains(err.Error(), "store.backend") {
		t.Errorf("error = %v, want store.backend mention", err)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := NewDefault()
	cfg.Store.Backend = "postgres"
	cfg.Gate.MatcherBackend = "fuzzy"
	cfg.Gate.SemanticThreshold = 1.5
	cfg.Audit.DriftSchedule = "not a cron"
	cfg.Telemetry.Logging.Level = "verbose"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() expected errors")
	}

	verr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("error type = %T, want ValidationError", err)
	}
	if len(verr.Errors) != 5 {
		t.Errorf("error count = %d, want 5: %v", len(verr.Errors), verr)
	}

	fields := make(map[string]bool)
	for _, fe := range verr.Errors {
		fields[fe.Field] = true
	}
	for _, want := range []string{
		"store.backend",
		"gate.matcher_backend",
		"gate.semantic_threshold",
		"audit.drift_schedule",
		"telemetry.logging.level",
	} {
		if !fields[want] {
			t.Errorf("missing field error for %s", want)
		}
	}
}

func TestValidateWatchRequiresSeedFile(t *testing.T) {
	cfg := NewDefault()
	cfg.Anchors.Watch = true

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() expected error for watch without seed file")
	}
	if !strings.Contains(err.Error(), "anchors.watch") {
		t.Errorf("error = %v, want anchors.watch mention", err)
	}

	cfg.Anchors.SeedFile = "seeds.yaml"
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() with seed file: %v", err)
	}
}

func TestNewDefaultIsValid(t *testing.T) {
	cfg := NewDefault()
	if err := Validate(cfg); err != nil {
		t.Fatalf("NewDefault() is not valid: %v", err)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("NewDefault() should enable metrics")
	}
	if cfg.Store.SQLite.WALMode != true {
		t.Error("NewDefault() should enable WAL mode")
	}
}

func TestApplyDefaultsIdempotent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	before, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	ApplyDefaults(cfg)
	after, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(before) != string(after) {
		t.Error("ApplyDefaults() changed values on second call")
	}
}
