package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow the
// naming convention GATEWRIGHT_SECTION_FIELD (e.g.,
// GATEWRIGHT_SERVER_LISTEN_ADDRESS). Environment variables always take
// precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format
// GATEWRIGHT_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("GATEWRIGHT_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("GATEWRIGHT_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("GATEWRIGHT_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("GATEWRIGHT_SERVER_API_KEY"); val != "" {
		cfg.Server.APIKeys = append(cfg.Server.APIKeys, val)
	}
	if val := os.Getenv("GATEWRIGHT_SERVER_RATE_LIMIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Server.RateLimit.Enabled = b
		}
	}
	if val := os.Getenv("GATEWRIGHT_SERVER_RATE_LIMIT_RPM"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Server.RateLimit.RequestsPerMinute = i
		}
	}

	// Store overrides
	if val := os.Getenv("GATEWRIGHT_STORE_BACKEND"); val != "" {
		cfg.Store.Backend = val
	}
	if val := os.Getenv("GATEWRIGHT_STORE_SQLITE_PATH"); val != "" {
		cfg.Store.SQLite.Path = val
	}
	if val := os.Getenv("GATEWRIGHT_STORE_SQLITE_BUSY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Store.SQLite.BusyTimeout = d
		}
	}

	// Gate overrides
	if val := os.Getenv("GATEWRIGHT_GATE_MATCHER_BACKEND"); val != "" {
		cfg.Gate.MatcherBackend = val
	}
	if val := os.Getenv("GATEWRIGHT_GATE_SEMANTIC_THRESHOLD"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Gate.SemanticThreshold = f
		}
	}
	if val := os.Getenv("GATEWRIGHT_GATE_SEMANTIC_BASE_URL"); val != "" {
		cfg.Gate.Semantic.BaseURL = val
	}
	if val := os.Getenv("GATEWRIGHT_GATE_SEMANTIC_API_KEY"); val != "" {
		cfg.Gate.Semantic.APIKey = val
	}
	if val := os.Getenv("GATEWRIGHT_GATE_SEMANTIC_MODEL"); val != "" {
		cfg.Gate.Semantic.Model = val
	}
	if val := os.Getenv("GATEWRIGHT_GATE_MONEY_THRESHOLD"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Gate.Money.Threshold = f
		}
	}

	// Anchors overrides
	if val := os.Getenv("GATEWRIGHT_ANCHORS_SEED_FILE"); val != "" {
		cfg.Anchors.SeedFile = val
	}
	if val := os.Getenv("GATEWRIGHT_ANCHORS_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Anchors.Watch = b
		}
	}

	// Audit overrides
	if val := os.Getenv("GATEWRIGHT_AUDIT_DRIFT_SCHEDULE"); val != "" {
		cfg.Audit.DriftSchedule = val
	}
	if val := os.Getenv("GATEWRIGHT_AUDIT_DRIFT_WINDOW"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Audit.DriftWindow = d
		}
	}

	// Telemetry overrides
	if val := os.Getenv("GATEWRIGHT_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("GATEWRIGHT_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("GATEWRIGHT_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}
