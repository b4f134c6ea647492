package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateStore(&cfg.Store)...)
	errs = append(errs, validateGate(&cfg.Gate)...)
	errs = append(errs, validateAnchors(&cfg.Anchors)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "shutdown timeout must be positive",
		})
	}

	if cfg.RateLimit.Enabled && cfg.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, FieldError{
			Field:   "server.rate_limit.requests_per_minute",
			Message: "requests per minute must be positive when rate limiting is enabled",
		})
	}

	return errs
}

// validateStore validates storage configuration.
func validateStore(cfg *StoreConfig) []FieldError {
	var errs []FieldError

	validBackends := map[string]bool{"sqlite": true, "memory": true}
	if cfg.Backend == "" {
		errs = append(errs, FieldError{
			Field:   "store.backend",
			Message: "backend is required",
		})
	} else if !validBackends[cfg.Backend] {
		errs = append(errs, FieldError{
			Field:   "store.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'sqlite' or 'memory'", cfg.Backend),
		})
	}

	if cfg.Backend == "sqlite" {
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{
				Field:   "store.sqlite.path",
				Message: "SQLite path is required when backend is 'sqlite'",
			})
		}
		if cfg.SQLite.MaxOpenConns < 0 {
			errs = append(errs, FieldError{
				Field:   "store.sqlite.max_open_conns",
				Message: "max open conns must be non-negative",
			})
		}
		if cfg.SQLite.MaxIdleConns < 0 {
			errs = append(errs, FieldError{
				Field:   "store.sqlite.max_idle_conns",
				Message: "max idle conns must be non-negative",
			})
		}
		if cfg.SQLite.BusyTimeout < 0 {
			errs = append(errs, FieldError{
				Field:   "store.sqlite.busy_timeout",
				Message: "busy timeout must be positive",
			})
		}
	}

	return errs
}

// validateGate validates conflict matcher configuration.
func validateGate(cfg *GateConfig) []FieldError {
	var errs []FieldError

	validBackends := map[string]bool{"lexical": true, "semantic": true}
	if cfg.MatcherBackend == "" {
		errs = append(errs, FieldError{
			Field:   "gate.matcher_backend",
			Message: "matcher backend is required",
		})
	} else if !validBackends[cfg.MatcherBackend] {
		errs = append(errs, FieldError{
			Field:   "gate.matcher_backend",
			Message: fmt.Sprintf("invalid matcher backend %q: must be 'lexical' or 'semantic'", cfg.MatcherBackend),
		})
	}

	if cfg.SemanticThreshold < 0 || cfg.SemanticThreshold > 1.0 {
		errs = append(errs, FieldError{
			Field:   "gate.semantic_threshold",
			Message: "semantic threshold must be between 0.0 and 1.0",
		})
	}

	if cfg.MatcherBackend == "semantic" {
		if cfg.Semantic.BaseURL != "" {
			if _, err := url.Parse(cfg.Semantic.BaseURL); err != nil {
				errs = append(errs, FieldError{
					Field:   "gate.semantic.base_url",
					Message: fmt.Sprintf("invalid URL format: %v", err),
				})
			}
		}
		// API key may be empty here; the environment can inject it and
		// the scorer fails at call time if it never arrives.
		if cfg.Semantic.Timeout < 0 {
			errs = append(errs, FieldError{
				Field:   "gate.semantic.timeout",
				Message: "timeout must be positive",
			})
		}
	}

	if cfg.Money.Threshold < 0 {
		errs = append(errs, FieldError{
			Field:   "gate.money.threshold",
			Message: "threshold must be non-negative",
		})
	}

	return errs
}

// validateAnchors validates seed file configuration.
func validateAnchors(cfg *AnchorsConfig) []FieldError {
	var errs []FieldError

	if cfg.Watch && cfg.SeedFile == "" {
		errs = append(errs, FieldError{
			Field:   "anchors.watch",
			Message: "watch requires a seed file (anchors.seed_file must be set)",
		})
	}
	if cfg.WatchDebounce < 0 {
		errs = append(errs, FieldError{
			Field:   "anchors.watch_debounce",
			Message: "watch debounce must be positive",
		})
	}

	return errs
}

// validateAudit validates drift sweep configuration.
func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	if cfg.DriftSchedule != "" {
		if _, err := cron.ParseStandard(cfg.DriftSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "audit.drift_schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.DriftSchedule, err),
			})
		}
	}
	if cfg.DriftWindow < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.drift_window",
			Message: "drift window must be positive",
		})
	}
	if cfg.DriftMaxTraces < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.drift_max_traces",
			Message: "drift max traces must be non-negative",
		})
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Path == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path is required when metrics are enabled",
		})
	}
	if cfg.Metrics.Path != "" && cfg.Metrics.Path[0] != '/' {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	return errs
}
