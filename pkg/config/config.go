package config

import "time"

// Config is the root configuration for the gatewright service.
type Config struct {
	// Server contains HTTP API server configuration including listen
	// address, timeouts, authentication, and rate limiting.
	Server ServerConfig `yaml:"server"`

	// Store contains storage backend configuration for anchors, gate
	// logs, and decision traces.
	Store StoreConfig `yaml:"store"`

	// Gate contains conflict matcher and decision configuration.
	Gate GateConfig `yaml:"gate"`

	// Anchors contains seed file configuration for declarative anchor
	// and profile loading.
	Anchors AnchorsConfig `yaml:"anchors"`

	// Audit contains configuration for the scheduled drift sweep over
	// recorded decision traces.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains HTTP API server configuration.
type ServerConfig struct {
	// ListenAddress is the address the server binds to.
	// Default: 127.0.0.1:8420
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request on a
	// kept-alive connection.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// APIKeys lists accepted values for the X-API-Key header. Empty
	// disables authentication.
	APIKeys []string `yaml:"api_keys"`

	// RateLimit configures per-client request rate limiting.
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig configures the fixed-window request limiter.
type RateLimitConfig struct {
	// Enabled turns the limiter on.
	Enabled bool `yaml:"enabled"`

	// RequestsPerMinute is the per-client request budget.
	// Default: 600
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// StoreConfig contains storage backend configuration.
type StoreConfig struct {
	// Backend selects the storage backend ("sqlite" or "memory"). The
	// memory backend loses all state on restart and exists for tests and
	// local experiments.
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig contains SQLite backend configuration.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: data/gatewright.db
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// GateConfig contains conflict matcher configuration.
type GateConfig struct {
	// MatcherBackend selects the matcher backend ("lexical" or
	// "semantic"). The semantic backend requires an embeddings endpoint
	// and falls back to lexical when scoring fails.
	// Default: "lexical"
	MatcherBackend string `yaml:"matcher_backend"`

	// SemanticThreshold is the minimum similarity score for the semantic
	// backend.
	// Default: 0.60
	SemanticThreshold float64 `yaml:"semantic_threshold"`

	// Semantic configures the embeddings endpoint for the semantic
	// backend.
	Semantic SemanticConfig `yaml:"semantic"`

	// Money configures the monetary domain trigger.
	Money MoneyConfig `yaml:"money"`
}

// SemanticConfig configures the embeddings client used by the semantic
// matcher backend.
type SemanticConfig struct {
	// BaseURL points at an OpenAI-compatible embeddings endpoint. Empty
	// means the upstream OpenAI API.
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates against the endpoint. May be injected via
	// GATEWRIGHT_GATE_SEMANTIC_API_KEY instead of the file.
	APIKey string `yaml:"api_key"`

	// Model is the embedding model name.
	// Default: text-embedding-3-small
	Model string `yaml:"model"`

	// Timeout bounds a single scoring call.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// MoneyConfig configures the monetary domain trigger. The threshold and
// symbol set are policy, not constants; deployments with other locales
// override them.
type MoneyConfig struct {
	// Threshold is the amount above which the trigger fires.
	// Default: 100
	Threshold float64 `yaml:"threshold"`

	// CurrencySymbols are the symbols recognized in front of amounts.
	// Default: £, $, €
	CurrencySymbols []string `yaml:"currency_symbols"`

	// RefundWords are the intent words that arm the trigger.
	// Default: refund, chargeback, reimburse, repay
	RefundWords []string `yaml:"refund_words"`

	// Scopes are the anchor scopes flagged when the trigger fires.
	// Default: payments, payments.refunds
	Scopes []string `yaml:"scopes"`
}

// AnchorsConfig contains seed file configuration.
type AnchorsConfig struct {
	// SeedFile is a YAML file of anchors and profiles loaded at startup.
	// Empty disables seeding.
	SeedFile string `yaml:"seed_file"`

	// Watch reloads the seed file when it changes on disk.
	// Default: false
	Watch bool `yaml:"watch"`

	// WatchDebounce is the quiet period before a reload after file
	// changes.
	// Default: 200ms
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// AuditConfig contains drift sweep configuration.
type AuditConfig struct {
	// DriftSchedule is a cron expression for the drift sweep over recent
	// decision traces. Empty disables the sweep.
	// Example: "0 * * * *" for hourly.
	DriftSchedule string `yaml:"drift_schedule"`

	// DriftWindow is how far back a sweep looks for traces.
	// Default: 24h
	DriftWindow time.Duration `yaml:"drift_window"`

	// DriftMaxTraces caps the traces replayed per sweep.
	// Default: 500
	DriftMaxTraces int `yaml:"drift_max_traces"`
}

// TelemetryConfig contains logging and metrics configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json" or "text").
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled exposes the Prometheus scrape endpoint.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the scrape endpoint path.
	// Default: /metrics
	Path string `yaml:"path"`
}
