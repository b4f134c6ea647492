package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress     = "127.0.0.1:8420"
	DefaultReadTimeout       = 30 * time.Second
	DefaultWriteTimeout      = 30 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultShutdownTimeout   = 30 * time.Second
	DefaultRequestsPerMinute = 600

	// Store defaults
	DefaultStoreBackend      = "sqlite"
	DefaultSQLitePath        = "data/gatewright.db"
	DefaultSQLiteMaxOpen     = 10
	DefaultSQLiteMaxIdle     = 5
	DefaultSQLiteWALMode     = true
	DefaultSQLiteBusyTimeout = 5 * time.Second

	// Gate defaults
	DefaultMatcherBackend    = "lexical"
	DefaultSemanticThreshold = 0.60
	DefaultSemanticModel     = "text-embedding-3-small"
	DefaultSemanticTimeout   = 10 * time.Second
	DefaultMoneyThreshold    = 100.0

	// Anchors defaults
	DefaultWatchDebounce = 200 * time.Millisecond

	// Audit defaults
	DefaultDriftWindow    = 24 * time.Hour
	DefaultDriftMaxTraces = 500

	// Telemetry defaults
	DefaultLoggingLevel   = "info"
	DefaultLoggingFormat  = "json"
	DefaultMetricsEnabled = true
	DefaultMetricsPath    = "/metrics"
)

// Default slice values for configuration fields.
var (
	DefaultCurrencySymbols = []string{"£", "$", "€"}
	DefaultRefundWords     = []string{"refund", "chargeback", "reimburse", "repay"}
	DefaultMoneyScopes     = []string{"payments", "payments.refunds"}
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.RateLimit.RequestsPerMinute == 0 {
		cfg.Server.RateLimit.RequestsPerMinute = DefaultRequestsPerMinute
	}

	// Store defaults
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = DefaultStoreBackend
	}
	if cfg.Store.SQLite.Path == "" {
		cfg.Store.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Store.SQLite.MaxOpenConns == 0 {
		cfg.Store.SQLite.MaxOpenConns = DefaultSQLiteMaxOpen
	}
	if cfg.Store.SQLite.MaxIdleConns == 0 {
		cfg.Store.SQLite.MaxIdleConns = DefaultSQLiteMaxIdle
	}
	if !cfg.Store.SQLite.WALMode {
		cfg.Store.SQLite.WALMode = DefaultSQLiteWALMode
	}
	if cfg.Store.SQLite.BusyTimeout == 0 {
		cfg.Store.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}

	// Gate defaults
	if cfg.Gate.MatcherBackend == "" {
		cfg.Gate.MatcherBackend = DefaultMatcherBackend
	}
	if cfg.Gate.SemanticThreshold == 0 {
		cfg.Gate.SemanticThreshold = DefaultSemanticThreshold
	}
	if cfg.Gate.Semantic.Model == "" {
		cfg.Gate.Semantic.Model = DefaultSemanticModel
	}
	if cfg.Gate.Semantic.Timeout == 0 {
		cfg.Gate.Semantic.Timeout = DefaultSemanticTimeout
	}
	if cfg.Gate.Money.Threshold == 0 {
		cfg.Gate.Money.Threshold = DefaultMoneyThreshold
	}
	if cfg.Gate.Money.CurrencySymbols == nil {
		cfg.Gate.Money.CurrencySymbols = DefaultCurrencySymbols
	}
	if cfg.Gate.Money.RefundWords == nil {
		cfg.Gate.Money.RefundWords = DefaultRefundWords
	}
	if cfg.Gate.Money.Scopes == nil {
		cfg.Gate.Money.Scopes = DefaultMoneyScopes
	}

	// Anchors defaults
	if cfg.Anchors.WatchDebounce == 0 {
		cfg.Anchors.WatchDebounce = DefaultWatchDebounce
	}

	// Audit defaults
	if cfg.Audit.DriftWindow == 0 {
		cfg.Audit.DriftWindow = DefaultDriftWindow
	}
	if cfg.Audit.DriftMaxTraces == 0 {
		cfg.Audit.DriftMaxTraces = DefaultDriftMaxTraces
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}

// NewDefault returns a configuration populated entirely with defaults.
// Metrics are enabled, which ApplyDefaults cannot express for a zero
// value bool.
func NewDefault() *Config {
	cfg := &Config{}
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}
