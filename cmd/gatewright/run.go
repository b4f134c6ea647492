package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"gatewright-hq/gatewright/pkg/anchor/loader"
	"gatewright-hq/gatewright/pkg/audit/driftwatch"
	"gatewright-hq/gatewright/pkg/audit/replay"
	"gatewright-hq/gatewright/pkg/cli"
	"gatewright-hq/gatewright/pkg/config"
	"gatewright-hq/gatewright/pkg/gate"
	"gatewright-hq/gatewright/pkg/gate/engine"
	"gatewright-hq/gatewright/pkg/gate/semantic"
	"gatewright-hq/gatewright/pkg/server"
	"gatewright-hq/gatewright/pkg/store"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gatewright API server",
	Long: `Start the gatewright API server with the specified configuration.

The server exposes anchor and profile management, gate evaluation with
reframe and acknowledge follow-ons, audit log retrieval, and trace replay.

Examples:
  # Start with default config
  gatewright run

  # Start with custom config
  gatewright run --config /etc/gatewright/config.yaml

  # Override listen address
  gatewright run --listen 0.0.0.0:8420

  # Validate config without starting the server
  gatewright run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	initLogging(cfg)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	fmt.Printf("✓ Store initialized (%s)\n", cfg.Store.Backend)

	// Cancelled on SIGINT/SIGTERM so every component winds down together.
	ctx := cli.SetupSignalHandler()

	// Seed anchors and profiles before the first request arrives.
	if cfg.Anchors.SeedFile != "" {
		seedLoader := loader.New(st)
		result, err := seedLoader.LoadFile(ctx, cfg.Anchors.SeedFile)
		if err != nil {
			return fmt.Errorf("failed to load seed file: %w", err)
		}
		fmt.Printf("✓ Seed loaded (%d anchors created, %d existing, %d profiles)\n",
			result.AnchorsCreated, result.AnchorsExisting, result.ProfilesCreated)

		if cfg.Anchors.Watch {
			watcher, err := loader.NewWatcher(&loader.WatcherConfig{
				Path:             cfg.Anchors.SeedFile,
				DebounceInterval: cfg.Anchors.WatchDebounce,
			}, seedLoader)
			if err != nil {
				return fmt.Errorf("failed to create seed watcher: %w", err)
			}
			go func() {
				if err := watcher.Watch(ctx); err != nil {
					slog.Error("seed watcher stopped", "error", err)
				}
			}()
			defer watcher.Stop()
			fmt.Println("✓ Seed file watcher started")
		}
	}

	matcher := buildMatcher(cfg)
	svc := gate.NewService(st, matcher, gate.NewMetrics())
	replayer := replay.New(st, matcher)

	// Scheduled drift sweep over recent traces.
	if cfg.Audit.DriftSchedule != "" {
		watcher := driftwatch.New(&driftwatch.Config{
			Schedule:  cfg.Audit.DriftSchedule,
			Window:    cfg.Audit.DriftWindow,
			MaxTraces: cfg.Audit.DriftMaxTraces,
		}, st, replayer, driftwatch.NewMetrics())
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("failed to start drift watcher: %w", err)
		}
		defer watcher.Stop()
		fmt.Printf("✓ Drift sweep scheduled (%s)\n", cfg.Audit.DriftSchedule)
	}

	srv := server.NewServer(cfg, st, svc, replayer)

	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}

// loadConfig loads the configuration file with environment overrides. A
// missing file at the default path falls back to built-in defaults so the
// binary runs out of the box.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) && cfgFile == "config.yaml" {
		return config.NewDefault(), nil
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg, nil
}

// initLogging configures the default slog logger from the telemetry
// section. The verbose flag wins over the configured level.
func initLogging(cfg *config.Config) {
	var logLevel slog.Level
	switch cfg.Telemetry.Logging.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	if verbose {
		logLevel = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler
	if cfg.Telemetry.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// openStore creates the configured storage backend.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "sqlite":
		return store.NewSQLiteStore(&store.SQLiteConfig{
			Path:         cfg.Store.SQLite.Path,
			MaxOpenConns: cfg.Store.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Store.SQLite.MaxIdleConns,
			WALMode:      cfg.Store.SQLite.WALMode,
			BusyTimeout:  cfg.Store.SQLite.BusyTimeout,
		})
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Store.Backend)
	}
}

// buildMatcher creates the conflict matcher, attaching the semantic scorer
// when the semantic backend is selected.
func buildMatcher(cfg *config.Config) *engine.Matcher {
	matcherCfg := &engine.Config{
		Backend:   cfg.Gate.MatcherBackend,
		Threshold: cfg.Gate.SemanticThreshold,
		Money: engine.MoneyConfig{
			Threshold:       cfg.Gate.Money.Threshold,
			CurrencySymbols: cfg.Gate.Money.CurrencySymbols,
			RefundWords:     cfg.Gate.Money.RefundWords,
			Scopes:          cfg.Gate.Money.Scopes,
		},
	}

	var scorer engine.SemanticScorer
	if cfg.Gate.MatcherBackend == engine.BackendSemantic {
		scorer = semantic.New(semantic.Config{
			BaseURL: cfg.Gate.Semantic.BaseURL,
			APIKey:  cfg.Gate.Semantic.APIKey,
			Model:   cfg.Gate.Semantic.Model,
			Timeout: cfg.Gate.Semantic.Timeout,
		})
	}

	return engine.NewMatcher(matcherCfg, scorer)
}
