package driftwatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"

	"gatewright-hq/gatewright/pkg/audit/replay"
	"gatewright-hq/gatewright/pkg/store"
)

// Config configures the drift watcher.
type Config struct {
	// Schedule is a cron expression for the sweep. Empty disables the
	// watcher.
	// Example: "0 * * * *" for hourly.
	Schedule string

	// Window is how far back a sweep looks for traces.
	// Default: 24h
	Window time.Duration

	// MaxTraces caps the traces replayed per sweep.
	// Default: 500
	MaxTraces int
}

// DefaultConfig returns the default drift watcher configuration.
func DefaultConfig() *Config {
	return &Config{
		Window:    24 * time.Hour,
		MaxTraces: 500,
	}
}

// Metrics contains Prometheus metrics for the drift watcher.
type Metrics struct {
	sweeps        prometheus.Counter
	tracesChecked prometheus.Counter
	driftDetected *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with Prometheus collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		sweeps: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatewright_driftwatch_sweeps_total",
			Help: "Total number of drift sweeps executed",
		}),
		tracesChecked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatewright_driftwatch_traces_checked_total",
			Help: "Total number of traces replayed by drift sweeps",
		}),
		driftDetected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gatewright_driftwatch_drift_detected_total",
			Help: "Total number of traces found drifted, by kind",
		}, []string{"kind"}),
	}
}

// Watcher runs scheduled drift sweeps.
type Watcher struct {
	config   *Config
	store    store.Store
	replayer *replay.Replayer
	metrics  *Metrics
	cron     *cron.Cron
	mu       sync.Mutex
	running  bool
	logger   *slog.Logger
}

// New creates a drift watcher. Metrics may be nil.
func New(config *Config, st store.Store, replayer *replay.Replayer, metrics *Metrics) *Watcher {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Window <= 0 {
		config.Window = 24 * time.Hour
	}
	if config.MaxTraces <= 0 {
		config.MaxTraces = 500
	}
	return &Watcher{
		config:   config,
		store:    st,
		replayer: replayer,
		metrics:  metrics,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "audit.driftwatch"),
	}
}

// Start begins scheduled sweeps. If no schedule is configured, the watcher
// does nothing.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.config.Schedule == "" {
		w.logger.Info("drift sweep schedule not configured, skipping watcher")
		return nil
	}

	if _, err := cron.ParseStandard(w.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", w.config.Schedule, err)
	}

	if _, err := w.cron.AddFunc(w.config.Schedule, func() {
		if _, err := w.Sweep(ctx); err != nil {
			w.logger.Error("scheduled drift sweep failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule drift sweep: %w", err)
	}

	w.cron.Start()
	w.running = true

	w.logger.Info("drift watcher started",
		"schedule", w.config.Schedule,
		"window", w.config.Window,
		"max_traces", w.config.MaxTraces,
	)

	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	return nil
}

// Sweep replays every trace recorded inside the window and returns the count
// of drifted traces. It can be invoked directly, outside the schedule.
func (w *Watcher) Sweep(ctx context.Context) (int, error) {
	since := time.Now().UTC().Add(-w.config.Window)
	ids, err := w.store.ListTraceIDs(ctx, since, w.config.MaxTraces)
	if err != nil {
		return 0, err
	}

	if w.metrics != nil {
		w.metrics.sweeps.Inc()
	}

	drifted := 0
	for _, id := range ids {
		report, err := w.replayer.Replay(ctx, id)
		if err != nil {
			w.logger.Error("replay failed during sweep", "trace_id", id, "error", err)
			continue
		}
		if w.metrics != nil {
			w.metrics.tracesChecked.Inc()
		}
		if !report.Drifted() {
			continue
		}

		drifted++
		w.recordDrift(report)
		w.logger.Warn("trace drift detected",
			"trace_id", id,
			"decision_before", report.DecisionBefore,
			"decision_now", report.DecisionNow,
			"anchor_drift", report.AnchorDrift,
			"new_active_anchors", report.NewActiveAnchors,
		)
	}

	w.logger.Info("drift sweep completed", "checked", len(ids), "drifted", drifted)
	return drifted, nil
}

func (w *Watcher) recordDrift(report *replay.Report) {
	if w.metrics == nil {
		return
	}
	if !report.SameDecision {
		w.metrics.driftDetected.WithLabelValues("decision").Inc()
	}
	if !report.SameReason {
		w.metrics.driftDetected.WithLabelValues("reason").Inc()
	}
	if len(report.AnchorDrift) > 0 {
		w.metrics.driftDetected.WithLabelValues("anchor").Inc()
	}
}

// Stop stops the watcher and waits for a running sweep to complete.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cron != nil && w.running {
		ctx := w.cron.Stop()
		<-ctx.Done()
		w.running = false
		w.logger.Info("drift watcher stopped")
	}
}

// IsRunning returns true if the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
