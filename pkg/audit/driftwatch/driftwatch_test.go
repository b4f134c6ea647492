package driftwatch

import (
	"context"
	"testing"

	"gatewright-hq/gatewright/pkg/anchor"
	"gatewright-hq/gatewright/pkg/audit/replay"
	"gatewright-hq/gatewright/pkg/gate"
	"gatewright-hq/gatewright/pkg/gate/engine"
	"gatewright-hq/gatewright/pkg/store"
)

func TestSweepFlagsDrift(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	matcher := engine.NewMatcher(nil, nil)
	svc := gate.NewService(st, matcher, nil)
	w := New(nil, st, replay.New(st, matcher), nil)

	a := &anchor.Anchor{Level: anchor.LevelBoundary, Statement: "cats are allowed"}
	if err := st.CreateAnchor(ctx, a); err != nil {
		t.Fatalf("CreateAnchor: %v", err)
	}

	// A gated trace and an untouched proceed trace.
	gated, err := svc.Evaluate(ctx, &gate.EvaluateInput{Request: "cats are not allowed"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if gated.Decision != engine.DecisionGate {
		t.Fatalf("setup decision = %s, want gate", gated.Decision)
	}
	if _, err := svc.Evaluate(ctx, &gate.EvaluateInput{Request: "water the plants"}); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	drifted, err := w.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if drifted != 0 {
		t.Errorf("drifted = %d before any anchor change, want 0", drifted)
	}

	if err := st.ArchiveAnchor(ctx, a.ID); err != nil {
		t.Fatalf("ArchiveAnchor: %v", err)
	}

	drifted, err = w.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep after archive: %v", err)
	}
	// Both traces considered the anchor, so both carry anchor drift.
	if drifted != 2 {
		t.Errorf("drifted = %d after archive, want 2", drifted)
	}
}

func TestStartWithoutSchedule(t *testing.T) {
	st := store.NewMemoryStore()
	w := New(&Config{}, st, replay.New(st, engine.NewMatcher(nil, nil)), nil)

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if w.IsRunning() {
		t.Error("watcher running with no schedule")
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	st := store.NewMemoryStore()
	w := New(&Config{Schedule: "not a cron"}, st, replay.New(st, engine.NewMatcher(nil, nil)), nil)

	if err := w.Start(context.Background()); err == nil {
		t.Fatal("Start accepted an invalid schedule")
	}
}

func TestStartAndStop(t *testing.T) {
	st := store.NewMemoryStore()
	w := New(&Config{Schedule: "0 * * * *"}, st, replay.New(st, engine.NewMatcher(nil, nil)), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !w.IsRunning() {
		t.Fatal("watcher not running after Start")
	}
	w.Stop()
	if w.IsRunning() {
		t.Error("watcher still running after Stop")
	}
}
