package replay

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"gatewright-hq/gatewright/pkg/anchor"
	"gatewright-hq/gatewright/pkg/gate"
	"gatewright-hq/gatewright/pkg/gate/engine"
	"gatewright-hq/gatewright/pkg/store"
)

func setup(t *testing.T) (*Replayer, *gate.Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	matcher := engine.NewMatcher(nil, nil)
	return New(st, matcher), gate.NewService(st, matcher, nil), st
}

func mustEvaluate(t *testing.T, svc *gate.Service, request string) *gate.Result {
	t.Helper()
	res, err := svc.Evaluate(context.Background(), &gate.EvaluateInput{Request: request})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	return res
}

func TestReplayUnchangedAnchors(t *testing.T) {
	r, svc, st := setup(t)
	ctx := context.Background()

	a := &anchor.Anchor{Level: anchor.LevelBoundary, Statement: "cats are allowed"}
	if err := st.CreateAnchor(ctx, a); err != nil {
		t.Fatalf("CreateAnchor: %v", err)
	}
	res := mustEvaluate(t, svc, "cats are not allowed")

	report, err := r.Replay(ctx, res.TraceID)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}

	if !report.SameDecision || !report.SameReason || !report.SameExplanations {
		t.Errorf("replay diverged with unchanged anchors: %+v", report)
	}
	if report.Drifted() {
		t.Errorf("drift reported with unchanged anchors: %v", report.AnchorDrift)
	}
	if report.DecisionBefore != "gate" || report.DecisionNow != "gate" {
		t.Errorf("decisions = %s -> %s, want gate -> gate", report.DecisionBefore, report.DecisionNow)
	}
	if report.NewActiveAnchors != 0 {
		t.Errorf("new active anchors = %d, want 0", report.NewActiveAnchors)
	}
}

func TestReplayKeepsProfilePriorityOrder(t *testing.T) {
	cfg := store.DefaultSQLiteConfig()
	cfg.Path = filepath.Join(t.TempDir(), "replay.db")
	st, err := store.NewSQLiteStore(cfg)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer st.Close()
	matcher := engine.NewMatcher(nil, nil)
	r := New(st, matcher)
	svc := gate.NewService(st, matcher, nil)
	ctx := context.Background()

	a1 := &anchor.Anchor{Level: anchor.LevelCaution, Statement: "never delete customer records"}
	a2 := &anchor.Anchor{Level: anchor.LevelCaution, Statement: "customer records must be retained"}
	for _, a := range []*anchor.Anchor{a1, a2} {
		if err := st.CreateAnchor(ctx, a); err != nil {
			t.Fatalf("CreateAnchor: %v", err)
		}
	}

	// Priority order deliberately inverts id order.
	p := &anchor.Profile{Name: "records"}
	if err := st.CreateProfile(ctx, p); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	if err := st.AssignAnchor(ctx, p.ID, &anchor.ProfileAnchor{AnchorID: a2.ID, Priority: 0, Enabled: true}); err != nil {
		t.Fatalf("AssignAnchor: %v", err)
	}
	if err := st.AssignAnchor(ctx, p.ID, &anchor.ProfileAnchor{AnchorID: a1.ID, Priority: 1, Enabled: true}); err != nil {
		t.Fatalf("AssignAnchor: %v", err)
	}

	res, err := svc.Evaluate(ctx, &gate.EvaluateInput{
		Request: "please delete the customer records",
		Profile: "records",
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Decision != engine.DecisionGate || len(res.Explanations) != 2 {
		t.Fatalf("setup decision = %s with %d explanations, want gate with 2", res.Decision, len(res.Explanations))
	}

	report, err := r.Replay(ctx, res.TraceID)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if report.Drifted() {
		t.Fatalf("drift reported with unchanged anchors: %+v", report)
	}
	if !report.SameExplanations {
		t.Errorf("explanations diverged: recorded order not preserved, got %v", report.ExplanationsNow)
	}
}

func TestReplayAfterArchive(t *testing.T) {
	r, svc, st := setup(t)
	ctx := context.Background()

	a := &anchor.Anchor{Level: anchor.LevelBoundary, Statement: "cats are allowed"}
	if err := st.CreateAnchor(ctx, a); err != nil {
		t.Fatalf("CreateAnchor: %v", err)
	}
	res := mustEvaluate(t, svc, "cats are not allowed")
	if res.Decision != engine.DecisionGate {
		t.Fatalf("setup decision = %s, want gate", res.Decision)
	}

	if err := st.ArchiveAnchor(ctx, a.ID); err != nil {
		t.Fatalf("ArchiveAnchor: %v", err)
	}

	report, err := r.Replay(ctx, res.TraceID)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}

	// The archived anchor no longer matches, so the decision flips.
	if report.SameDecision {
		t.Error("decision unchanged after the only conflicting anchor was archived")
	}
	if report.DecisionNow != "proceed" || report.ReasonNow != engine.ReasonNoConflict {
		t.Errorf("now = %s/%s, want proceed/no_conflict", report.DecisionNow, report.ReasonNow)
	}
	if len(report.AnchorDrift) != 1 || report.AnchorDrift[0] != "anchor 1: archived since trace" {
		t.Errorf("drift = %v", report.AnchorDrift)
	}
	if !report.Drifted() {
		t.Error("Drifted() = false after archive")
	}
}

func TestReplayAfterEdit(t *testing.T) {
	r, svc, st := setup(t)
	ctx := context.Background()

	a := &anchor.Anchor{Level: anchor.LevelCaution, Statement: "cats are allowed"}
	if err := st.CreateAnchor(ctx, a); err != nil {
		t.Fatalf("CreateAnchor: %v", err)
	}
	res := mustEvaluate(t, svc, "cats are not allowed")

	a.Level = anchor.LevelBoundary
	a.Statement = "cats are always allowed"
	if err := st.UpdateAnchor(ctx, a); err != nil {
		t.Fatalf("UpdateAnchor: %v", err)
	}

	report, err := r.Replay(ctx, res.TraceID)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}

	wantDrift := map[string]bool{
		"anchor 1: level 2 -> 3":      true,
		"anchor 1: statement changed": true,
	}
	if len(report.AnchorDrift) != len(wantDrift) {
		t.Fatalf("drift = %v, want %d entries", report.AnchorDrift, len(wantDrift))
	}
	for _, d := range report.AnchorDrift {
		if !wantDrift[d] {
			t.Errorf("unexpected drift entry %q", d)
		}
	}
}

func TestReplayCountsNewAnchors(t *testing.T) {
	r, svc, st := setup(t)
	ctx := context.Background()

	a := &anchor.Anchor{Level: anchor.LevelAdvisory, Statement: "original anchor"}
	if err := st.CreateAnchor(ctx, a); err != nil {
		t.Fatalf("CreateAnchor: %v", err)
	}
	res := mustEvaluate(t, svc, "unrelated request text")

	for _, stmt := range []string{"new anchor one", "new anchor two"} {
		if err := st.CreateAnchor(ctx, &anchor.Anchor{Level: 1, Statement: stmt}); err != nil {
			t.Fatalf("CreateAnchor: %v", err)
		}
	}

	report, err := r.Replay(ctx, res.TraceID)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}

	if report.NewActiveAnchors != 2 {
		t.Errorf("new active anchors = %d, want 2", report.NewActiveAnchors)
	}
	// New anchors are counted, never replayed: the outcome is unchanged.
	if !report.SameDecision || !report.SameReason {
		t.Errorf("replay diverged: %+v", report)
	}
}

func TestReplayReportsStoredMatchDebug(t *testing.T) {
	r, svc, st := setup(t)
	ctx := context.Background()

	a := &anchor.Anchor{Level: anchor.LevelBoundary, Statement: "cats are allowed"}
	if err := st.CreateAnchor(ctx, a); err != nil {
		t.Fatalf("CreateAnchor: %v", err)
	}
	res := mustEvaluate(t, svc, "cats are not allowed")

	trace, err := st.GetTrace(ctx, res.TraceID)
	if err != nil {
		t.Fatalf("GetTrace: %v", err)
	}

	report, err := r.Replay(ctx, res.TraceID)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}

	// The report's match debug is the historical record, not the debug of
	// the replay's own matcher run.
	if !bytes.Equal(report.MatchDebug, trace.MatchDebug) {
		t.Errorf("match debug = %s, want stored payload %s", report.MatchDebug, trace.MatchDebug)
	}
	if len(report.ReplayMatchDebug) == 0 {
		t.Error("replay match debug not populated")
	}
}

func TestReplayMissingTrace(t *testing.T) {
	r, _, _ := setup(t)
	if _, err := r.Replay(context.Background(), "missing"); !store.IsNotFound(err) {
		t.Errorf("missing trace = %v, want not found", err)
	}
}

func TestReplayIsIdempotent(t *testing.T) {
	r, svc, st := setup(t)
	ctx := context.Background()

	a := &anchor.Anchor{Level: anchor.LevelBoundary, Statement: "cats are allowed"}
	if err := st.CreateAnchor(ctx, a); err != nil {
		t.Fatalf("CreateAnchor: %v", err)
	}
	res := mustEvaluate(t, svc, "cats are not allowed")

	first, err := r.Replay(ctx, res.TraceID)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	second, err := r.Replay(ctx, res.TraceID)
	if err != nil {
		t.Fatalf("Replay(second): %v", err)
	}

	if first.DecisionNow != second.DecisionNow || first.ReasonNow != second.ReasonNow {
		t.Errorf("replays disagree: %s/%s vs %s/%s",
			first.DecisionNow, first.ReasonNow, second.DecisionNow, second.ReasonNow)
	}
	if len(first.AnchorDrift) != len(second.AnchorDrift) {
		t.Errorf("drift disagrees: %v vs %v", first.AnchorDrift, second.AnchorDrift)
	}
}
