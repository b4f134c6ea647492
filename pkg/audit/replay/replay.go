package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gatewright-hq/gatewright/pkg/anchor"
	"gatewright-hq/gatewright/pkg/gate/engine"
	"gatewright-hq/gatewright/pkg/store"
)

// Report is the outcome of replaying one trace.
type Report struct {
	// TraceID identifies the replayed trace.
	TraceID string `json:"trace_id"`

	// DecisionBefore and ReasonBefore are the recorded outcome;
	// DecisionNow and ReasonNow what the current anchors produce.
	DecisionBefore string `json:"decision_before"`
	DecisionNow    string `json:"decision_now"`
	ReasonBefore   string `json:"reason_before"`
	ReasonNow      string `json:"reason_now"`

	// SameDecision, SameReason and SameExplanations summarize whether the
	// replay reproduced the recorded outcome.
	SameDecision     bool `json:"same_decision"`
	SameReason       bool `json:"same_reason"`
	SameExplanations bool `json:"same_explanations"`

	// AnchorDrift itemizes every anchor whose content diverged from its
	// snapshot, one line per divergence.
	AnchorDrift []string `json:"anchor_drift"`

	// NewActiveAnchors counts active anchors created since the trace.
	// They are reported, not replayed.
	NewActiveAnchors int `json:"new_active_anchors"`

	// ExplanationsNow are the explanations the current anchors produce.
	ExplanationsNow []string `json:"explanations_now"`

	// MatchDebug is the stored debug payload of the original matcher run:
	// which backend, threshold and fallback produced the recorded decision.
	MatchDebug json.RawMessage `json:"match_debug,omitempty"`

	// ReplayMatchDebug describes the matcher run performed by this replay.
	ReplayMatchDebug json.RawMessage `json:"replay_match_debug,omitempty"`
}

// Drifted reports whether the replay found any divergence at all.
func (r *Report) Drifted() bool {
	return !r.SameDecision || !r.SameReason || len(r.AnchorDrift) > 0
}

// Replayer re-runs recorded traces against current anchor content.
type Replayer struct {
	store   store.Store
	matcher *engine.Matcher
	logger  *slog.Logger
}

// New creates a replayer. The matcher should carry the same configuration
// as the live service so a replay differs only by anchor content.
func New(st store.Store, matcher *engine.Matcher) *Replayer {
	return &Replayer{
		store:   st,
		matcher: matcher,
		logger:  slog.Default().With("component", "audit.replay"),
	}
}

// Replay re-evaluates the trace's request against the current versions of
// the anchors it originally considered, in their original order.
func (r *Replayer) Replay(ctx context.Context, traceID string) (*Report, error) {
	trace, err := r.store.GetTrace(ctx, traceID)
	if err != nil {
		return nil, err
	}

	report := &Report{
		TraceID:        trace.ID,
		DecisionBefore: trace.Decision,
		ReasonBefore:   trace.Reason,
	}

	snapshotIDs := make(map[int64]bool, len(trace.Anchors))
	current := make([]*anchor.Anchor, 0, len(trace.Anchors))
	for _, snap := range trace.Anchors {
		snapshotIDs[snap.AnchorID] = true

		a, err := r.store.GetAnchor(ctx, snap.AnchorID)
		if err != nil {
			if store.IsNotFound(err) {
				report.AnchorDrift = append(report.AnchorDrift,
					fmt.Sprintf("anchor %d: missing (deleted)", snap.AnchorID))
				continue
			}
			return nil, err
		}
		current = append(current, a)

		if a.StableHash() == snap.AnchorHash {
			continue
		}
		if a.Level != snap.Level {
			report.AnchorDrift = append(report.AnchorDrift,
				fmt.Sprintf("anchor %d: level %d -> %d", snap.AnchorID, snap.Level, a.Level))
		}
		if a.Scope != snap.Scope {
			report.AnchorDrift = append(report.AnchorDrift,
				fmt.Sprintf("anchor %d: scope %q -> %q", snap.AnchorID, snap.Scope, a.Scope))
		}
		if a.Active != snap.Active {
			if snap.Active {
				report.AnchorDrift = append(report.AnchorDrift,
					fmt.Sprintf("anchor %d: archived since trace", snap.AnchorID))
			} else {
				report.AnchorDrift = append(report.AnchorDrift,
					fmt.Sprintf("anchor %d: reactivated since trace", snap.AnchorID))
			}
		}
		if a.Statement != snap.Statement {
			report.AnchorDrift = append(report.AnchorDrift,
				fmt.Sprintf("anchor %d: statement changed", snap.AnchorID))
		}
	}

	active, err := r.store.ListAnchors(ctx, &store.AnchorQuery{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	for _, a := range active {
		if !snapshotIDs[a.ID] {
			report.NewActiveAnchors++
		}
	}

	matchRes, err := r.matcher.FindConflicts(ctx, trace.RequestText, current)
	if err != nil {
		return nil, err
	}

	state := engine.AffectState{
		Arousal:   engine.AffectLevel(trace.Arousal),
		Dominance: engine.AffectLevel(trace.Dominance),
	}
	decision := engine.Decide(state, matchRes.ConflictedIDs(), matchRes.MaxLevel)

	report.DecisionNow = string(decision.Decision)
	report.ReasonNow = decision.Reason
	report.SameDecision = report.DecisionNow == report.DecisionBefore
	report.SameReason = report.ReasonNow == report.ReasonBefore
	report.ExplanationsNow = engine.Explain(trace.RequestText, matchRes.Matches)
	report.SameExplanations = sameStrings(report.ExplanationsNow, trace.Explanations)

	report.MatchDebug = trace.MatchDebug
	if debug, err := json.Marshal(matchRes.Debug); err == nil {
		report.ReplayMatchDebug = debug
	}

	r.logger.Info("trace replayed",
		"trace_id", trace.ID,
		"same_decision", report.SameDecision,
		"same_reason", report.SameReason,
		"anchor_drift", len(report.AnchorDrift),
		"new_active_anchors", report.NewActiveAnchors,
	)
	return report, nil
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
