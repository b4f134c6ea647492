package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"gatewright-hq/gatewright/pkg/anchor"
	"gatewright-hq/gatewright/pkg/audit"
)

// withBackends runs a test against both the memory and SQLite backends.
func withBackends(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		s := NewMemoryStore()
		defer s.Close()
		fn(t, s)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := DefaultSQLiteConfig()
		cfg.Path = filepath.Join(t.TempDir(), "test.db")
		s, err := NewSQLiteStore(cfg)
		if err != nil {
			t.Fatalf("NewSQLiteStore: %v", err)
		}
		defer s.Close()
		fn(t, s)
	})
}

func TestAnchorLifecycle(t *testing.T) {
	withBackends(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		a := &anchor.Anchor{Level: anchor.LevelBoundary, Statement: "never delete backups"}
		if err := s.CreateAnchor(ctx, a); err != nil {
			t.Fatalf("CreateAnchor: %v", err)
		}
		if a.ID == 0 {
			t.Fatal("CreateAnchor did not assign an id")
		}
		if a.Scope != anchor.DefaultScope {
			t.Errorf("scope = %q, want default", a.Scope)
		}
		if !a.Active {
			t.Error("new anchor is not active")
		}
		if a.CreatedAt.IsZero() {
			t.Error("CreatedAt not assigned")
		}

		got, err := s.GetAnchor(ctx, a.ID)
		if err != nil {
			t.Fatalf("GetAnchor: %v", err)
		}
		if got.Statement != a.Statement || got.Level != a.Level {
			t.Errorf("GetAnchor = %+v, want %+v", got, a)
		}

		got.Statement = "never delete backups without approval"
		got.Level = anchor.LevelCaution
		if err := s.UpdateAnchor(ctx, got); err != nil {
			t.Fatalf("UpdateAnchor: %v", err)
		}
		updated, err := s.GetAnchor(ctx, a.ID)
		if err != nil {
			t.Fatalf("GetAnchor after update: %v", err)
		}
		if updated.Statement != got.Statement || updated.Level != anchor.LevelCaution {
			t.Errorf("update not persisted: %+v", updated)
		}

		if err := s.ArchiveAnchor(ctx, a.ID); err != nil {
			t.Fatalf("ArchiveAnchor: %v", err)
		}
		archived, err := s.GetAnchor(ctx, a.ID)
		if err != nil {
			t.Fatalf("GetAnchor after archive: %v", err)
		}
		if archived.Active {
			t.Error("anchor still active after archive")
		}
	})
}

func TestAnchorNotFound(t *testing.T) {
	withBackends(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		if _, err := s.GetAnchor(ctx, 999); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetAnchor(missing) = %v, want ErrNotFound", err)
		}
		if err := s.ArchiveAnchor(ctx, 999); !errors.Is(err, ErrNotFound) {
			t.Errorf("ArchiveAnchor(missing) = %v, want ErrNotFound", err)
		}
		if err := s.UpdateAnchor(ctx, &anchor.Anchor{ID: 999, Level: 1, Statement: "x", Scope: "global"}); !errors.Is(err, ErrNotFound) {
			t.Errorf("UpdateAnchor(missing) = %v, want ErrNotFound", err)
		}
	})
}

func TestListAnchorsFilters(t *testing.T) {
	withBackends(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		global := &anchor.Anchor{Level: 1, Statement: "one", Scope: "global"}
		payments := &anchor.Anchor{Level: 2, Statement: "two", Scope: "payments"}
		archived := &anchor.Anchor{Level: 3, Statement: "three", Scope: "payments"}
		for _, a := range []*anchor.Anchor{global, payments, archived} {
			if err := s.CreateAnchor(ctx, a); err != nil {
				t.Fatalf("CreateAnchor: %v", err)
			}
		}
		if err := s.ArchiveAnchor(ctx, archived.ID); err != nil {
			t.Fatalf("ArchiveAnchor: %v", err)
		}

		all, err := s.ListAnchors(ctx, nil)
		if err != nil {
			t.Fatalf("ListAnchors: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("all anchors = %d, want 3", len(all))
		}
		// Oldest first.
		if all[0].ID != global.ID {
			t.Errorf("first anchor = %d, want %d", all[0].ID, global.ID)
		}

		active, err := s.ListAnchors(ctx, &AnchorQuery{ActiveOnly: true})
		if err != nil {
			t.Fatalf("ListAnchors(active): %v", err)
		}
		if len(active) != 2 {
			t.Errorf("active anchors = %d, want 2", len(active))
		}

		scoped, err := s.ListAnchors(ctx, &AnchorQuery{Scope: "payments", ActiveOnly: true})
		if err != nil {
			t.Fatalf("ListAnchors(payments): %v", err)
		}
		if len(scoped) != 1 || scoped[0].ID != payments.ID {
			t.Errorf("payments anchors = %+v, want only id %d", scoped, payments.ID)
		}
	})
}

func TestFindAnchorByStatement(t *testing.T) {
	withBackends(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		a := &anchor.Anchor{Level: 1, Statement: "seeded statement", Scope: "global"}
		if err := s.CreateAnchor(ctx, a); err != nil {
			t.Fatalf("CreateAnchor: %v", err)
		}

		got, err := s.FindAnchorByStatement(ctx, "global", "seeded statement")
		if err != nil {
			t.Fatalf("FindAnchorByStatement: %v", err)
		}
		if got.ID != a.ID {
			t.Errorf("found id = %d, want %d", got.ID, a.ID)
		}

		if _, err := s.FindAnchorByStatement(ctx, "payments", "seeded statement"); !errors.Is(err, ErrNotFound) {
			t.Errorf("wrong scope = %v, want ErrNotFound", err)
		}
	})
}

func TestProfileLifecycle(t *testing.T) {
	withBackends(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		base := &anchor.Profile{Name: "base", Description: "baseline", Default: true}
		if err := s.CreateProfile(ctx, base); err != nil {
			t.Fatalf("CreateProfile: %v", err)
		}
		if base.ID == 0 {
			t.Fatal("CreateProfile did not assign an id")
		}

		dup := &anchor.Profile{Name: "base"}
		if err := s.CreateProfile(ctx, dup); !errors.Is(err, ErrConflict) {
			t.Errorf("duplicate name = %v, want ErrConflict", err)
		}

		child := &anchor.Profile{Name: "strict", ParentID: &base.ID, Default: true}
		if err := s.CreateProfile(ctx, child); err != nil {
			t.Fatalf("CreateProfile(child): %v", err)
		}

		// Default moved to the newest default profile.
		def, err := s.DefaultProfile(ctx)
		if err != nil {
			t.Fatalf("DefaultProfile: %v", err)
		}
		if def.ID != child.ID {
			t.Errorf("default profile = %d, want %d", def.ID, child.ID)
		}
		reloaded, err := s.GetProfile(ctx, base.ID)
		if err != nil {
			t.Fatalf("GetProfile: %v", err)
		}
		if reloaded.Default {
			t.Error("old default still flagged")
		}

		byName, err := s.GetProfileByName(ctx, "strict")
		if err != nil {
			t.Fatalf("GetProfileByName: %v", err)
		}
		if byName.ParentID == nil || *byName.ParentID != base.ID {
			t.Errorf("parent id = %v, want %d", byName.ParentID, base.ID)
		}

		profiles, err := s.ListProfiles(ctx)
		if err != nil {
			t.Fatalf("ListProfiles: %v", err)
		}
		if len(profiles) != 2 {
			t.Errorf("profiles = %d, want 2", len(profiles))
		}
	})
}

func TestProfileAssignments(t *testing.T) {
	withBackends(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		p := &anchor.Profile{Name: "ops"}
		if err := s.CreateProfile(ctx, p); err != nil {
			t.Fatalf("CreateProfile: %v", err)
		}
		a1 := &anchor.Anchor{Level: 1, Statement: "one"}
		a2 := &anchor.Anchor{Level: 2, Statement: "two"}
		for _, a := range []*anchor.Anchor{a1, a2} {
			if err := s.CreateAnchor(ctx, a); err != nil {
				t.Fatalf("CreateAnchor: %v", err)
			}
		}

		if err := s.AssignAnchor(ctx, p.ID, &anchor.ProfileAnchor{AnchorID: a1.ID, Priority: 5, Enabled: true}); err != nil {
			t.Fatalf("AssignAnchor: %v", err)
		}
		if err := s.AssignAnchor(ctx, p.ID, &anchor.ProfileAnchor{AnchorID: a2.ID, Priority: 1, Enabled: true}); err != nil {
			t.Fatalf("AssignAnchor: %v", err)
		}

		got, err := s.ListAssignments(ctx, p.ID)
		if err != nil {
			t.Fatalf("ListAssignments: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("assignments = %d, want 2", len(got))
		}
		// Priority order.
		if got[0].AnchorID != a2.ID || got[1].AnchorID != a1.ID {
			t.Errorf("order = [%d %d], want [%d %d]", got[0].AnchorID, got[1].AnchorID, a2.ID, a1.ID)
		}

		// Re-assign upserts instead of duplicating.
		if err := s.AssignAnchor(ctx, p.ID, &anchor.ProfileAnchor{AnchorID: a1.ID, Priority: 0, Enabled: false}); err != nil {
			t.Fatalf("AssignAnchor(upsert): %v", err)
		}
		got, err = s.ListAssignments(ctx, p.ID)
		if err != nil {
			t.Fatalf("ListAssignments: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("assignments after upsert = %d, want 2", len(got))
		}
		if got[0].AnchorID != a1.ID || got[0].Enabled {
			t.Errorf("upsert not applied: %+v", got[0])
		}

		if err := s.UnassignAnchor(ctx, p.ID, a1.ID); err != nil {
			t.Fatalf("UnassignAnchor: %v", err)
		}
		got, err = s.ListAssignments(ctx, p.ID)
		if err != nil {
			t.Fatalf("ListAssignments: %v", err)
		}
		if len(got) != 1 || got[0].AnchorID != a2.ID {
			t.Errorf("assignments after unassign = %+v", got)
		}
	})
}

func testLog(createdAt time.Time, decision string) *audit.GateLog {
	return &audit.GateLog{
		ID:                  uuid.NewString(),
		CreatedAt:           createdAt,
		RequestSummary:      "delete the backups",
		Arousal:             "low",
		Dominance:           "high",
		Decision:            decision,
		Reason:              "l3_anchor_conflict",
		Interpretation:      "conflicts with a standing boundary",
		Suggestion:          "reframe the request",
		ConflictedAnchorIDs: []int64{1, 2},
	}
}

func testTrace(log *audit.GateLog) *audit.Trace {
	return &audit.Trace{
		ID:                uuid.NewString(),
		CreatedAt:         log.CreatedAt,
		LogID:             log.ID,
		RequestText:       log.RequestSummary,
		RequestNormalized: "delete the backups",
		Arousal:           log.Arousal,
		Dominance:         log.Dominance,
		Decision:          log.Decision,
		Reason:            log.Reason,
		Explanations:      []string{"anchor 1 conflicts"},
		MatchDebug:        []byte(`{"requested_backend":"lexical","used_backend":"lexical","fallback_occurred":false}`),
		Anchors: []*audit.TraceAnchor{
			{AnchorID: 1, AnchorHash: "aaaa", Level: 3, Scope: "global", Active: true, Statement: "never delete backups", Matched: true, MatchNote: "token overlap"},
			{AnchorID: 2, AnchorHash: "bbbb", Level: 1, Scope: "global", Active: true, Statement: "prefer soft deletes", Matched: false},
		},
	}
}

func TestAppendEvaluationRoundTrip(t *testing.T) {
	withBackends(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		log := testLog(time.Now().UTC(), "gate")
		trace := testTrace(log)
		if err := s.AppendEvaluation(ctx, log, trace); err != nil {
			t.Fatalf("AppendEvaluation: %v", err)
		}

		gotLog, err := s.GetGateLog(ctx, log.ID)
		if err != nil {
			t.Fatalf("GetGateLog: %v", err)
		}
		if gotLog.Decision != "gate" || gotLog.Reason != log.Reason {
			t.Errorf("log = %+v, want %+v", gotLog, log)
		}
		if len(gotLog.ConflictedAnchorIDs) != 2 || gotLog.ConflictedAnchorIDs[0] != 1 {
			t.Errorf("conflicted ids = %v, want [1 2]", gotLog.ConflictedAnchorIDs)
		}

		gotTrace, err := s.GetTrace(ctx, trace.ID)
		if err != nil {
			t.Fatalf("GetTrace: %v", err)
		}
		if gotTrace.LogID != log.ID {
			t.Errorf("trace log id = %q, want %q", gotTrace.LogID, log.ID)
		}
		if len(gotTrace.Anchors) != 2 {
			t.Fatalf("trace anchors = %d, want 2", len(gotTrace.Anchors))
		}
		if gotTrace.Anchors[0].AnchorHash != "aaaa" || !gotTrace.Anchors[0].Matched {
			t.Errorf("first snapshot = %+v", gotTrace.Anchors[0])
		}
		if gotTrace.Anchors[1].Matched {
			t.Errorf("second snapshot matched, want unmatched")
		}
		if len(gotTrace.Explanations) != 1 {
			t.Errorf("explanations = %v", gotTrace.Explanations)
		}
		if len(gotTrace.MatchDebug) == 0 {
			t.Error("match debug not persisted")
		}

		byLog, err := s.GetTraceByLog(ctx, log.ID)
		if err != nil {
			t.Fatalf("GetTraceByLog: %v", err)
		}
		if byLog.ID != trace.ID {
			t.Errorf("trace by log = %q, want %q", byLog.ID, trace.ID)
		}
	})
}

func TestTraceAnchorsKeepCandidateOrder(t *testing.T) {
	withBackends(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		// Snapshot order follows profile priority, which need not follow
		// anchor id order.
		log := testLog(time.Now().UTC(), "gate")
		trace := testTrace(log)
		trace.Anchors = []*audit.TraceAnchor{
			{AnchorID: 9, AnchorHash: "cccc", Level: 2, Scope: "global", Active: true, Statement: "retain customer records", Matched: true},
			{AnchorID: 2, AnchorHash: "bbbb", Level: 2, Scope: "global", Active: true, Statement: "never delete customer records", Matched: true},
			{AnchorID: 5, AnchorHash: "dddd", Level: 1, Scope: "global", Active: true, Statement: "prefer soft deletes", Matched: false},
		}
		if err := s.AppendEvaluation(ctx, log, trace); err != nil {
			t.Fatalf("AppendEvaluation: %v", err)
		}

		got, err := s.GetTrace(ctx, trace.ID)
		if err != nil {
			t.Fatalf("GetTrace: %v", err)
		}
		want := []int64{9, 2, 5}
		if len(got.Anchors) != len(want) {
			t.Fatalf("trace anchors = %d, want %d", len(got.Anchors), len(want))
		}
		for i, id := range want {
			if got.Anchors[i].AnchorID != id {
				t.Errorf("anchor[%d] = %d, want %d", i, got.Anchors[i].AnchorID, id)
			}
		}
	})
}

func TestAppendEvaluationDuplicate(t *testing.T) {
	withBackends(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		log := testLog(time.Now().UTC(), "gate")
		if err := s.AppendEvaluation(ctx, log, nil); err != nil {
			t.Fatalf("AppendEvaluation: %v", err)
		}
		if err := s.AppendEvaluation(ctx, log, nil); !errors.Is(err, ErrConflict) {
			t.Errorf("duplicate append = %v, want ErrConflict", err)
		}
	})
}

func TestListGateLogs(t *testing.T) {
	withBackends(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		base := time.Now().UTC().Add(-time.Hour)
		logs := []*audit.GateLog{
			testLog(base, "proceed"),
			testLog(base.Add(time.Minute), "gate"),
			testLog(base.Add(2*time.Minute), "gate"),
			testLog(base.Add(3*time.Minute), "proceed"),
		}
		for _, log := range logs {
			if err := s.AppendEvaluation(ctx, log, nil); err != nil {
				t.Fatalf("AppendEvaluation: %v", err)
			}
		}

		all, err := s.ListGateLogs(ctx, nil)
		if err != nil {
			t.Fatalf("ListGateLogs: %v", err)
		}
		if len(all) != 4 {
			t.Fatalf("logs = %d, want 4", len(all))
		}
		// Newest first.
		if all[0].ID != logs[3].ID || all[3].ID != logs[0].ID {
			t.Error("logs not newest-first")
		}

		gated, err := s.ListGateLogs(ctx, &audit.LogQuery{Decision: "gate"})
		if err != nil {
			t.Fatalf("ListGateLogs(gate): %v", err)
		}
		if len(gated) != 2 {
			t.Errorf("gated logs = %d, want 2", len(gated))
		}

		since := base.Add(90 * time.Second)
		recent, err := s.ListGateLogs(ctx, &audit.LogQuery{Since: &since})
		if err != nil {
			t.Fatalf("ListGateLogs(since): %v", err)
		}
		if len(recent) != 2 {
			t.Errorf("recent logs = %d, want 2", len(recent))
		}

		page, err := s.ListGateLogs(ctx, &audit.LogQuery{Limit: 2, Offset: 1})
		if err != nil {
			t.Fatalf("ListGateLogs(page): %v", err)
		}
		if len(page) != 2 || page[0].ID != logs[2].ID {
			t.Errorf("page = %+v, want logs[2] first", page)
		}
	})
}

func TestListTraceIDs(t *testing.T) {
	withBackends(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		base := time.Now().UTC().Add(-time.Hour)
		var traceIDs []string
		for i := 0; i < 3; i++ {
			log := testLog(base.Add(time.Duration(i)*time.Minute), "gate")
			trace := testTrace(log)
			if err := s.AppendEvaluation(ctx, log, trace); err != nil {
				t.Fatalf("AppendEvaluation: %v", err)
			}
			traceIDs = append(traceIDs, trace.ID)
		}

		ids, err := s.ListTraceIDs(ctx, base, 10)
		if err != nil {
			t.Fatalf("ListTraceIDs: %v", err)
		}
		if len(ids) != 3 || ids[0] != traceIDs[0] {
			t.Errorf("ids = %v, want %v oldest-first", ids, traceIDs)
		}

		ids, err = s.ListTraceIDs(ctx, base.Add(90*time.Second), 10)
		if err != nil {
			t.Fatalf("ListTraceIDs(since): %v", err)
		}
		if len(ids) != 1 || ids[0] != traceIDs[2] {
			t.Errorf("ids = %v, want only the newest", ids)
		}

		ids, err = s.ListTraceIDs(ctx, base, 2)
		if err != nil {
			t.Fatalf("ListTraceIDs(limit): %v", err)
		}
		if len(ids) != 2 {
			t.Errorf("ids = %d, want 2", len(ids))
		}
	})
}
