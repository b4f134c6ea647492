package engine

import (
	"context"
	"errors"
	"testing"

	"gatewright-hq/gatewright/pkg/anchor"
)

func mkAnchor(id int64, level int, scope, statement string) *anchor.Anchor {
	return &anchor.Anchor{ID: id, Level: level, Scope: scope, Statement: statement, Active: true}
}

func TestFindConflictsNegationInversion(t *testing.T) {
	m := NewMatcher(nil, nil)

	tests := []struct {
		name      string
		request   string
		statement string
		want      bool
	}{
		{
			name:      "request negated, anchor not",
			request:   "cats are not allowed",
			statement: "cats are allowed",
			want:      true,
		},
		{
			name:      "anchor negated, request not",
			request:   "delete the backups",
			statement: "do not delete the backups",
			want:      false, // cores differ: "do" prefix
		},
		{
			name:      "exact inverse pair",
			request:   "do delete the backups",
			statement: "do not delete the backups",
			want:      true,
		},
		{
			name:      "both negated is not an inversion",
			request:   "cats are not allowed",
			statement: "cats are not allowed",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mkAnchor(1, 1, "global", tt.statement)
			res, err := m.FindConflicts(context.Background(), tt.request, []*anchor.Anchor{a})
			if err != nil {
				t.Fatalf("FindConflicts: %v", err)
			}

			match, hit := res.MatchedBy(1)
			gotInversion := hit && match.Rule == RuleNegationInversion
			if gotInversion != tt.want {
				t.Errorf("negation inversion = %v, want %v (matches: %+v)", gotInversion, tt.want, res.Matches)
			}
		})
	}
}

func TestFindConflictsLexicalOverlap(t *testing.T) {
	m := NewMatcher(nil, nil)

	tests := []struct {
		name      string
		request   string
		statement string
		want      bool
	}{
		{
			name:      "shared bigram is enough",
			request:   "please delete customer records today",
			statement: "never delete customer data",
			want:      true, // bigram "delet custom"
		},
		{
			name:      "two shared tokens are enough",
			request:   "export the database and email the report",
			statement: "database exports require an approved report",
			want:      true,
		},
		{
			name:      "single shared token is not enough",
			request:   "schedule a meeting about budget",
			statement: "budget approvals need a second signer",
			want:      false,
		},
		{
			name:      "no overlap",
			request:   "water the office plants",
			statement: "never share credentials",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mkAnchor(1, 2, "global", tt.statement)
			res, err := m.FindConflicts(context.Background(), tt.request, []*anchor.Anchor{a})
			if err != nil {
				t.Fatalf("FindConflicts: %v", err)
			}
			_, hit := res.MatchedBy(1)
			if hit != tt.want {
				t.Errorf("matched = %v, want %v", hit, tt.want)
			}
		})
	}
}

func TestFindConflictsMonetaryTrigger(t *testing.T) {
	m := NewMatcher(nil, nil)

	payments := mkAnchor(1, 3, "payments", "Do not process payments above £100 without explicit user review")
	unrelated := mkAnchor(2, 2, "global", "never share credentials")
	anchors := []*anchor.Anchor{payments, unrelated}

	tests := []struct {
		name        string
		request     string
		wantPayHit  bool
		wantMaxSize int
	}{
		{"refund above threshold", "Refund £10000 to customer", true, 1},
		{"refund at threshold does not fire", "Refund £100 to customer", false, 0},
		{"amount without refund intent", "transfer £10000 to savings", false, 0},
		{"refund intent without amount", "refund the customer", false, 0},
		{"dollar symbol works too", "chargeback $250 for order 19", true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := m.FindConflicts(context.Background(), tt.request, anchors)
			if err != nil {
				t.Fatalf("FindConflicts: %v", err)
			}

			match, hit := res.MatchedBy(1)
			if hit != tt.wantPayHit {
				t.Fatalf("payments anchor matched = %v, want %v", hit, tt.wantPayHit)
			}
			if hit && match.Rule != RuleMonetaryTrigger {
				// The refund request shares no meaningful tokens with the
				// statement, so only the monetary rule can have fired.
				t.Errorf("rule = %q, want %q", match.Rule, RuleMonetaryTrigger)
			}
			if len(res.Matches) != tt.wantMaxSize {
				t.Errorf("matches = %d, want %d", len(res.Matches), tt.wantMaxSize)
			}
			if tt.wantPayHit && res.MaxLevel != 3 {
				t.Errorf("max level = %d, want 3", res.MaxLevel)
			}
		})
	}
}

func TestFindConflictsDeduplicates(t *testing.T) {
	m := NewMatcher(nil, nil)

	// Statement both lexically overlaps a refund request and sits in the
	// payments scope, so two rules flag it; it must appear once.
	a := mkAnchor(1, 3, "payments", "never refund a customer above the approved limit")
	res, err := m.FindConflicts(context.Background(), "refund £500 to the customer", []*anchor.Anchor{a})
	if err != nil {
		t.Fatalf("FindConflicts: %v", err)
	}

	if len(res.Matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(res.Matches))
	}
	if res.MaxLevel != 3 {
		t.Errorf("max level = %d, want 3", res.MaxLevel)
	}
}

func TestFindConflictsSkipsInactive(t *testing.T) {
	m := NewMatcher(nil, nil)

	archived := mkAnchor(1, 3, "global", "cats are allowed")
	archived.Active = false

	res, err := m.FindConflicts(context.Background(), "cats are not allowed", []*anchor.Anchor{archived})
	if err != nil {
		t.Fatalf("FindConflicts: %v", err)
	}
	if len(res.Matches) != 0 {
		t.Errorf("archived anchor matched: %+v", res.Matches)
	}
}

// fakeScorer returns canned scores, making the semantic path deterministic
// under test.
type fakeScorer struct {
	scores []float64
	err    error
}

func (f *fakeScorer) Score(ctx context.Context, request string, statements []string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.scores[:len(statements)], nil
}

func TestFindConflictsSemanticBackend(t *testing.T) {
	anchors := []*anchor.Anchor{
		mkAnchor(1, 2, "global", "statement one"),
		mkAnchor(2, 3, "global", "statement two"),
		mkAnchor(3, 1, "global", "statement three"),
	}

	cfg := DefaultConfig()
	cfg.Backend = BackendSemantic
	cfg.Threshold = 0.60

	m := NewMatcher(cfg, &fakeScorer{scores: []float64{0.61, 0.95, 0.10}})
	res, err := m.FindConflicts(context.Background(), "anything", anchors)
	if err != nil {
		t.Fatalf("FindConflicts: %v", err)
	}

	if res.Debug.UsedBackend != BackendSemantic || res.Debug.FallbackOccurred {
		t.Fatalf("debug = %+v, want semantic with no fallback", res.Debug)
	}
	if len(res.Matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(res.Matches))
	}
	// Sorted by score descending.
	if res.Matches[0].Anchor.ID != 2 || res.Matches[1].Anchor.ID != 1 {
		t.Errorf("order = [%d %d], want [2 1]", res.Matches[0].Anchor.ID, res.Matches[1].Anchor.ID)
	}
	if res.MaxLevel != 3 {
		t.Errorf("max level = %d, want 3", res.MaxLevel)
	}
	if len(res.Debug.Scores) != 3 {
		t.Errorf("debug scores = %v, want all three anchors scored", res.Debug.Scores)
	}
}

func TestFindConflictsSemanticFallback(t *testing.T) {
	a := mkAnchor(1, 1, "global", "cats are allowed")

	tests := []struct {
		name       string
		scorer     SemanticScorer
		wantReason string
	}{
		{
			name:       "zero matches falls back",
			scorer:     &fakeScorer{scores: []float64{0.1}},
			wantReason: "semantic scorer returned no matches at or above threshold",
		},
		{
			name:       "scorer error falls back",
			scorer:     &fakeScorer{err: errors.New("connection refused")},
			wantReason: "scorer error: connection refused",
		},
		{
			name:       "nil scorer falls back",
			scorer:     nil,
			wantReason: "scorer error: " + ErrNoScorer.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Backend = BackendSemantic

			m := NewMatcher(cfg, tt.scorer)
			res, err := m.FindConflicts(context.Background(), "cats are not allowed", []*anchor.Anchor{a})
			if err != nil {
				t.Fatalf("FindConflicts: %v", err)
			}

			if !res.Debug.FallbackOccurred {
				t.Fatal("fallback not recorded")
			}
			if res.Debug.UsedBackend != BackendLexical {
				t.Errorf("used backend = %q, want lexical", res.Debug.UsedBackend)
			}
			if res.Debug.FallbackReason != tt.wantReason {
				t.Errorf("fallback reason = %q, want %q", res.Debug.FallbackReason, tt.wantReason)
			}
			// The lexical rules still find the negation inversion; the
			// scorer finding nothing never silently means "no conflicts".
			if _, hit := res.MatchedBy(1); !hit {
				t.Error("lexical fallback found no conflict")
			}
		})
	}
}
