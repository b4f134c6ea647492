package engine

import (
	"reflect"
	"testing"
)

func TestDecideTransitionTable(t *testing.T) {
	ids := []int64{1, 2}

	tests := []struct {
		name       string
		arousal    AffectLevel
		dominance  AffectLevel
		maxLevel   int
		wantDec    Decision
		wantReason string
	}{
		{"l3 with state mismatch", AffectHigh, AffectLow, 3, DecisionGate, ReasonStateMismatchL3},
		{"l3 otherwise", AffectMed, AffectMed, 3, DecisionGate, ReasonL3Conflict},
		{"l3 unknown state", AffectUnknown, AffectUnknown, 3, DecisionGate, ReasonL3Conflict},
		{"l3 high arousal high dominance", AffectHigh, AffectHigh, 3, DecisionGate, ReasonL3Conflict},
		{"l2 with state mismatch", AffectHigh, AffectLow, 2, DecisionGate, ReasonStateMismatchL2},
		{"l2 otherwise", AffectLow, AffectHigh, 2, DecisionGate, ReasonL2Conflict},
		{"l1 always proceeds", AffectHigh, AffectLow, 1, DecisionProceed, ReasonL1Advisory},
		{"no conflict", AffectHigh, AffectLow, 0, DecisionProceed, ReasonNoConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conflicted := ids
			if tt.maxLevel == 0 {
				conflicted = nil
			}
			got := Decide(AffectState{Arousal: tt.arousal, Dominance: tt.dominance}, conflicted, tt.maxLevel)

			if got.Decision != tt.wantDec {
				t.Errorf("decision = %q, want %q", got.Decision, tt.wantDec)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", got.Reason, tt.wantReason)
			}
			if got.Interpretation == "" || got.Suggestion == "" || len(got.NextActions) == 0 {
				t.Error("decision is not fully populated")
			}
		})
	}
}

func TestDecideSeverityThreeNeverProceeds(t *testing.T) {
	levels := []AffectLevel{AffectLow, AffectMed, AffectHigh, AffectUnknown}
	for _, ar := range levels {
		for _, dom := range levels {
			got := Decide(AffectState{Arousal: ar, Dominance: dom}, []int64{9}, 3)
			if got.Decision != DecisionGate {
				t.Errorf("arousal=%s dominance=%s: decision = %q, want gate", ar, dom, got.Decision)
			}
		}
	}
}

func TestDecideNoConflictShape(t *testing.T) {
	got := Decide(AffectState{Arousal: AffectUnknown, Dominance: AffectUnknown}, nil, 0)

	if got.Reason != ReasonNoConflict {
		t.Errorf("reason = %q, want %q", got.Reason, ReasonNoConflict)
	}
	if len(got.ConflictedAnchorIDs) != 0 {
		t.Errorf("conflicted ids = %v, want empty", got.ConflictedAnchorIDs)
	}
	if !reflect.DeepEqual(got.NextActions, []string{ActionProceed}) {
		t.Errorf("next actions = %v, want [proceed]", got.NextActions)
	}
}

func TestNextActionsMatchAcknowledgeability(t *testing.T) {
	// Only level-2 gates may offer acknowledgement; offering it on a
	// level-3 gate would advertise a bypass of a hard boundary.
	l3 := Decide(AffectState{Arousal: AffectMed, Dominance: AffectMed}, []int64{1}, 3)
	for _, action := range l3.NextActions {
		if action == ActionAcknowledge {
			t.Error("level-3 gate offers proceed_acknowledged")
		}
	}

	l2 := Decide(AffectState{Arousal: AffectMed, Dominance: AffectMed}, []int64{1}, 2)
	found := false
	for _, action := range l2.NextActions {
		if action == ActionAcknowledge {
			found = true
		}
	}
	if !found {
		t.Error("level-2 gate does not offer proceed_acknowledged")
	}
}
