package engine

// Decide maps the max conflicted severity level and the caller's affect
// state to a decision. Rules are evaluated in fixed priority order; the
// first match wins. The returned decision always carries every field.
//
// Severity >= 3 always gates. Severity 2 gates but can later be
// acknowledged. Severity 1 and no-conflict proceed. A high-arousal /
// low-dominance affect reading refines the reason code on gated decisions
// but never changes the decision itself.
func Decide(state AffectState, conflictedIDs []int64, maxLevel int) GateDecision {
	mismatch := state.Arousal == AffectHigh && state.Dominance == AffectLow

	switch {
	case maxLevel >= 3 && mismatch:
		return GateDecision{
			Decision:            DecisionGate,
			Reason:              ReasonStateMismatchL3,
			ConflictedAnchorIDs: conflictedIDs,
			Interpretation:      "This conflicts with a level-3 boundary while your state reads high-arousal / low-control.",
			Suggestion:          "Pause, then reframe the intent to align with the boundary.",
			NextActions:         []string{ActionPause, ActionReframe, ActionViewConflicts},
		}

	case maxLevel >= 3:
		return GateDecision{
			Decision:            DecisionGate,
			Reason:              ReasonL3Conflict,
			ConflictedAnchorIDs: conflictedIDs,
			Interpretation:      "This conflicts with a level-3 boundary (protected constraint).",
			Suggestion:          "Rephrase the request so it stays within the boundary.",
			NextActions:         []string{ActionReframe, ActionViewConflicts, ActionCancel},
		}

	case maxLevel == 2 && mismatch:
		return GateDecision{
			Decision:            DecisionGate,
			Reason:              ReasonStateMismatchL2,
			ConflictedAnchorIDs: conflictedIDs,
			Interpretation:      "This conflicts with a level-2 boundary while your state reads high-arousal / low-control.",
			Suggestion:          "Pause before deciding; the conflict can be acknowledged if you accept it deliberately.",
			NextActions:         []string{ActionPause, ActionReframe, ActionViewConflicts, ActionAcknowledge},
		}

	case maxLevel == 2:
		return GateDecision{
			Decision:            DecisionGate,
			Reason:              ReasonL2Conflict,
			ConflictedAnchorIDs: conflictedIDs,
			Interpretation:      "This conflicts with a level-2 boundary. It can proceed only with an explicit acknowledgement.",
			Suggestion:          "Rephrase the request, or acknowledge the conflict to proceed.",
			NextActions:         []string{ActionReframe, ActionViewConflicts, ActionAcknowledge, ActionCancel},
		}

	case maxLevel == 1:
		return GateDecision{
			Decision:            DecisionProceed,
			Reason:              ReasonL1Advisory,
			ConflictedAnchorIDs: conflictedIDs,
			Interpretation:      "Advisory conflicts detected, but nothing high-priority was violated.",
			Suggestion:          "Proceed, but tighten wording to avoid drift.",
			NextActions:         []string{ActionProceed},
		}

	default:
		return GateDecision{
			Decision:            DecisionProceed,
			Reason:              ReasonNoConflict,
			ConflictedAnchorIDs: []int64{},
			Interpretation:      "No conflicts detected against active anchors.",
			Suggestion:          "Proceed normally.",
			NextActions:         []string{ActionProceed},
		}
	}
}
