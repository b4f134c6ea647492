package engine

import (
	"gatewright-hq/gatewright/pkg/anchor"
)

// Decision is the outcome of evaluating a request.
type Decision string

const (
	// DecisionProceed lets the request continue.
	DecisionProceed Decision = "proceed"

	// DecisionGate blocks the request pending reframe or acknowledgement.
	DecisionGate Decision = "gate"

	// DecisionRefuse is a hard terminal. It is kept for compatibility with
	// persisted historical data; no transition rule currently produces it.
	DecisionRefuse Decision = "refuse"
)

// ValidDecision reports whether s is a known decision value. Used to reject
// invalid decision filters before they reach the store.
func ValidDecision(s string) bool {
	switch Decision(s) {
	case DecisionProceed, DecisionGate, DecisionRefuse:
		return true
	}
	return false
}

// Reason codes carried by decisions. The code, not the prose, is the
// machine-readable contract.
const (
	ReasonStateMismatchL3 = "state_mismatch_with_l3_anchor"
	ReasonL3Conflict      = "l3_anchor_conflict"
	ReasonStateMismatchL2 = "state_mismatch_with_l2_anchor"
	ReasonL2Conflict      = "l2_anchor_conflict"
	ReasonL1Advisory      = "l1_advisory_conflict"
	ReasonNoConflict      = "no_conflict"

	// ReasonAcknowledged marks the forced-proceed row written when an
	// operator acknowledges a level-2 gate.
	ReasonAcknowledged = "proceed_acknowledged"
)

// Next actions offered to callers. Every action listed on a decision maps to
// an operation the service actually supports.
const (
	ActionProceed       = "proceed"
	ActionReframe       = "reframe"
	ActionViewConflicts = "view_conflicts"
	ActionCancel        = "cancel"
	ActionPause         = "pause"
	ActionAcknowledge   = "proceed_acknowledged"
)

// AffectLevel is a categorical affect reading.
type AffectLevel string

const (
	AffectLow     AffectLevel = "low"
	AffectMed     AffectLevel = "med"
	AffectHigh    AffectLevel = "high"
	AffectUnknown AffectLevel = "unknown"
)

// ValidAffectLevel reports whether s is a known affect level.
func ValidAffectLevel(s string) bool {
	switch AffectLevel(s) {
	case AffectLow, AffectMed, AffectHigh, AffectUnknown:
		return true
	}
	return false
}

// AffectState is the caller's self-reported state at evaluation time.
type AffectState struct {
	Arousal   AffectLevel `json:"arousal"`
	Dominance AffectLevel `json:"dominance"`
}

// GateDecision is a fully-populated decision. All fields are always set;
// the transport layer decides which to surface.
type GateDecision struct {
	Decision            Decision `json:"decision"`
	Reason              string   `json:"reason"`
	ConflictedAnchorIDs []int64  `json:"conflicted_anchor_ids"`
	Interpretation      string   `json:"interpretation"`
	Suggestion          string   `json:"suggestion"`
	NextActions         []string `json:"next_actions"`
}

// MatchRule identifies which matching rule flagged an anchor.
type MatchRule string

const (
	RuleNegationInversion MatchRule = "negation_inversion"
	RuleLexicalOverlap    MatchRule = "lexical_overlap"
	RuleMonetaryTrigger   MatchRule = "monetary_trigger"
	RuleSemantic          MatchRule = "semantic"
)

// Match is one anchor flagged as conflicting, with the evidence that
// justified the flag.
type Match struct {
	// Anchor is the conflicting anchor.
	Anchor *anchor.Anchor

	// Rule is the first rule that flagged the anchor.
	Rule MatchRule

	// SharedBigrams and SharedTokens carry the lexical evidence for
	// RuleLexicalOverlap hits, in statement order.
	SharedBigrams []string
	SharedTokens  []string

	// Score is the similarity score for RuleSemantic hits.
	Score float64
}

// Note renders a short human-readable note for trace snapshots.
func (m *Match) Note() string {
	switch m.Rule {
	case RuleNegationInversion:
		return "negation inversion"
	case RuleMonetaryTrigger:
		return "monetary trigger"
	case RuleSemantic:
		return "semantic similarity"
	case RuleLexicalOverlap:
		if len(m.SharedBigrams) > 0 {
			return "bigram overlap"
		}
		return "token overlap"
	}
	return string(m.Rule)
}

// MatchResult is the outcome of conflict matching against one anchor set.
type MatchResult struct {
	// Matches lists conflicting anchors, deduplicated, in matching order.
	Matches []Match

	// MaxLevel is the maximum severity level among matches, 0 if none.
	MaxLevel int

	// Debug records which backend produced the result.
	Debug MatchDebug
}

// ConflictedIDs returns the matched anchor ids in match order.
func (r *MatchResult) ConflictedIDs() []int64 {
	ids := make([]int64, len(r.Matches))
	for i, m := range r.Matches {
		ids[i] = m.Anchor.ID
	}
	return ids
}

// MatchedBy returns the match for the given anchor id, if any.
func (r *MatchResult) MatchedBy(anchorID int64) (Match, bool) {
	for _, m := range r.Matches {
		if m.Anchor.ID == anchorID {
			return m, true
		}
	}
	return Match{}, false
}

// MatchDebug is the auditable description of how a match result was
// produced. It is stored verbatim in each trace so replay can honor the
// matcher that was in effect historically.
type MatchDebug struct {
	// RequestedBackend is the backend selected by configuration
	// ("lexical" or "semantic").
	RequestedBackend string `json:"requested_backend"`

	// UsedBackend is the backend that actually produced the result, after
	// any fallback.
	UsedBackend string `json:"used_backend"`

	// Threshold is the semantic similarity threshold, when relevant.
	Threshold float64 `json:"threshold,omitempty"`

	// FallbackOccurred is true when the semantic scorer was requested but
	// the lexical rules produced the result. FallbackReason says why.
	FallbackOccurred bool   `json:"fallback_occurred"`
	FallbackReason   string `json:"fallback_reason,omitempty"`

	// Scores holds per-anchor similarity scores from the semantic scorer,
	// keyed by anchor id.
	Scores map[int64]float64 `json:"scores,omitempty"`
}
