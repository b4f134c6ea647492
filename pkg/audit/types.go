package audit

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// GateLog is one immutable decision record. Follow-on actions (reframe,
// acknowledge) append new rows linked via UserChoice; nothing updates a row
// once written.
type GateLog struct {
	// ID is a UUID assigned when the log is appended.
	ID string `json:"id"`

	// CreatedAt is the decision timestamp.
	CreatedAt time.Time `json:"created_at"`

	// RequestSummary is the original request text evaluated.
	RequestSummary string `json:"request_summary"`

	// Arousal and Dominance capture the caller's affect state, each one of
	// "low", "med", "high" or "unknown".
	Arousal   string `json:"arousal"`
	Dominance string `json:"dominance"`

	// Decision is "proceed", "gate" or "refuse".
	Decision string `json:"decision"`

	// Reason is the machine-readable reason code.
	Reason string `json:"reason"`

	// Interpretation and Suggestion are the human-readable companions to
	// the reason code.
	Interpretation string `json:"interpretation"`
	Suggestion     string `json:"suggestion"`

	// ConflictedAnchorIDs lists the anchors flagged as conflicting.
	ConflictedAnchorIDs []int64 `json:"conflicted_anchor_ids"`

	// UserChoice annotates follow-on actions: "reframe_from:<parent id>" or
	// "proceed_acknowledged:<parent id>". Empty for plain evaluations.
	UserChoice string `json:"user_choice,omitempty"`

	// Acknowledgement is the operator's free text when this row records an
	// acknowledged level-2 gate.
	Acknowledgement string `json:"acknowledgement,omitempty"`
}

// Trace is the audit-grade snapshot of a single evaluate call.
type Trace struct {
	// ID is a UUID assigned when the trace is recorded.
	ID string `json:"id"`

	// CreatedAt is the evaluation timestamp.
	CreatedAt time.Time `json:"created_at"`

	// LogID references the gate log written by the same evaluation.
	LogID string `json:"log_id"`

	// ProfileID is set when the evaluation was scoped to a profile.
	ProfileID *int64 `json:"profile_id,omitempty"`

	// RequestText is the raw request; RequestNormalized its canonical form.
	RequestText       string `json:"request_text"`
	RequestNormalized string `json:"request_normalized"`

	// Arousal and Dominance snapshot the affect state.
	Arousal   string `json:"arousal"`
	Dominance string `json:"dominance"`

	// Decision, Reason and Explanations snapshot the outcome actually
	// produced.
	Decision     string   `json:"decision"`
	Reason       string   `json:"reason"`
	Explanations []string `json:"explanations"`

	// MatchDebug is the opaque payload describing exactly which matcher
	// produced the result (requested backend, backend actually used after
	// any fallback, threshold, fallback flag and reason, per-anchor scores).
	MatchDebug json.RawMessage `json:"match_debug,omitempty"`

	// Anchors holds one snapshot row per anchor considered.
	Anchors []*TraceAnchor `json:"anchors"`
}

// TraceAnchor is the snapshot of one anchor as it stood when the trace was
// recorded. Unique per (trace, anchor); created atomically with the trace.
type TraceAnchor struct {
	AnchorID int64 `json:"anchor_id"`

	// AnchorHash is the anchor's stable hash at trace time.
	AnchorHash string `json:"anchor_hash"`

	// Level, Scope, Active and Statement are the snapshot field values.
	Level     int    `json:"level"`
	Scope     string `json:"scope"`
	Active    bool   `json:"active"`
	Statement string `json:"statement"`

	// Matched records whether this anchor was flagged as conflicting, and
	// MatchNote which rule flagged it.
	Matched   bool   `json:"matched"`
	MatchNote string `json:"match_note,omitempty"`
}

// LogQuery filters gate log listings. Zero values mean "no filter".
type LogQuery struct {
	// Decision restricts to one decision value when non-empty.
	Decision string

	// Since restricts to logs created at or after the given time.
	Since *time.Time

	// Limit and Offset paginate, newest first. Limit <= 0 means the store
	// default.
	Limit  int
	Offset int
}

// JoinIDs serializes anchor ids as the comma-joined list stored in a gate
// log row.
func JoinIDs(ids []int64) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// ParseIDs parses a comma-joined id list back into ids. Malformed entries
// are skipped; an empty string yields nil.
func ParseIDs(s string) []int64 {
	if s == "" {
		return nil
	}
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
