package gate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"gatewright-hq/gatewright/pkg/anchor"
	"gatewright-hq/gatewright/pkg/audit"
	"gatewright-hq/gatewright/pkg/gate/engine"
	"gatewright-hq/gatewright/pkg/store"
	"gatewright-hq/gatewright/pkg/textnorm"
)

// EvaluateInput is one evaluation request.
type EvaluateInput struct {
	// Request is the free-text request to evaluate.
	Request string

	// Arousal and Dominance are the caller's self-reported affect levels.
	// Empty means "unknown".
	Arousal   string
	Dominance string

	// Profile optionally names the profile scoping the candidate anchor
	// set. Empty falls back to the default profile, then to all active
	// anchors.
	Profile string
}

// ReframeInput re-evaluates a reworded request against a prior gate log.
type ReframeInput struct {
	// LogID is the gate log being reframed from.
	LogID string

	// Request is the reworded request.
	Request string

	// Arousal and Dominance optionally override the parent log's recorded
	// state. Empty inherits from the parent.
	Arousal   string
	Dominance string
	Profile   string
}

// AcknowledgeInput records an operator's decision to proceed past a
// level-2 gate.
type AcknowledgeInput struct {
	// LogID is the level-2 gate being acknowledged.
	LogID string

	// Note is the operator's free-text acknowledgement.
	Note string
}

// Result is the outcome of an evaluate, reframe or acknowledge call.
type Result struct {
	engine.GateDecision

	// LogID identifies the gate log appended by this call.
	LogID string `json:"log_id"`

	// TraceID identifies the decision trace, when one was recorded.
	TraceID string `json:"trace_id,omitempty"`

	// Explanations carries the per-anchor conflict explanations. Populated
	// only when the decision is not a plain proceed; the full list is
	// always in the trace.
	Explanations []string `json:"explanations,omitempty"`
}

// Service orchestrates evaluation, persistence and follow-on actions.
type Service struct {
	store   store.Store
	matcher *engine.Matcher
	metrics *Metrics
	logger  *slog.Logger
}

// NewService creates a gate service. Metrics may be nil.
func NewService(st store.Store, matcher *engine.Matcher, metrics *Metrics) *Service {
	return &Service{
		store:   st,
		matcher: matcher,
		metrics: metrics,
		logger:  slog.Default().With("component", "gate.service"),
	}
}

// Evaluate runs one request through the matcher and decision state machine
// and appends the gate log and trace atomically.
func (s *Service) Evaluate(ctx context.Context, in *EvaluateInput) (*Result, error) {
	return s.evaluate(ctx, in, "")
}

// Reframe evaluates a reworded request as a fresh log annotated with its
// parent. The parent log is never modified. Affect values are an override:
// when empty, the parent's recorded state carries over.
func (s *Service) Reframe(ctx context.Context, in *ReframeInput) (*Result, error) {
	parent, err := s.store.GetGateLog(ctx, in.LogID)
	if err != nil {
		return nil, err
	}

	arousal := in.Arousal
	if arousal == "" {
		arousal = parent.Arousal
	}
	dominance := in.Dominance
	if dominance == "" {
		dominance = parent.Dominance
	}

	return s.evaluate(ctx, &EvaluateInput{
		Request:   in.Request,
		Arousal:   arousal,
		Dominance: dominance,
		Profile:   in.Profile,
	}, "reframe_from:"+parent.ID)
}

// Acknowledge records a forced proceed against a level-2 gate. Any other
// parent decision or severity is an invalid transition.
func (s *Service) Acknowledge(ctx context.Context, in *AcknowledgeInput) (*Result, error) {
	parent, err := s.store.GetGateLog(ctx, in.LogID)
	if err != nil {
		return nil, err
	}

	acknowledgeable := parent.Decision == string(engine.DecisionGate) &&
		(parent.Reason == engine.ReasonL2Conflict || parent.Reason == engine.ReasonStateMismatchL2)
	if !acknowledgeable {
		return nil, NewTransitionError(parent.ID, parent.Decision, parent.Reason)
	}

	decision := engine.GateDecision{
		Decision:            engine.DecisionProceed,
		Reason:              engine.ReasonAcknowledged,
		ConflictedAnchorIDs: parent.ConflictedAnchorIDs,
		Interpretation:      "Proceeding after an explicit acknowledgement of the level-2 conflict.",
		Suggestion:          "Revisit the conflicting anchors if this keeps recurring.",
		NextActions:         []string{engine.ActionProceed},
	}

	log := &audit.GateLog{
		ID:                  uuid.NewString(),
		CreatedAt:           time.Now().UTC(),
		RequestSummary:      parent.RequestSummary,
		Arousal:             parent.Arousal,
		Dominance:           parent.Dominance,
		Decision:            string(decision.Decision),
		Reason:              decision.Reason,
		Interpretation:      decision.Interpretation,
		Suggestion:          decision.Suggestion,
		ConflictedAnchorIDs: decision.ConflictedAnchorIDs,
		UserChoice:          "proceed_acknowledged:" + parent.ID,
		Acknowledgement:     in.Note,
	}

	if err := s.store.AppendEvaluation(ctx, log, nil); err != nil {
		return nil, err
	}

	s.metrics.RecordAcknowledgement()
	s.metrics.RecordDecision(log.Decision, log.Reason)
	s.logger.Info("gate acknowledged", "log_id", log.ID, "parent_log_id", parent.ID)

	return &Result{GateDecision: decision, LogID: log.ID}, nil
}

// GetLog returns one gate log.
func (s *Service) GetLog(ctx context.Context, id string) (*audit.GateLog, error) {
	return s.store.GetGateLog(ctx, id)
}

// ListLogs returns gate logs matching the query, newest first. A non-empty
// decision filter must be a valid decision value.
func (s *Service) ListLogs(ctx context.Context, q *audit.LogQuery) ([]*audit.GateLog, error) {
	if q != nil && q.Decision != "" && !engine.ValidDecision(q.Decision) {
		return nil, NewValidationError("decision", fmt.Sprintf("unknown decision %q", q.Decision))
	}
	return s.store.ListGateLogs(ctx, q)
}

// GetTrace returns one decision trace with its anchor snapshots.
func (s *Service) GetTrace(ctx context.Context, id string) (*audit.Trace, error) {
	return s.store.GetTrace(ctx, id)
}

func (s *Service) evaluate(ctx context.Context, in *EvaluateInput, userChoice string) (*Result, error) {
	started := time.Now()

	if strings.TrimSpace(in.Request) == "" {
		return nil, NewValidationError("request", "must not be empty")
	}
	state, err := affectState(in.Arousal, in.Dominance)
	if err != nil {
		return nil, err
	}

	profile, candidates, err := s.resolveCandidates(ctx, in.Profile)
	if err != nil {
		return nil, err
	}

	matchRes, err := s.matcher.FindConflicts(ctx, in.Request, candidates)
	if err != nil {
		return nil, err
	}
	if matchRes.Debug.FallbackOccurred {
		s.metrics.RecordFallback()
	}

	decision := engine.Decide(state, matchRes.ConflictedIDs(), matchRes.MaxLevel)
	explanations := engine.Explain(in.Request, matchRes.Matches)

	now := time.Now().UTC()
	log := &audit.GateLog{
		ID:                  uuid.NewString(),
		CreatedAt:           now,
		RequestSummary:      in.Request,
		Arousal:             string(state.Arousal),
		Dominance:           string(state.Dominance),
		Decision:            string(decision.Decision),
		Reason:              decision.Reason,
		Interpretation:      decision.Interpretation,
		Suggestion:          decision.Suggestion,
		ConflictedAnchorIDs: decision.ConflictedAnchorIDs,
		UserChoice:          userChoice,
	}

	debug, err := json.Marshal(matchRes.Debug)
	if err != nil {
		return nil, fmt.Errorf("marshal match debug: %w", err)
	}

	trace := &audit.Trace{
		ID:                uuid.NewString(),
		CreatedAt:         now,
		LogID:             log.ID,
		RequestText:       in.Request,
		RequestNormalized: textnorm.Normalize(in.Request),
		Arousal:           log.Arousal,
		Dominance:         log.Dominance,
		Decision:          log.Decision,
		Reason:            log.Reason,
		Explanations:      explanations,
		MatchDebug:        debug,
		Anchors:           snapshotAnchors(candidates, matchRes),
	}
	if profile != nil {
		trace.ProfileID = &profile.ID
	}

	if err := s.store.AppendEvaluation(ctx, log, trace); err != nil {
		return nil, err
	}

	s.metrics.RecordDecision(log.Decision, log.Reason)
	s.metrics.RecordEvaluateDuration(time.Since(started).Seconds())
	s.logger.Info("request evaluated",
		"log_id", log.ID,
		"trace_id", trace.ID,
		"decision", log.Decision,
		"reason", log.Reason,
		"conflicts", len(decision.ConflictedAnchorIDs),
	)

	result := &Result{GateDecision: decision, LogID: log.ID, TraceID: trace.ID}
	if decision.Decision != engine.DecisionProceed {
		result.Explanations = explanations
	}
	return result, nil
}

// resolveCandidates returns the anchors an evaluation considers: the named
// profile's assignments (walking the parent chain, child entries override),
// else the default profile's, else every active anchor.
func (s *Service) resolveCandidates(ctx context.Context, profileName string) (*anchor.Profile, []*anchor.Anchor, error) {
	var profile *anchor.Profile
	var err error
	if profileName != "" {
		profile, err = s.store.GetProfileByName(ctx, profileName)
		if err != nil {
			return nil, nil, err
		}
	} else {
		profile, err = s.store.DefaultProfile(ctx)
		if err != nil {
			if !store.IsNotFound(err) {
				return nil, nil, err
			}
			profile = nil
		}
	}

	if profile == nil {
		anchors, err := s.store.ListAnchors(ctx, &store.AnchorQuery{ActiveOnly: true})
		if err != nil {
			return nil, nil, err
		}
		return nil, anchors, nil
	}

	anchors, err := s.profileAnchors(ctx, profile)
	if err != nil {
		return nil, nil, err
	}
	return profile, anchors, nil
}

// profileAnchors collects a profile's enabled assignments in priority order,
// walking up the parent chain. The nearest profile in the chain wins when
// the same anchor is assigned more than once.
func (s *Service) profileAnchors(ctx context.Context, profile *anchor.Profile) ([]*anchor.Anchor, error) {
	seen := make(map[int64]bool)
	visited := make(map[int64]bool)
	var anchors []*anchor.Anchor

	current := profile
	for current != nil {
		if visited[current.ID] {
			break // parent cycle
		}
		visited[current.ID] = true

		assignments, err := s.store.ListAssignments(ctx, current.ID)
		if err != nil {
			return nil, err
		}
		for _, pa := range assignments {
			if seen[pa.AnchorID] {
				continue
			}
			seen[pa.AnchorID] = true
			if !pa.Enabled {
				continue
			}
			a, err := s.store.GetAnchor(ctx, pa.AnchorID)
			if err != nil {
				return nil, err
			}
			if a.Active {
				anchors = append(anchors, a)
			}
		}

		if current.ParentID == nil {
			break
		}
		current, err = s.store.GetProfile(ctx, *current.ParentID)
		if err != nil {
			return nil, err
		}
	}
	return anchors, nil
}

// snapshotAnchors freezes the candidate set as trace rows, from the same
// in-memory slice the matcher saw. A concurrent anchor edit can therefore
// never produce a trace mixing pre- and post-edit states.
func snapshotAnchors(candidates []*anchor.Anchor, matchRes *engine.MatchResult) []*audit.TraceAnchor {
	snapshots := make([]*audit.TraceAnchor, len(candidates))
	for i, a := range candidates {
		ta := &audit.TraceAnchor{
			AnchorID:   a.ID,
			AnchorHash: a.StableHash(),
			Level:      a.Level,
			Scope:      a.Scope,
			Active:     a.Active,
			Statement:  a.Statement,
		}
		if m, ok := matchRes.MatchedBy(a.ID); ok {
			ta.Matched = true
			ta.MatchNote = m.Note()
		}
		snapshots[i] = ta
	}
	return snapshots
}

// affectState validates and defaults the affect inputs.
func affectState(arousal, dominance string) (engine.AffectState, error) {
	if arousal == "" {
		arousal = string(engine.AffectUnknown)
	}
	if dominance == "" {
		dominance = string(engine.AffectUnknown)
	}
	if !engine.ValidAffectLevel(arousal) {
		return engine.AffectState{}, NewValidationError("arousal", fmt.Sprintf("unknown level %q", arousal))
	}
	if !engine.ValidAffectLevel(dominance) {
		return engine.AffectState{}, NewValidationError("dominance", fmt.Sprintf("unknown level %q", dominance))
	}
	return engine.AffectState{
		Arousal:   engine.AffectLevel(arousal),
		Dominance: engine.AffectLevel(dominance),
	}, nil
}
