package engine

import (
	"context"
	"log/slog"
	"sort"

	"gatewright-hq/gatewright/pkg/anchor"
	"gatewright-hq/gatewright/pkg/textnorm"
)

// SemanticScorer scores a request against a set of policy statements and
// returns one similarity score per statement, in input order. Implementations
// must be side-effect free and safe to invoke concurrently from independent
// decisions.
type SemanticScorer interface {
	Score(ctx context.Context, request string, statements []string) ([]float64, error)
}

// Matcher flags the anchors a request conflicts with. A Matcher is stateless
// apart from its configuration and injected scorer; FindConflicts is a pure
// function of its inputs and safe for concurrent use.
type Matcher struct {
	config *Config
	scorer SemanticScorer
	logger *slog.Logger
}

// NewMatcher creates a matcher. The scorer may be nil, in which case the
// semantic backend silently degrades to lexical with a recorded fallback.
func NewMatcher(config *Config, scorer SemanticScorer) *Matcher {
	if config == nil {
		config = DefaultConfig()
	}
	return &Matcher{
		config: config,
		scorer: scorer,
		logger: slog.Default().With("component", "gate.matcher"),
	}
}

// FindConflicts returns the subset of candidate anchors the request conflicts
// with, deduplicated, with the evidence that justified each flag. Inactive
// anchors never conflict; the candidate set for live evaluation is already
// active-only, and during replay an archived anchor must stop matching so
// the decision drift becomes visible.
func (m *Matcher) FindConflicts(ctx context.Context, request string, anchors []*anchor.Anchor) (*MatchResult, error) {
	backend := m.config.Backend
	if backend == "" {
		backend = BackendLexical
	}

	result := &MatchResult{
		Debug: MatchDebug{
			RequestedBackend: backend,
			UsedBackend:      backend,
		},
	}

	if backend == BackendSemantic {
		result.Debug.Threshold = m.config.Threshold
		matches, scores, err := m.semanticConflicts(ctx, request, anchors)
		switch {
		case err != nil:
			result.Debug.FallbackOccurred = true
			result.Debug.FallbackReason = "scorer error: " + err.Error()
			result.Debug.UsedBackend = BackendLexical
			m.logger.Warn("semantic scorer failed, falling back to lexical matcher", "error", err)
		case len(matches) == 0:
			// A scorer finding nothing is not the same as there being no
			// conflicts; the lexical rules get the final word.
			result.Debug.FallbackOccurred = true
			result.Debug.FallbackReason = "semantic scorer returned no matches at or above threshold"
			result.Debug.UsedBackend = BackendLexical
			result.Debug.Scores = scores
		default:
			result.Debug.Scores = scores
			result.Matches = matches
			m.applyMoneyTrigger(request, anchors, result)
			finalize(result)
			return result, nil
		}
	}

	result.Matches = m.lexicalConflicts(request, anchors)
	m.applyMoneyTrigger(request, anchors, result)
	finalize(result)
	return result, nil
}

// lexicalConflicts applies the negation-inversion and lexical-overlap rules
// to each anchor, in candidate order.
func (m *Matcher) lexicalConflicts(request string, anchors []*anchor.Anchor) []Match {
	reqNegated := textnorm.HasNegation(request)
	reqStripped := textnorm.StripNegation(request)
	reqTokens := tokenSet(textnorm.Tokenize(request))
	reqBigrams := tokenSet(textnorm.Bigrams(textnorm.Tokenize(request)))

	var matches []Match
	for _, a := range anchors {
		if !a.Active {
			continue
		}

		// Rule 1: negation inversion. The strongest signal: same statement,
		// one side negated.
		stmtNegated := textnorm.HasNegation(a.Statement)
		if reqStripped == textnorm.StripNegation(a.Statement) && reqNegated != stmtNegated {
			matches = append(matches, Match{Anchor: a, Rule: RuleNegationInversion})
			continue
		}

		// Rule 2: lexical overlap. One shared bigram outweighs isolated
		// shared words, hence the asymmetric threshold.
		stmtTokens := textnorm.Tokenize(a.Statement)
		sharedBigrams := intersect(textnorm.Bigrams(stmtTokens), reqBigrams)
		sharedTokens := intersect(stmtTokens, reqTokens)
		if len(sharedBigrams) >= 1 || len(sharedTokens) >= 2 {
			matches = append(matches, Match{
				Anchor:        a,
				Rule:          RuleLexicalOverlap,
				SharedBigrams: sharedBigrams,
				SharedTokens:  sharedTokens,
			})
		}
	}
	return matches
}

// semanticConflicts asks the injected scorer for per-anchor similarity and
// keeps anchors at or above threshold, sorted by score descending. Returns
// all scores for the debug payload regardless of threshold.
func (m *Matcher) semanticConflicts(ctx context.Context, request string, anchors []*anchor.Anchor) ([]Match, map[int64]float64, error) {
	if m.scorer == nil {
		return nil, nil, ErrNoScorer
	}

	active := make([]*anchor.Anchor, 0, len(anchors))
	for _, a := range anchors {
		if a.Active {
			active = append(active, a)
		}
	}
	if len(active) == 0 {
		return nil, nil, nil
	}

	statements := make([]string, len(active))
	for i, a := range active {
		statements[i] = a.Statement
	}

	scores, err := m.scorer.Score(ctx, request, statements)
	if err != nil {
		return nil, nil, err
	}
	if len(scores) != len(active) {
		return nil, nil, &ScorerError{Expected: len(active), Got: len(scores)}
	}

	byID := make(map[int64]float64, len(active))
	var matches []Match
	for i, a := range active {
		byID[a.ID] = scores[i]
		if scores[i] >= m.config.Threshold {
			matches = append(matches, Match{Anchor: a, Rule: RuleSemantic, Score: scores[i]})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	return matches, byID, nil
}

// applyMoneyTrigger appends every active anchor in the configured payment
// scopes when the request carries refund intent and an amount above the
// threshold. Runs regardless of which backend produced the base matches.
func (m *Matcher) applyMoneyTrigger(request string, anchors []*anchor.Anchor, result *MatchResult) {
	if !m.config.Money.Triggered(request) {
		return
	}
	scopes := make(map[string]bool, len(m.config.Money.Scopes))
	for _, s := range m.config.Money.Scopes {
		scopes[s] = true
	}
	for _, a := range anchors {
		if a.Active && scopes[a.Scope] {
			result.Matches = append(result.Matches, Match{Anchor: a, Rule: RuleMonetaryTrigger})
		}
	}
}

// finalize deduplicates matches (an anchor flagged by multiple rules appears
// once, first rule wins) and computes the max severity level.
func finalize(result *MatchResult) {
	seen := make(map[int64]bool, len(result.Matches))
	deduped := result.Matches[:0]
	for _, m := range result.Matches {
		if seen[m.Anchor.ID] {
			continue
		}
		seen[m.Anchor.ID] = true
		deduped = append(deduped, m)
		if m.Anchor.Level > result.MaxLevel {
			result.MaxLevel = m.Anchor.Level
		}
	}
	result.Matches = deduped
}

// tokenSet builds a membership set from a token slice.
func tokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

// intersect returns the members of ordered that appear in set, preserving
// order and dropping duplicates.
func intersect(ordered []string, set map[string]bool) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range ordered {
		if set[t] && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
