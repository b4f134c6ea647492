// Package engine implements the conflict-detection and decision core: the
// lexical conflict matcher, the explanation builder, and the deterministic
// decision state machine.
//
// # Matching
//
// FindConflicts checks a request against each candidate anchor using three
// rules, in precedence order:
//
//  1. Negation inversion: the negation-stripped normalized forms of request
//     and statement are identical and exactly one of the two is negated.
//  2. Lexical overlap: at least one shared bigram, or at least two shared
//     tokens, after stemming and stopword removal.
//  3. Monetary trigger: a refund-intent word together with a currency amount
//     above the configured threshold flags every active anchor in the
//     configured payment scopes, even absent lexical overlap.
//
// An alternate semantic scorer can be injected through the SemanticScorer
// interface. When it is requested but yields no matches (or fails), the
// matcher falls back to the lexical rules and records that a fallback
// occurred in the match-debug payload. The fallback is never silent.
//
// # Deciding
//
// Decide maps (max conflicted severity level, affect state) to a decision
// through a fixed transition table. Every decision carries all of its fields:
// reason code, interpretation, suggestion and allowed next actions. There are
// no partial decision shapes.
//
// The decision enum includes "refuse" for compatibility with persisted data,
// but no transition rule produces it.
//
// # Determinism
//
// Matching and deciding are pure functions of their inputs. Trace replay
// re-runs both against snapshot data and must reproduce the stored outcome
// bit for bit when nothing drifted.
package engine
