// Package anchor defines the core policy entities: the truth anchor (a
// standing policy statement with a severity level and scope) and the policy
// profile (a named, prioritized, enable/disable-able subset of anchors used
// to scope evaluation).
//
// # Anchors
//
// An anchor is immutable once created except for its Active flag, which can
// be flipped off exactly once (archival). Anchors are never hard-deleted
// while decision traces reference them; drift detection treats a missing
// anchor as "missing", not as an error.
//
// Each anchor has a stable hash: a SHA-256 digest over (level, scope, active,
// statement). Any change to those fields changes the hash. The hash is the
// sole drift-detection primitive used by trace replay.
//
// # Profiles
//
// A profile owns an ordered collection of (anchor, priority, enabled)
// associations. At most one profile may be marked default, and duplicate
// (profile, anchor) pairs are forbidden. Profiles reference anchors weakly:
// they survive anchor archival.
package anchor
