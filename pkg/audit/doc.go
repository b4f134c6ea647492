// Package audit defines the immutable audit records written for every gate
// decision: the gate log and the decision trace.
//
// # Gate logs
//
// One gate log row is written per decision, regardless of path (evaluate,
// reframe, acknowledge). Logs are append-only: follow-on actions create a new
// row linked to the parent through the UserChoice annotation
// ("reframe_from:<id>", "proceed_acknowledged:<id>") and never mutate the
// original. This preserves the full audit chain.
//
// # Decision traces
//
// One trace is written per evaluate call. A trace snapshots everything needed
// for faithful replay: the raw and normalized request text, affect state, the
// decision actually produced, an opaque match-debug payload describing which
// matcher ran, and one snapshot row per anchor considered (not just the
// conflicting ones). The snapshot rows are the unit of drift detection: a
// trace's policy context is reconstructed entirely from them, independent of
// what the anchor store looks like later.
//
// Trace and snapshot rows are created atomically and never updated. Either
// the full audit record exists or none of it does.
package audit
