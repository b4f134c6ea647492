// Package gate orchestrates request evaluation: it resolves the candidate
// anchor set (optionally scoped to a profile), runs the conflict matcher and
// decision state machine, and appends the immutable gate log and decision
// trace in one store transaction.
//
// Follow-on operations never rewrite history. Reframe evaluates the new
// wording as a fresh log annotated with its parent; acknowledge records a
// forced proceed against a level-2 gate and nothing else.
package gate
