// Package replay re-runs a recorded decision trace against the current
// anchor content and reports what changed. A replay is a pure function of
// the stored request, the stored affect state and the anchors as they stand
// now; it writes nothing.
//
// Drift is itemized per anchor by comparing each snapshot's stable hash with
// the anchor's current hash. Anchors created after the trace are counted but
// not replayed, since the original evaluation never considered them.
package replay
