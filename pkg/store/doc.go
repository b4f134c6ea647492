// Package store defines the persistence interface for anchors, profiles,
// gate logs and decision traces, with two backends: SQLite for production
// and an in-memory map for tests.
//
// Gate logs and traces are append-only. AppendEvaluation writes a log, its
// trace and the trace's anchor snapshots in one transaction so an audit
// record can never be half-written; no method updates or deletes them
// afterwards. Anchors are archived, never deleted, so historical traces keep
// resolving.
package store
