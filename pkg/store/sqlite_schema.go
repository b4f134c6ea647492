package store

// SchemaVersion is the current database schema version.
const SchemaVersion = 2

// Schema contains the SQL statements to create the database schema.
const Schema = `
-- Truth anchors. Archived rows keep their id so historical traces resolve.
CREATE TABLE IF NOT EXISTS anchors (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    level INTEGER NOT NULL,
    statement TEXT NOT NULL,
    scope TEXT NOT NULL DEFAULT 'global',
    active BOOLEAN NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL
);

-- Evaluation profiles.
CREATE TABLE IF NOT EXISTS profiles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    is_default BOOLEAN NOT NULL DEFAULT 0,
    parent_id INTEGER REFERENCES profiles(id),
    created_at TIMESTAMP NOT NULL
);

-- Anchor membership per profile.
CREATE TABLE IF NOT EXISTS profile_anchors (
    profile_id INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    anchor_id INTEGER NOT NULL REFERENCES anchors(id) ON DELETE CASCADE,
    priority INTEGER NOT NULL DEFAULT 0,
    enabled BOOLEAN NOT NULL DEFAULT 1,
    PRIMARY KEY (profile_id, anchor_id)
);

-- Append-only decision log.
CREATE TABLE IF NOT EXISTS gate_logs (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL,
    request_summary TEXT NOT NULL,
    arousal TEXT NOT NULL,
    dominance TEXT NOT NULL,
    decision TEXT NOT NULL,
    reason TEXT NOT NULL,
    interpretation TEXT NOT NULL,
    suggestion TEXT NOT NULL,
    conflicted_anchor_ids TEXT,
    user_choice TEXT,
    acknowledgement TEXT
);

-- Append-only decision traces, one per evaluate call.
CREATE TABLE IF NOT EXISTS traces (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL,
    log_id TEXT NOT NULL REFERENCES gate_logs(id),
    profile_id INTEGER,
    request_text TEXT NOT NULL,
    request_normalized TEXT NOT NULL,
    arousal TEXT NOT NULL,
    dominance TEXT NOT NULL,
    decision TEXT NOT NULL,
    reason TEXT NOT NULL,
    explanations TEXT,
    match_debug TEXT
);

-- Per-trace anchor snapshots. position preserves the candidate order the
-- matcher saw, so replay re-runs the anchors in the same order.
CREATE TABLE IF NOT EXISTS trace_anchors (
    trace_id TEXT NOT NULL REFERENCES traces(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    anchor_id INTEGER NOT NULL,
    anchor_hash TEXT NOT NULL,
    level INTEGER NOT NULL,
    scope TEXT NOT NULL,
    active BOOLEAN NOT NULL,
    statement TEXT NOT NULL,
    matched BOOLEAN NOT NULL,
    match_note TEXT,
    PRIMARY KEY (trace_id, anchor_id)
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_anchors_scope ON anchors(scope);
CREATE INDEX IF NOT EXISTS idx_anchors_active ON anchors(active);
CREATE INDEX IF NOT EXISTS idx_gate_logs_created_at ON gate_logs(created_at);
CREATE INDEX IF NOT EXISTS idx_gate_logs_decision ON gate_logs(decision);
CREATE INDEX IF NOT EXISTS idx_traces_created_at ON traces(created_at);
CREATE INDEX IF NOT EXISTS idx_traces_log_id ON traces(log_id);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
