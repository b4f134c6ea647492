package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"gatewright-hq/gatewright/pkg/anchor"
	"gatewright-hq/gatewright/pkg/audit"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/gatewright.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite storage backend.
// It initializes the database schema and enables WAL mode if configured.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "store.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError("sqlite", "enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return NewStorageError("sqlite", "enable_foreign_keys", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}
	s.logger.Debug("database schema created")

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)
	return nil
}

// CreateAnchor persists a new anchor, assigning ID and CreatedAt.
func (s *SQLiteStore) CreateAnchor(ctx context.Context, a *anchor.Anchor) error {
	if a.Scope == "" {
		a.Scope = anchor.DefaultScope
	}
	a.Active = true
	a.CreatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO anchors (level, statement, scope, active, created_at) VALUES (?, ?, ?, ?, ?)`,
		a.Level, a.Statement, a.Scope, a.Active, a.CreatedAt,
	)
	if err != nil {
		return NewStorageError("sqlite", "create_anchor", mapConstraint(err))
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return NewStorageError("sqlite", "create_anchor", err)
	}
	return nil
}

// GetAnchor returns the anchor with the given id.
func (s *SQLiteStore) GetAnchor(ctx context.Context, id int64) (*anchor.Anchor, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, level, statement, scope, active, created_at FROM anchors WHERE id = ?`, id)
	a, err := scanAnchor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStorageError("sqlite", "get_anchor", ErrNotFound)
		}
		return nil, NewStorageError("sqlite", "get_anchor", err)
	}
	return a, nil
}

// ListAnchors returns anchors matching the query, oldest first.
func (s *SQLiteStore) ListAnchors(ctx context.Context, q *AnchorQuery) ([]*anchor.Anchor, error) {
	if q == nil {
		q = &AnchorQuery{}
	}

	query := `SELECT id, level, statement, scope, active, created_at FROM anchors`
	var conditions []string
	var args []interface{}
	if q.Scope != "" {
		conditions = append(conditions, "scope = ?")
		args = append(args, q.Scope)
	}
	if q.ActiveOnly {
		conditions = append(conditions, "active = 1")
	}
	for i, c := range conditions {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "list_anchors", err)
	}
	defer rows.Close()

	anchors := []*anchor.Anchor{}
	for rows.Next() {
		a, err := scanAnchor(rows)
		if err != nil {
			return nil, NewStorageError("sqlite", "list_anchors", err)
		}
		anchors = append(anchors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "list_anchors", err)
	}
	return anchors, nil
}

// UpdateAnchor rewrites the mutable fields of an existing anchor.
func (s *SQLiteStore) UpdateAnchor(ctx context.Context, a *anchor.Anchor) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE anchors SET level = ?, statement = ?, scope = ? WHERE id = ?`,
		a.Level, a.Statement, a.Scope, a.ID,
	)
	if err != nil {
		return NewStorageError("sqlite", "update_anchor", err)
	}
	return requireAffected(res, "update_anchor")
}

// ArchiveAnchor marks an anchor inactive.
func (s *SQLiteStore) ArchiveAnchor(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE anchors SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return NewStorageError("sqlite", "archive_anchor", err)
	}
	return requireAffected(res, "archive_anchor")
}

// FindAnchorByStatement returns the anchor with the given statement and scope.
func (s *SQLiteStore) FindAnchorByStatement(ctx context.Context, scope, statement string) (*anchor.Anchor, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, level, statement, scope, active, created_at FROM anchors WHERE scope = ? AND statement = ? LIMIT 1`,
		scope, statement)
	a, err := scanAnchor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStorageError("sqlite", "find_anchor", ErrNotFound)
		}
		return nil, NewStorageError("sqlite", "find_anchor", err)
	}
	return a, nil
}

// CreateProfile persists a new profile. Creating a default profile clears the
// default flag on any other, in the same transaction.
func (s *SQLiteStore) CreateProfile(ctx context.Context, p *anchor.Profile) error {
	p.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NewStorageError("sqlite", "create_profile", err)
	}
	defer tx.Rollback()

	if p.Default {
		if _, err := tx.ExecContext(ctx, `UPDATE profiles SET is_default = 0 WHERE is_default = 1`); err != nil {
			return NewStorageError("sqlite", "create_profile", err)
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO profiles (name, description, is_default, parent_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.Default, p.ParentID, p.CreatedAt,
	)
	if err != nil {
		return NewStorageError("sqlite", "create_profile", mapConstraint(err))
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return NewStorageError("sqlite", "create_profile", err)
	}

	if err := tx.Commit(); err != nil {
		return NewStorageError("sqlite", "create_profile", err)
	}
	return nil
}

// GetProfile returns the profile with the given id.
func (s *SQLiteStore) GetProfile(ctx context.Context, id int64) (*anchor.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, is_default, parent_id, created_at FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStorageError("sqlite", "get_profile", ErrNotFound)
		}
		return nil, NewStorageError("sqlite", "get_profile", err)
	}
	return p, nil
}

// GetProfileByName returns the profile with the given name.
func (s *SQLiteStore) GetProfileByName(ctx context.Context, name string) (*anchor.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, is_default, parent_id, created_at FROM profiles WHERE name = ?`, name)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStorageError("sqlite", "get_profile_by_name", ErrNotFound)
		}
		return nil, NewStorageError("sqlite", "get_profile_by_name", err)
	}
	return p, nil
}

// ListProfiles returns all profiles, oldest first.
func (s *SQLiteStore) ListProfiles(ctx context.Context) ([]*anchor.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, is_default, parent_id, created_at FROM profiles ORDER BY id ASC`)
	if err != nil {
		return nil, NewStorageError("sqlite", "list_profiles", err)
	}
	defer rows.Close()

	profiles := []*anchor.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, NewStorageError("sqlite", "list_profiles", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "list_profiles", err)
	}
	return profiles, nil
}

// DefaultProfile returns the profile marked default.
func (s *SQLiteStore) DefaultProfile(ctx context.Context) (*anchor.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, is_default, parent_id, created_at FROM profiles WHERE is_default = 1 LIMIT 1`)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStorageError("sqlite", "default_profile", ErrNotFound)
		}
		return nil, NewStorageError("sqlite", "default_profile", err)
	}
	return p, nil
}

// AssignAnchor attaches an anchor to a profile, replacing any existing
// assignment for the same pair.
func (s *SQLiteStore) AssignAnchor(ctx context.Context, profileID int64, pa *anchor.ProfileAnchor) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profile_anchors (profile_id, anchor_id, priority, enabled) VALUES (?, ?, ?, ?)
		 ON CONFLICT(profile_id, anchor_id) DO UPDATE SET priority = excluded.priority, enabled = excluded.enabled`,
		profileID, pa.AnchorID, pa.Priority, pa.Enabled,
	)
	if err != nil {
		return NewStorageError("sqlite", "assign_anchor", mapConstraint(err))
	}
	return nil
}

// UnassignAnchor detaches an anchor from a profile.
func (s *SQLiteStore) UnassignAnchor(ctx context.Context, profileID, anchorID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM profile_anchors WHERE profile_id = ? AND anchor_id = ?`, profileID, anchorID)
	if err != nil {
		return NewStorageError("sqlite", "unassign_anchor", err)
	}
	return requireAffected(res, "unassign_anchor")
}

// ListAssignments returns a profile's assignments ordered by priority, then
// anchor id.
func (s *SQLiteStore) ListAssignments(ctx context.Context, profileID int64) ([]*anchor.ProfileAnchor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT anchor_id, priority, enabled FROM profile_anchors WHERE profile_id = ? ORDER BY priority ASC, anchor_id ASC`,
		profileID)
	if err != nil {
		return nil, NewStorageError("sqlite", "list_assignments", err)
	}
	defer rows.Close()

	assignments := []*anchor.ProfileAnchor{}
	for rows.Next() {
		pa := &anchor.ProfileAnchor{}
		if err := rows.Scan(&pa.AnchorID, &pa.Priority, &pa.Enabled); err != nil {
			return nil, NewStorageError("sqlite", "list_assignments", err)
		}
		assignments = append(assignments, pa)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "list_assignments", err)
	}
	return assignments, nil
}

// AppendEvaluation atomically records a gate log, its trace and the trace's
// anchor snapshots.
func (s *SQLiteStore) AppendEvaluation(ctx context.Context, log *audit.GateLog, trace *audit.Trace) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NewStorageError("sqlite", "append_evaluation", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO gate_logs (
			id, created_at, request_summary, arousal, dominance,
			decision, reason, interpretation, suggestion,
			conflicted_anchor_ids, user_choice, acknowledgement
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID, log.CreatedAt, log.RequestSummary, log.Arousal, log.Dominance,
		log.Decision, log.Reason, log.Interpretation, log.Suggestion,
		audit.JoinIDs(log.ConflictedAnchorIDs), nullable(log.UserChoice), nullable(log.Acknowledgement),
	)
	if err != nil {
		return NewStorageError("sqlite", "append_evaluation", mapConstraint(err))
	}

	if trace != nil {
		explanations, _ := json.Marshal(trace.Explanations)
		_, err = tx.ExecContext(ctx,
			`INSERT INTO traces (
				id, created_at, log_id, profile_id,
				request_text, request_normalized, arousal, dominance,
				decision, reason, explanations, match_debug
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			trace.ID, trace.CreatedAt, trace.LogID, trace.ProfileID,
			trace.RequestText, trace.RequestNormalized, trace.Arousal, trace.Dominance,
			trace.Decision, trace.Reason, string(explanations), string(trace.MatchDebug),
		)
		if err != nil {
			return NewStorageError("sqlite", "append_evaluation", mapConstraint(err))
		}

		for i, ta := range trace.Anchors {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO trace_anchors (
					trace_id, position, anchor_id, anchor_hash, level, scope, active, statement, matched, match_note
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				trace.ID, i, ta.AnchorID, ta.AnchorHash, ta.Level, ta.Scope, ta.Active, ta.Statement, ta.Matched, nullable(ta.MatchNote),
			)
			if err != nil {
				return NewStorageError("sqlite", "append_evaluation", mapConstraint(err))
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return NewStorageError("sqlite", "append_evaluation", err)
	}
	return nil
}

// GetGateLog returns the gate log with the given id.
func (s *SQLiteStore) GetGateLog(ctx context.Context, id string) (*audit.GateLog, error) {
	row := s.db.QueryRowContext(ctx, selectGateLog+` WHERE id = ?`, id)
	log, err := scanGateLog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStorageError("sqlite", "get_gate_log", ErrNotFound)
		}
		return nil, NewStorageError("sqlite", "get_gate_log", err)
	}
	return log, nil
}

// ListGateLogs returns gate logs matching the query, newest first.
func (s *SQLiteStore) ListGateLogs(ctx context.Context, q *audit.LogQuery) ([]*audit.GateLog, error) {
	if q == nil {
		q = &audit.LogQuery{}
	}

	query := selectGateLog
	var conditions []string
	var args []interface{}
	if q.Decision != "" {
		conditions = append(conditions, "decision = ?")
		args = append(args, q.Decision)
	}
	if q.Since != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *q.Since)
	}
	for i, c := range conditions {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY created_at DESC, id DESC"

	limit := 100
	if q.Limit > 0 {
		limit = q.Limit
	}
	query += fmt.Sprintf(" LIMIT %d", limit)
	if q.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "list_gate_logs", err)
	}
	defer rows.Close()

	logs := []*audit.GateLog{}
	for rows.Next() {
		log, err := scanGateLog(rows)
		if err != nil {
			return nil, NewStorageError("sqlite", "list_gate_logs", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "list_gate_logs", err)
	}
	return logs, nil
}

// GetTrace returns the trace with the given id, anchor snapshots included.
func (s *SQLiteStore) GetTrace(ctx context.Context, id string) (*audit.Trace, error) {
	return s.getTrace(ctx, `WHERE id = ?`, id)
}

// GetTraceByLog returns the trace recorded alongside the given gate log.
func (s *SQLiteStore) GetTraceByLog(ctx context.Context, logID string) (*audit.Trace, error) {
	return s.getTrace(ctx, `WHERE log_id = ?`, logID)
}

func (s *SQLiteStore) getTrace(ctx context.Context, where string, arg interface{}) (*audit.Trace, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, log_id, profile_id, request_text, request_normalized,
			arousal, dominance, decision, reason, explanations, match_debug
		 FROM traces `+where, arg)

	trace := &audit.Trace{}
	var profileID sql.NullInt64
	var explanations, matchDebug sql.NullString
	err := row.Scan(
		&trace.ID, &trace.CreatedAt, &trace.LogID, &profileID,
		&trace.RequestText, &trace.RequestNormalized,
		&trace.Arousal, &trace.Dominance, &trace.Decision, &trace.Reason,
		&explanations, &matchDebug,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStorageError("sqlite", "get_trace", ErrNotFound)
		}
		return nil, NewStorageError("sqlite", "get_trace", err)
	}
	if profileID.Valid {
		trace.ProfileID = &profileID.Int64
	}
	if explanations.Valid && explanations.String != "" {
		json.Unmarshal([]byte(explanations.String), &trace.Explanations)
	}
	if matchDebug.Valid && matchDebug.String != "" {
		trace.MatchDebug = json.RawMessage(matchDebug.String)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT anchor_id, anchor_hash, level, scope, active, statement, matched, match_note
		 FROM trace_anchors WHERE trace_id = ? ORDER BY position ASC`, trace.ID)
	if err != nil {
		return nil, NewStorageError("sqlite", "get_trace", err)
	}
	defer rows.Close()

	for rows.Next() {
		ta := &audit.TraceAnchor{}
		var note sql.NullString
		if err := rows.Scan(&ta.AnchorID, &ta.AnchorHash, &ta.Level, &ta.Scope, &ta.Active, &ta.Statement, &ta.Matched, &note); err != nil {
			return nil, NewStorageError("sqlite", "get_trace", err)
		}
		ta.MatchNote = note.String
		trace.Anchors = append(trace.Anchors, ta)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "get_trace", err)
	}
	return trace, nil
}

// ListTraceIDs returns ids of traces created at or after since, oldest first.
func (s *SQLiteStore) ListTraceIDs(ctx context.Context, since time.Time, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM traces WHERE created_at >= ? ORDER BY created_at ASC, id ASC LIMIT ?`,
		since, limit)
	if err != nil {
		return nil, NewStorageError("sqlite", "list_trace_ids", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, NewStorageError("sqlite", "list_trace_ids", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "list_trace_ids", err)
	}
	return ids, nil
}

// Close releases resources held by the storage backend.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("SQLite store closed")
	return nil
}

const selectGateLog = `SELECT id, created_at, request_summary, arousal, dominance,
	decision, reason, interpretation, suggestion,
	conflicted_anchor_ids, user_choice, acknowledgement
FROM gate_logs`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAnchor scans an anchor row.
func scanAnchor(row rowScanner) (*anchor.Anchor, error) {
	a := &anchor.Anchor{}
	if err := row.Scan(&a.ID, &a.Level, &a.Statement, &a.Scope, &a.Active, &a.CreatedAt); err != nil {
		return nil, err
	}
	return a, nil
}

// scanProfile scans a profile row.
func scanProfile(row rowScanner) (*anchor.Profile, error) {
	p := &anchor.Profile{}
	var parentID sql.NullInt64
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Default, &parentID, &p.CreatedAt); err != nil {
		return nil, err
	}
	if parentID.Valid {
		p.ParentID = &parentID.Int64
	}
	return p, nil
}

// scanGateLog scans a gate log row.
func scanGateLog(row rowScanner) (*audit.GateLog, error) {
	log := &audit.GateLog{}
	var ids, userChoice, acknowledgement sql.NullString
	err := row.Scan(
		&log.ID, &log.CreatedAt, &log.RequestSummary, &log.Arousal, &log.Dominance,
		&log.Decision, &log.Reason, &log.Interpretation, &log.Suggestion,
		&ids, &userChoice, &acknowledgement,
	)
	if err != nil {
		return nil, err
	}
	log.ConflictedAnchorIDs = audit.ParseIDs(ids.String)
	log.UserChoice = userChoice.String
	log.Acknowledgement = acknowledgement.String
	return log, nil
}

// nullable converts empty strings to NULL for optional columns.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// requireAffected maps a zero-row update to ErrNotFound.
func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return NewStorageError("sqlite", op, err)
	}
	if n == 0 {
		return NewStorageError("sqlite", op, ErrNotFound)
	}
	return nil
}

// mapConstraint converts SQLite constraint violations into ErrConflict so
// callers can branch without importing the driver.
func mapConstraint(err error) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}
