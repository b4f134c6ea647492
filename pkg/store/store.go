package store

import (
	"context"
	"time"

	"gatewright-hq/gatewright/pkg/anchor"
	"gatewright-hq/gatewright/pkg/audit"
)

// AnchorQuery filters anchor listings. Zero values mean "no filter".
type AnchorQuery struct {
	// Scope restricts to one scope when non-empty.
	Scope string

	// ActiveOnly excludes archived anchors.
	ActiveOnly bool
}

// Store is the persistence interface.
//
// All methods honor the context; implementations return ErrNotFound for
// missing entities and ErrConflict for uniqueness violations.
type Store interface {
	// CreateAnchor persists a new anchor, assigning ID and CreatedAt.
	CreateAnchor(ctx context.Context, a *anchor.Anchor) error

	// GetAnchor returns the anchor with the given id.
	GetAnchor(ctx context.Context, id int64) (*anchor.Anchor, error)

	// ListAnchors returns anchors matching the query, oldest first.
	ListAnchors(ctx context.Context, q *AnchorQuery) ([]*anchor.Anchor, error)

	// UpdateAnchor rewrites the mutable fields (level, statement, scope) of
	// an existing anchor.
	UpdateAnchor(ctx context.Context, a *anchor.Anchor) error

	// ArchiveAnchor marks an anchor inactive. Archival is one-way.
	ArchiveAnchor(ctx context.Context, id int64) error

	// FindAnchorByStatement returns the anchor with the given statement and
	// scope, used for idempotent seeding.
	FindAnchorByStatement(ctx context.Context, scope, statement string) (*anchor.Anchor, error)

	// CreateProfile persists a new profile, assigning ID and CreatedAt.
	// Creating a default profile clears the default flag on any other.
	CreateProfile(ctx context.Context, p *anchor.Profile) error

	// GetProfile returns the profile with the given id.
	GetProfile(ctx context.Context, id int64) (*anchor.Profile, error)

	// GetProfileByName returns the profile with the given name.
	GetProfileByName(ctx context.Context, name string) (*anchor.Profile, error)

	// ListProfiles returns all profiles, oldest first.
	ListProfiles(ctx context.Context) ([]*anchor.Profile, error)

	// DefaultProfile returns the profile marked default, or ErrNotFound.
	DefaultProfile(ctx context.Context) (*anchor.Profile, error)

	// AssignAnchor attaches an anchor to a profile, replacing any existing
	// assignment for the same pair.
	AssignAnchor(ctx context.Context, profileID int64, pa *anchor.ProfileAnchor) error

	// UnassignAnchor detaches an anchor from a profile.
	UnassignAnchor(ctx context.Context, profileID, anchorID int64) error

	// ListAssignments returns a profile's assignments ordered by priority,
	// then anchor id.
	ListAssignments(ctx context.Context, profileID int64) ([]*anchor.ProfileAnchor, error)

	// AppendEvaluation atomically records a gate log, its trace and the
	// trace's anchor snapshots. Either everything lands or nothing does.
	AppendEvaluation(ctx context.Context, log *audit.GateLog, trace *audit.Trace) error

	// GetGateLog returns the gate log with the given id.
	GetGateLog(ctx context.Context, id string) (*audit.GateLog, error)

	// ListGateLogs returns gate logs matching the query, newest first.
	ListGateLogs(ctx context.Context, q *audit.LogQuery) ([]*audit.GateLog, error)

	// GetTrace returns the trace with the given id, anchor snapshots
	// included.
	GetTrace(ctx context.Context, id string) (*audit.Trace, error)

	// GetTraceByLog returns the trace recorded alongside the given gate log.
	GetTraceByLog(ctx context.Context, logID string) (*audit.Trace, error)

	// ListTraceIDs returns ids of traces created at or after since, oldest
	// first, capped at limit.
	ListTraceIDs(ctx context.Context, since time.Time, limit int) ([]string, error)

	// Close releases backend resources.
	Close() error
}
