package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"gatewright-hq/gatewright/pkg/anchor"
	"gatewright-hq/gatewright/pkg/audit"
)

// MemoryStore implements the Store interface using in-memory maps.
// This implementation is intended for testing only and should not be used in
// production.
type MemoryStore struct {
	mu sync.RWMutex

	anchors       map[int64]*anchor.Anchor
	nextAnchorID  int64
	profiles      map[int64]*anchor.Profile
	nextProfileID int64
	assignments   map[int64]map[int64]*anchor.ProfileAnchor

	// logs and traces keep insertion order; both are append-only.
	logs     []*audit.GateLog
	logsByID map[string]*audit.GateLog
	traces   []*audit.Trace
	byTrace  map[string]*audit.Trace
	byLog    map[string]*audit.Trace
}

// NewMemoryStore creates a new in-memory storage backend.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		anchors:     make(map[int64]*anchor.Anchor),
		profiles:    make(map[int64]*anchor.Profile),
		assignments: make(map[int64]map[int64]*anchor.ProfileAnchor),
		logsByID:    make(map[string]*audit.GateLog),
		byTrace:     make(map[string]*audit.Trace),
		byLog:       make(map[string]*audit.Trace),
	}
}

// CreateAnchor persists a new anchor, assigning ID and CreatedAt.
func (s *MemoryStore) CreateAnchor(ctx context.Context, a *anchor.Anchor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.Scope == "" {
		a.Scope = anchor.DefaultScope
	}
	s.nextAnchorID++
	a.ID = s.nextAnchorID
	a.Active = true
	a.CreatedAt = time.Now().UTC()

	stored := *a
	s.anchors[a.ID] = &stored
	return nil
}

// GetAnchor returns the anchor with the given id.
func (s *MemoryStore) GetAnchor(ctx context.Context, id int64) (*anchor.Anchor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.anchors[id]
	if !ok {
		return nil, NewStorageError("memory", "get_anchor", ErrNotFound)
	}
	stored := *a
	return &stored, nil
}

// ListAnchors returns anchors matching the query, oldest first.
func (s *MemoryStore) ListAnchors(ctx context.Context, q *AnchorQuery) ([]*anchor.Anchor, error) {
	if q == nil {
		q = &AnchorQuery{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	anchors := []*anchor.Anchor{}
	for id := int64(1); id <= s.nextAnchorID; id++ {
		a, ok := s.anchors[id]
		if !ok {
			continue
		}
		if q.Scope != "" && a.Scope != q.Scope {
			continue
		}
		if q.ActiveOnly && !a.Active {
			continue
		}
		stored := *a
		anchors = append(anchors, &stored)
	}
	return anchors, nil
}

// UpdateAnchor rewrites the mutable fields of an existing anchor.
func (s *MemoryStore) UpdateAnchor(ctx context.Context, a *anchor.Anchor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.anchors[a.ID]
	if !ok {
		return NewStorageError("memory", "update_anchor", ErrNotFound)
	}
	existing.Level = a.Level
	existing.Statement = a.Statement
	existing.Scope = a.Scope
	return nil
}

// ArchiveAnchor marks an anchor inactive.
func (s *MemoryStore) ArchiveAnchor(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.anchors[id]
	if !ok {
		return NewStorageError("memory", "archive_anchor", ErrNotFound)
	}
	a.Active = false
	return nil
}

// FindAnchorByStatement returns the anchor with the given statement and scope.
func (s *MemoryStore) FindAnchorByStatement(ctx context.Context, scope, statement string) (*anchor.Anchor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id := int64(1); id <= s.nextAnchorID; id++ {
		a, ok := s.anchors[id]
		if ok && a.Scope == scope && a.Statement == statement {
			stored := *a
			return &stored, nil
		}
	}
	return nil, NewStorageError("memory", "find_anchor", ErrNotFound)
}

// CreateProfile persists a new profile. Creating a default profile clears
// the default flag on any other.
func (s *MemoryStore) CreateProfile(ctx context.Context, p *anchor.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.profiles {
		if existing.Name == p.Name {
			return NewStorageError("memory", "create_profile", ErrConflict)
		}
	}
	if p.Default {
		for _, existing := range s.profiles {
			existing.Default = false
		}
	}

	s.nextProfileID++
	p.ID = s.nextProfileID
	p.CreatedAt = time.Now().UTC()

	stored := *p
	s.profiles[p.ID] = &stored
	return nil
}

// GetProfile returns the profile with the given id.
func (s *MemoryStore) GetProfile(ctx context.Context, id int64) (*anchor.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, NewStorageError("memory", "get_profile", ErrNotFound)
	}
	stored := *p
	return &stored, nil
}

// GetProfileByName returns the profile with the given name.
func (s *MemoryStore) GetProfileByName(ctx context.Context, name string) (*anchor.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.profiles {
		if p.Name == name {
			stored := *p
			return &stored, nil
		}
	}
	return nil, NewStorageError("memory", "get_profile_by_name", ErrNotFound)
}

// ListProfiles returns all profiles, oldest first.
func (s *MemoryStore) ListProfiles(ctx context.Context) ([]*anchor.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profiles := []*anchor.Profile{}
	for id := int64(1); id <= s.nextProfileID; id++ {
		if p, ok := s.profiles[id]; ok {
			stored := *p
			profiles = append(profiles, &stored)
		}
	}
	return profiles, nil
}

// DefaultProfile returns the profile marked default.
func (s *MemoryStore) DefaultProfile(ctx context.Context) (*anchor.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.profiles {
		if p.Default {
			stored := *p
			return &stored, nil
		}
	}
	return nil, NewStorageError("memory", "default_profile", ErrNotFound)
}

// AssignAnchor attaches an anchor to a profile, replacing any existing
// assignment for the same pair.
func (s *MemoryStore) AssignAnchor(ctx context.Context, profileID int64, pa *anchor.ProfileAnchor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[profileID]; !ok {
		return NewStorageError("memory", "assign_anchor", ErrNotFound)
	}
	if _, ok := s.anchors[pa.AnchorID]; !ok {
		return NewStorageError("memory", "assign_anchor", ErrNotFound)
	}

	if s.assignments[profileID] == nil {
		s.assignments[profileID] = make(map[int64]*anchor.ProfileAnchor)
	}
	stored := *pa
	s.assignments[profileID][pa.AnchorID] = &stored
	return nil
}

// UnassignAnchor detaches an anchor from a profile.
func (s *MemoryStore) UnassignAnchor(ctx context.Context, profileID, anchorID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assignments[profileID][anchorID]; !ok {
		return NewStorageError("memory", "unassign_anchor", ErrNotFound)
	}
	delete(s.assignments[profileID], anchorID)
	return nil
}

// ListAssignments returns a profile's assignments ordered by priority, then
// anchor id.
func (s *MemoryStore) ListAssignments(ctx context.Context, profileID int64) ([]*anchor.ProfileAnchor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assignments := []*anchor.ProfileAnchor{}
	for _, pa := range s.assignments[profileID] {
		stored := *pa
		assignments = append(assignments, &stored)
	}
	sortAssignments(assignments)
	return assignments, nil
}

// AppendEvaluation atomically records a gate log, its trace and the trace's
// anchor snapshots.
func (s *MemoryStore) AppendEvaluation(ctx context.Context, log *audit.GateLog, trace *audit.Trace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.logsByID[log.ID]; ok {
		return NewStorageError("memory", "append_evaluation", ErrConflict)
	}
	if trace != nil {
		if _, ok := s.byTrace[trace.ID]; ok {
			return NewStorageError("memory", "append_evaluation", ErrConflict)
		}
	}

	logCopy := *log
	s.logs = append(s.logs, &logCopy)
	s.logsByID[log.ID] = &logCopy

	if trace != nil {
		traceCopy := *trace
		traceCopy.Anchors = make([]*audit.TraceAnchor, len(trace.Anchors))
		for i, ta := range trace.Anchors {
			taCopy := *ta
			traceCopy.Anchors[i] = &taCopy
		}
		s.traces = append(s.traces, &traceCopy)
		s.byTrace[trace.ID] = &traceCopy
		s.byLog[trace.LogID] = &traceCopy
	}
	return nil
}

// GetGateLog returns the gate log with the given id.
func (s *MemoryStore) GetGateLog(ctx context.Context, id string) (*audit.GateLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log, ok := s.logsByID[id]
	if !ok {
		return nil, NewStorageError("memory", "get_gate_log", ErrNotFound)
	}
	stored := *log
	return &stored, nil
}

// ListGateLogs returns gate logs matching the query, newest first.
func (s *MemoryStore) ListGateLogs(ctx context.Context, q *audit.LogQuery) ([]*audit.GateLog, error) {
	if q == nil {
		q = &audit.LogQuery{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Walk insertion order backwards for newest-first.
	matched := []*audit.GateLog{}
	for i := len(s.logs) - 1; i >= 0; i-- {
		log := s.logs[i]
		if q.Decision != "" && log.Decision != q.Decision {
			continue
		}
		if q.Since != nil && log.CreatedAt.Before(*q.Since) {
			continue
		}
		stored := *log
		matched = append(matched, &stored)
	}

	start := q.Offset
	if start > len(matched) {
		return []*audit.GateLog{}, nil
	}
	limit := 100
	if q.Limit > 0 {
		limit = q.Limit
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

// GetTrace returns the trace with the given id, anchor snapshots included.
func (s *MemoryStore) GetTrace(ctx context.Context, id string) (*audit.Trace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trace, ok := s.byTrace[id]
	if !ok {
		return nil, NewStorageError("memory", "get_trace", ErrNotFound)
	}
	return copyTrace(trace), nil
}

// GetTraceByLog returns the trace recorded alongside the given gate log.
func (s *MemoryStore) GetTraceByLog(ctx context.Context, logID string) (*audit.Trace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trace, ok := s.byLog[logID]
	if !ok {
		return nil, NewStorageError("memory", "get_trace_by_log", ErrNotFound)
	}
	return copyTrace(trace), nil
}

// ListTraceIDs returns ids of traces created at or after since, oldest first.
func (s *MemoryStore) ListTraceIDs(ctx context.Context, since time.Time, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	ids := []string{}
	for _, trace := range s.traces {
		if trace.CreatedAt.Before(since) {
			continue
		}
		ids = append(ids, trace.ID)
		if len(ids) >= limit {
			break
		}
	}
	return ids, nil
}

// Close is a no-op for the in-memory backend.
func (s *MemoryStore) Close() error {
	return nil
}

func copyTrace(trace *audit.Trace) *audit.Trace {
	stored := *trace
	stored.Anchors = make([]*audit.TraceAnchor, len(trace.Anchors))
	for i, ta := range trace.Anchors {
		taCopy := *ta
		stored.Anchors[i] = &taCopy
	}
	return &stored
}

func sortAssignments(assignments []*anchor.ProfileAnchor) {
	sort.Slice(assignments, func(i, j int) bool {
		if assignments[i].Priority != assignments[j].Priority {
			return assignments[i].Priority < assignments[j].Priority
		}
		return assignments[i].AnchorID < assignments[j].AnchorID
	})
}
