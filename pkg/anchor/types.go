package anchor

import (
	"fmt"
	"strings"
	"time"
)

// Severity levels for anchors. Level 3 is a hard boundary, level 1 advisory.
const (
	LevelAdvisory = 1
	LevelCaution  = 2
	LevelBoundary = 3
)

// DefaultScope is the scope assigned to anchors created without one.
const DefaultScope = "global"

// Anchor is a standing policy statement ("truth anchor").
type Anchor struct {
	// ID is the stable identifier, assigned by the store on creation and
	// immutable thereafter.
	ID int64 `json:"id" yaml:"id"`

	// Level is the severity level, 1 (advisory) to 3 (hard boundary).
	Level int `json:"level" yaml:"level"`

	// Statement is the free-text policy statement.
	Statement string `json:"statement" yaml:"statement"`

	// Scope is a namespace label (e.g. "payments", "filesystem").
	Scope string `json:"scope" yaml:"scope"`

	// Active is false once the anchor has been archived. Archival is
	// one-way; there is no unarchive path.
	Active bool `json:"active" yaml:"active"`

	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Validate checks the anchor's invariants before it reaches the store.
func (a *Anchor) Validate() error {
	if a.Level < LevelAdvisory || a.Level > LevelBoundary {
		return &ValidationError{Field: "level", Message: fmt.Sprintf("must be between %d and %d, got %d", LevelAdvisory, LevelBoundary, a.Level)}
	}
	if strings.TrimSpace(a.Statement) == "" {
		return &ValidationError{Field: "statement", Message: "must not be empty"}
	}
	return nil
}

// Profile is a named, ordered, enable/disable-able subset of anchors used to
// scope evaluation.
type Profile struct {
	// ID is the stable identifier assigned by the store.
	ID int64 `json:"id"`

	// Name is unique across profiles.
	Name string `json:"name"`

	// Description is free text.
	Description string `json:"description"`

	// Default marks the profile used when evaluation names none.
	// At most one profile may be default.
	Default bool `json:"is_default"`

	// ParentID optionally references a parent profile.
	ParentID *int64 `json:"parent_id,omitempty"`

	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the profile's invariants.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}
	return nil
}

// ProfileAnchor is one (anchor, priority, enabled) association owned by a
// profile. Priority defines match ordering when the profile scopes an
// evaluation; lower values sort first.
type ProfileAnchor struct {
	AnchorID int64 `json:"anchor_id"`
	Priority int   `json:"priority"`
	Enabled  bool  `json:"enabled"`
}

// ValidationError reports an invalid field on an anchor or profile. It is
// surfaced to callers before any store mutation happens.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [field=%s]: %s", e.Field, e.Message)
}
