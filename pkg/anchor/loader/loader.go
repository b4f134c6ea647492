package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"gatewright-hq/gatewright/pkg/anchor"
	"gatewright-hq/gatewright/pkg/store"
)

// SeedFile is the YAML seed file layout.
type SeedFile struct {
	Anchors  []SeedAnchor  `yaml:"anchors"`
	Profiles []SeedProfile `yaml:"profiles"`
}

// SeedAnchor is one anchor entry.
type SeedAnchor struct {
	Level     int    `yaml:"level"`
	Statement string `yaml:"statement"`
	Scope     string `yaml:"scope"`
}

// SeedProfile is one profile entry. Anchor references resolve by
// (scope, statement); priority is list order.
type SeedProfile struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Default     bool            `yaml:"default"`
	Parent      string          `yaml:"parent"`
	Anchors     []SeedAnchorRef `yaml:"anchors"`
}

// SeedAnchorRef references an anchor from a profile entry.
type SeedAnchorRef struct {
	Statement string `yaml:"statement"`
	Scope     string `yaml:"scope"`
}

// Result summarizes one load.
type Result struct {
	AnchorsCreated  int
	AnchorsExisting int
	ProfilesCreated int
	Assignments     int
}

// Loader applies seed files to a store.
type Loader struct {
	store  store.Store
	logger *slog.Logger
}

// New creates a loader.
func New(st store.Store) *Loader {
	return &Loader{
		store:  st,
		logger: slog.Default().With("component", "anchor.loader"),
	}
}

// LoadFile reads and applies a seed file. Re-running against the same store
// is a no-op for everything that already exists.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	result, err := l.apply(ctx, &seed)
	if err != nil {
		return nil, err
	}

	l.logger.Info("seed file applied",
		"path", path,
		"anchors_created", result.AnchorsCreated,
		"anchors_existing", result.AnchorsExisting,
		"profiles_created", result.ProfilesCreated,
		"assignments", result.Assignments,
	)
	return result, nil
}

func (l *Loader) apply(ctx context.Context, seed *SeedFile) (*Result, error) {
	result := &Result{}

	for i := range seed.Anchors {
		entry := seed.Anchors[i]
		if entry.Scope == "" {
			entry.Scope = anchor.DefaultScope
		}

		a := &anchor.Anchor{Level: entry.Level, Statement: entry.Statement, Scope: entry.Scope}
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("seed anchor %d: %w", i, err)
		}

		_, err := l.store.FindAnchorByStatement(ctx, entry.Scope, entry.Statement)
		if err == nil {
			result.AnchorsExisting++
			continue
		}
		if !store.IsNotFound(err) {
			return nil, err
		}
		if err := l.store.CreateAnchor(ctx, a); err != nil {
			return nil, err
		}
		result.AnchorsCreated++
	}

	for i := range seed.Profiles {
		entry := seed.Profiles[i]
		p, created, err := l.ensureProfile(ctx, &entry)
		if err != nil {
			return nil, fmt.Errorf("seed profile %d (%s): %w", i, entry.Name, err)
		}
		if created {
			result.ProfilesCreated++
		}

		for pos, ref := range entry.Anchors {
			scope := ref.Scope
			if scope == "" {
				scope = anchor.DefaultScope
			}
			a, err := l.store.FindAnchorByStatement(ctx, scope, ref.Statement)
			if err != nil {
				return nil, fmt.Errorf("profile %s references unknown anchor %q in scope %q: %w",
					entry.Name, ref.Statement, scope, err)
			}
			pa := &anchor.ProfileAnchor{AnchorID: a.ID, Priority: pos, Enabled: true}
			if err := l.store.AssignAnchor(ctx, p.ID, pa); err != nil {
				return nil, err
			}
			result.Assignments++
		}
	}

	return result, nil
}

func (l *Loader) ensureProfile(ctx context.Context, entry *SeedProfile) (*anchor.Profile, bool, error) {
	existing, err := l.store.GetProfileByName(ctx, entry.Name)
	if err == nil {
		return existing, false, nil
	}
	if !store.IsNotFound(err) {
		return nil, false, err
	}

	p := &anchor.Profile{
		Name:        entry.Name,
		Description: entry.Description,
		Default:     entry.Default,
	}
	if entry.Parent != "" {
		parent, err := l.store.GetProfileByName(ctx, entry.Parent)
		if err != nil {
			return nil, false, fmt.Errorf("unknown parent profile %q: %w", entry.Parent, err)
		}
		p.ParentID = &parent.ID
	}
	if err := p.Validate(); err != nil {
		return nil, false, err
	}
	if err := l.store.CreateProfile(ctx, p); err != nil {
		return nil, false, err
	}
	return p, true, nil
}
