package collections

import (
	"context"
	"time"

	"mod-manager/core/collection"
	"mod-manager/core/resolve"

	"go.uber.org/zap"
)

// Summary describes a collection and its last built snapshot.
type Summary struct {
	Name        string           `json:"name"`
	State       collection.State `json:"state"`
	Version     uint64           `json:"version"`
	BuiltAt     time.Time        `json:"built_at"`
	Entries     int              `json:"entries"`
	Conflicts   int              `json:"conflicts"`
	Warnings    []string         `json:"warnings,omitempty"`
	Fingerprint uint64           `json:"fingerprint"`
}

// Detail is a Summary plus the per-package settings.
type Detail struct {
	Summary
	Settings map[string]collection.Settings `json:"settings"`
}

// ConflictReport splits the conflicts of a snapshot.
type ConflictReport struct {
	Collection      string             `json:"collection"`
	Version         uint64             `json:"version"`
	Resolved        []resolve.Conflict `json:"resolved"`
	Unresolved      []resolve.Conflict `json:"unresolved"`
	TableResolved   []resolve.Conflict `json:"table_resolved"`
	TableUnresolved []resolve.Conflict `json:"table_unresolved"`
}

// ModUpdate changes the settings of one package. Nil fields are left alone.
type ModUpdate struct {
	Enabled  *bool            `json:"enabled"`
	Priority *int             `json:"priority"`
	Options  map[string][]int `json:"options"`
}

// Service exposes collection management to the HTTP layer and the CLI.
type Service struct {
	manager *collection.Manager
	logger  *zap.Logger
}

// NewService creates a new collections service.
func NewService(manager *collection.Manager, logger *zap.Logger) *Service {
	return &Service{manager: manager, logger: logger}
}

func summarize(c *collection.Collection, snap *collection.Snapshot) Summary {
	return Summary{
		Name:        c.Name(),
		State:       c.State(),
		Version:     snap.Version,
		BuiltAt:     snap.BuiltAt,
		Entries:     len(snap.Entries),
		Conflicts:   len(snap.Conflicts) + len(snap.TableConflicts),
		Warnings:    snap.Warnings,
		Fingerprint: snap.Fingerprint,
	}
}

// List summarizes every collection.
func (s *Service) List() ([]Summary, error) {
	names := s.manager.List()
	out := make([]Summary, 0, len(names))
	for _, name := range names {
		c, err := s.manager.Get(name)
		if err != nil {
			// deleted concurrently
			continue
		}
		snap, err := s.manager.Snapshot(name)
		if err != nil {
			continue
		}
		out = append(out, summarize(c, snap))
	}
	return out, nil
}

// Get returns a collection with its settings.
func (s *Service) Get(name string) (*Detail, error) {
	c, err := s.manager.Get(name)
	if err != nil {
		return nil, err
	}
	snap, err := s.manager.Snapshot(name)
	if err != nil {
		return nil, err
	}
	return &Detail{Summary: summarize(c, snap), Settings: c.AllSettings()}, nil
}

// Create adds a collection, optionally copying another one.
func (s *Service) Create(ctx context.Context, name, copyFrom string) (*Detail, error) {
	c, err := s.manager.Create(ctx, name, copyFrom)
	if err != nil {
		return nil, err
	}
	return &Detail{Summary: summarize(c, c.Snapshot()), Settings: c.AllSettings()}, nil
}

// Delete removes a collection.
func (s *Service) Delete(ctx context.Context, name string) error {
	return s.manager.Delete(ctx, name)
}

// UpdateMod applies the set fields of u to one package.
func (s *Service) UpdateMod(ctx context.Context, name, id string, u ModUpdate) (collection.Settings, error) {
	if u.Enabled != nil {
		if err := s.manager.SetEnabled(ctx, name, id, *u.Enabled); err != nil {
			return collection.Settings{}, err
		}
	}
	if u.Priority != nil {
		if err := s.manager.SetPriority(ctx, name, id, *u.Priority); err != nil {
			return collection.Settings{}, err
		}
	}
	for group, indices := range u.Options {
		if err := s.manager.SetOptions(ctx, name, id, group, indices); err != nil {
			return collection.Settings{}, err
		}
	}
	c, err := s.manager.Get(name)
	if err != nil {
		return collection.Settings{}, err
	}
	return c.Settings(id), nil
}

// Clean drops settings of packages that no longer exist.
func (s *Service) Clean(ctx context.Context, name string) (int, error) {
	removed, err := s.manager.Clean(ctx, name)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Collection cleaned", zap.String("collection", name), zap.Int("removed", removed))
	return removed, nil
}

// Rebuild builds a collection now and returns the new summary.
func (s *Service) Rebuild(ctx context.Context, name string) (*Summary, error) {
	c, err := s.manager.Get(name)
	if err != nil {
		return nil, err
	}
	snap, err := s.manager.Rebuild(ctx, name)
	if err != nil {
		return nil, err
	}
	sum := summarize(c, snap)
	return &sum, nil
}

// Conflicts returns the conflict report of the last built snapshot.
func (s *Service) Conflicts(name string) (*ConflictReport, error) {
	snap, err := s.manager.Snapshot(name)
	if err != nil {
		return nil, err
	}
	report := &ConflictReport{Collection: name, Version: snap.Version}
	report.Resolved, report.Unresolved = resolve.Partition(snap.Conflicts)
	report.TableResolved, report.TableUnresolved = resolve.Partition(snap.TableConflicts)
	return report, nil
}

// Assignments returns the router assignments.
func (s *Service) Assignments() collection.Assignments {
	return s.manager.Router().Assignments()
}

// Assign sets the collection of a scope: "default", "forced" or an actor.
func (s *Service) Assign(ctx context.Context, scope, actor, name string) error {
	router := s.manager.Router()
	switch scope {
	case scopeDefault:
		return router.SetDefault(ctx, name)
	case scopeForced:
		return router.SetForced(ctx, name)
	default:
		return router.SetActor(ctx, actor, name)
	}
}

// Unassign drops the assignment of an actor.
func (s *Service) Unassign(ctx context.Context, actor string) error {
	return s.manager.Router().RemoveActor(ctx, actor)
}
