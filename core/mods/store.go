package mods

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"mod-manager/core/meta"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrPackageNotFound is returned when no package has the requested id.
	ErrPackageNotFound = errors.New("package not found")
	// ErrPackageExists is returned when a rename target is already taken.
	ErrPackageExists = errors.New("package already exists")
	// ErrInvalidID is returned for ids that are not a single folder name.
	ErrInvalidID = errors.New("invalid package id")
)

// EventType describes a change of the package set.
type EventType string

const (
	EventAdded    EventType = "added"
	EventRemoved  EventType = "removed"
	EventRenamed  EventType = "renamed"
	EventReloaded EventType = "reloaded"
)

// Event is sent to subscribers after the store changed.
type Event struct {
	Type EventType
	ID   string
	// OldID is set for renames.
	OldID string
}

// DiscoveryReport summarizes one Discover pass.
type DiscoveryReport struct {
	Loaded   int                 `json:"loaded"`
	Errors   []*DiscoveryError   `json:"-"`
	Warnings map[string][]string `json:"warnings,omitempty"`
}

// Failed returns the messages of all skipped folders.
func (r *DiscoveryReport) Failed() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Error())
	}
	return out
}

// NoOpChecker reports whether an edit leaves the base table unchanged.
type NoOpChecker interface {
	CheckNoOp(ctx context.Context, edit meta.TableEdit) bool
}

// Store holds the loaded packages of one base directory.
type Store struct {
	dir     string
	workers int
	logger  *zap.Logger

	mu       sync.RWMutex
	packages map[string]*Package

	subMu       sync.RWMutex
	subscribers []func(Event)
}

// NewStore creates an empty store over cfg.Directory.
func NewStore(cfg Config, logger *zap.Logger) *Store {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	return &Store{
		dir:      cfg.Directory,
		workers:  workers,
		logger:   logger,
		packages: make(map[string]*Package),
	}
}

// Dir returns the base directory.
func (s *Store) Dir() string {
	return s.dir
}

// Subscribe registers fn to receive every later event. Events are delivered
// synchronously after the store lock is released.
func (s *Store) Subscribe(fn func(Event)) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) publish(events ...Event) {
	s.subMu.RLock()
	subs := slices.Clone(s.subscribers)
	s.subMu.RUnlock()
	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}

// Discover loads every folder of the base directory, replacing the current
// package set. Folders that fail to load are skipped and reported.
func (s *Store) Discover(ctx context.Context) (*DiscoveryReport, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read mod directory %s: %w", s.dir, err)
	}

	report := &DiscoveryReport{Warnings: make(map[string][]string)}
	loaded := make(map[string]*Package)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		dir := filepath.Join(s.dir, entry.Name())
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pkg, warnings, err := LoadPackage(dir)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				var de *DiscoveryError
				if !errors.As(err, &de) {
					de = &DiscoveryError{Package: filepath.Base(dir), Err: err}
				}
				report.Errors = append(report.Errors, de)
				return nil
			}
			loaded[pkg.ID] = pkg
			if len(warnings) > 0 {
				report.Warnings[pkg.ID] = pkg.Warnings
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(report.Errors, func(i, j int) bool { return report.Errors[i].Package < report.Errors[j].Package })
	for _, de := range report.Errors {
		s.logger.Warn("Skipping package", zap.String("package", de.Package), zap.Error(de.Err))
	}
	for id, warnings := range report.Warnings {
		for _, w := range warnings {
			s.logger.Warn("Dropped package association", zap.String("package", id), zap.String("error", w))
		}
	}
	report.Loaded = len(loaded)

	s.mu.Lock()
	var events []Event
	for id := range s.packages {
		if _, ok := loaded[id]; !ok {
			events = append(events, Event{Type: EventRemoved, ID: id})
		}
	}
	for id := range loaded {
		if _, ok := s.packages[id]; ok {
			events = append(events, Event{Type: EventReloaded, ID: id})
		} else {
			events = append(events, Event{Type: EventAdded, ID: id})
		}
	}
	s.packages = loaded
	s.mu.Unlock()

	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	s.publish(events...)

	s.logger.Info("Packages discovered",
		zap.Int("loaded", report.Loaded),
		zap.Int("failed", len(report.Errors)),
	)
	return report, nil
}

// Reload re-reads a single package folder. A folder that no longer exists
// removes the package.
func (s *Store) Reload(ctx context.Context, id string) (*Package, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := filepath.Join(s.dir, id)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		s.mu.Lock()
		_, existed := s.packages[id]
		delete(s.packages, id)
		s.mu.Unlock()
		if existed {
			s.publish(Event{Type: EventRemoved, ID: id})
		}
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, id)
	}

	pkg, warnings, err := LoadPackage(dir)
	if err != nil {
		s.logger.Warn("Failed to reload package", zap.String("package", id), zap.Error(err))
		return nil, err
	}
	for _, w := range warnings {
		s.logger.Warn("Dropped package association", zap.String("package", id), zap.Error(w))
	}

	// keyed by the loaded id, which does not share memory with the caller's
	id = pkg.ID
	s.mu.Lock()
	_, existed := s.packages[id]
	s.packages[id] = pkg
	s.mu.Unlock()

	if existed {
		s.publish(Event{Type: EventReloaded, ID: id})
	} else {
		s.publish(Event{Type: EventAdded, ID: id})
	}
	return pkg, nil
}

// Get returns the package with id. The record must not be modified.
func (s *Store) Get(id string) (*Package, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pkg, ok := s.packages[id]
	return pkg, ok
}

// List returns all packages ordered by id.
func (s *Store) List() []*Package {
	s.mu.RLock()
	out := make([]*Package, 0, len(s.packages))
	for _, pkg := range s.packages {
		out = append(out, pkg)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Snapshot returns the current package set keyed by id.
func (s *Store) Snapshot() map[string]*Package {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*Package, len(s.packages))
	for id, pkg := range s.packages {
		out[id] = pkg
	}
	return out
}

// Remove deletes the package folder and forgets the package.
func (s *Store) Remove(id string) error {
	if err := validID(id); err != nil {
		return err
	}
	s.mu.Lock()
	pkg, ok := s.packages[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrPackageNotFound, id)
	}
	if err := os.RemoveAll(pkg.Dir); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to remove package folder: %w", err)
	}
	delete(s.packages, id)
	s.mu.Unlock()

	s.logger.Info("Package removed", zap.String("package", pkg.ID))
	s.publish(Event{Type: EventRemoved, ID: pkg.ID})
	return nil
}

// Rename moves the package folder to newID.
func (s *Store) Rename(id, newID string) (*Package, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	if err := validID(newID); err != nil {
		return nil, err
	}
	if id == newID {
		pkg, ok := s.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, id)
		}
		return pkg, nil
	}

	s.mu.Lock()
	old, ok := s.packages[id]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, id)
	}
	newDir := filepath.Join(s.dir, newID)
	if _, taken := s.packages[newID]; taken {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrPackageExists, newID)
	}
	if _, err := os.Stat(newDir); err == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrPackageExists, newID)
	}
	if err := os.Rename(old.Dir, newDir); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to rename package folder: %w", err)
	}

	pkg, _, err := LoadPackage(newDir)
	if err != nil {
		delete(s.packages, id)
		s.mu.Unlock()
		s.publish(Event{Type: EventRemoved, ID: id})
		return nil, err
	}
	newID = pkg.ID
	delete(s.packages, id)
	s.packages[newID] = pkg
	s.mu.Unlock()

	s.logger.Info("Package renamed", zap.String("package", newID), zap.String("old", id))
	s.publish(Event{Type: EventRenamed, ID: newID, OldID: id})
	return pkg, nil
}

// SaveEdits replaces the default table edits of a package on disk and
// reloads it.
func (s *Store) SaveEdits(ctx context.Context, id string, edits []meta.TableEdit) (*Package, error) {
	pkg, ok := s.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, id)
	}
	for _, e := range edits {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("edit %s: %w", e.Field(), err)
		}
	}
	if edits == nil {
		edits = []meta.TableEdit{}
	}
	data, err := json.MarshalIndent(edits, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode edits: %w", err)
	}
	if err := os.WriteFile(filepath.Join(pkg.Dir, EditsFile), data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", EditsFile, err)
	}
	return s.Reload(ctx, id)
}

// PruneNoOpEdits drops every default edit of a package that equals the base
// value and persists the remaining ones. It returns the number of dropped edits.
func (s *Store) PruneNoOpEdits(ctx context.Context, id string, checker NoOpChecker) (int, error) {
	pkg, ok := s.Get(id)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrPackageNotFound, id)
	}
	var kept []meta.TableEdit
	for _, e := range pkg.Default.Edits {
		if checker.CheckNoOp(ctx, e) {
			continue
		}
		kept = append(kept, e)
	}
	removed := len(pkg.Default.Edits) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if _, err := s.SaveEdits(ctx, id, kept); err != nil {
		return 0, err
	}
	s.logger.Info("Pruned no-op edits", zap.String("package", id), zap.Int("removed", removed))
	return removed, nil
}

func validID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
