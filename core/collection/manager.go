package collection

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"mod-manager/core/mods"

	"go.uber.org/zap"
)

// PackageSource is the read side of the package store.
type PackageSource interface {
	Get(id string) (*mods.Package, bool)
	Snapshot() map[string]*mods.Package
}

// Manager owns every collection, their persistence and background rebuilds.
type Manager struct {
	packages PackageSource
	merger   Merger
	repo     Repository
	logger   *zap.Logger

	rebuilder *Rebuilder
	router    *Router
	empty     *Collection

	// writeMu serializes mutations so a record is persisted before it is
	// visible in memory.
	writeMu     sync.Mutex
	mu          sync.RWMutex
	collections map[string]*Collection
}

// NewManager creates a manager. Call Load before use and Start to run
// background rebuilds.
func NewManager(cfg Config, packages PackageSource, merger Merger, repo Repository, logger *zap.Logger) *Manager {
	m := &Manager{
		packages:    packages,
		merger:      merger,
		repo:        repo,
		logger:      logger,
		empty:       Empty(),
		collections: make(map[string]*Collection),
	}
	m.rebuilder = NewRebuilder(cfg, m.backgroundBuild, logger)
	m.router = newRouter(m)
	return m
}

// Router returns the scope router backed by this manager.
func (m *Manager) Router() *Router {
	return m.router
}

// Start launches background rebuild workers and queues every dirty collection.
func (m *Manager) Start(ctx context.Context) {
	m.rebuilder.Start(ctx)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.collections {
		if c.State() != StateClean {
			m.rebuilder.Schedule(c)
		}
	}
}

// Stop stops background rebuilds.
func (m *Manager) Stop() {
	m.rebuilder.Stop()
}

// Load reads all collections and assignments from the repository. The
// default collection is created when missing.
func (m *Manager) Load(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	records, err := m.repo.LoadCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to load collections: %w", err)
	}

	loaded := make(map[string]*Collection, len(records))
	for _, rec := range records {
		if rec.Name == EmptyName {
			continue
		}
		loaded[rec.Name] = newCollection(rec.Name, cloneSettings(rec.Settings))
	}
	if _, ok := loaded[DefaultName]; !ok {
		if err := m.repo.SaveCollection(ctx, Record{Name: DefaultName, Settings: map[string]Settings{}}); err != nil {
			return fmt.Errorf("failed to create default collection: %w", err)
		}
		loaded[DefaultName] = newCollection(DefaultName, nil)
	}

	ids := m.packageIDs()
	for _, c := range loaded {
		c.observe(ids...)
	}

	m.mu.Lock()
	m.collections = loaded
	m.mu.Unlock()

	if err := m.router.load(ctx); err != nil {
		return err
	}
	m.logger.Info("Collections loaded", zap.Int("count", len(loaded)))
	return nil
}

func (m *Manager) packageIDs() []string {
	pkgs := m.packages.Snapshot()
	ids := make([]string, 0, len(pkgs))
	for id := range pkgs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// List returns the names of all collections except the empty one.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.collections))
	for name := range m.collections {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Get returns the named collection. EmptyName yields the empty collection.
func (m *Manager) Get(name string) (*Collection, error) {
	if name == EmptyName {
		return m.empty, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return c, nil
}

func (m *Manager) editable(name string) (*Collection, error) {
	if name == EmptyName {
		return nil, ErrEmptyCollection
	}
	return m.Get(name)
}

// Create adds a new collection. A non-empty copyFrom duplicates the settings
// of that collection.
func (m *Manager) Create(ctx context.Context, name, copyFrom string) (*Collection, error) {
	// names outlive the request buffer they may come from
	name = strings.Clone(strings.TrimSpace(name))
	if name == "" {
		return nil, fmt.Errorf("%w: collection name is empty", ErrInvalidName)
	}
	if name == EmptyName {
		return nil, fmt.Errorf("%w: %s", ErrCollectionExists, name)
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if _, err := m.Get(name); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrCollectionExists, name)
	}
	settings := make(map[string]Settings)
	if copyFrom != "" {
		src, err := m.Get(copyFrom)
		if err != nil {
			return nil, err
		}
		settings = src.AllSettings()
	}

	if err := m.repo.SaveCollection(ctx, Record{Name: name, Settings: settings}); err != nil {
		return nil, fmt.Errorf("failed to save collection %s: %w", name, err)
	}

	c := newCollection(name, settings)
	c.observe(m.packageIDs()...)
	m.mu.Lock()
	m.collections[name] = c
	m.mu.Unlock()

	m.logger.Info("Collection created", zap.String("collection", name), zap.String("copy_from", copyFrom))
	m.rebuilder.Schedule(c)
	return c, nil
}

// Delete removes a collection. Assignments that pointed at it fall back to
// the empty collection.
func (m *Manager) Delete(ctx context.Context, name string) error {
	switch name {
	case DefaultName:
		return ErrProtectedCollection
	case EmptyName:
		return ErrEmptyCollection
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if _, err := m.Get(name); err != nil {
		return err
	}
	// assignments move off the collection before it goes away, so no stored
	// assignment ever names a missing collection
	if err := m.router.collectionDeleted(ctx, name); err != nil {
		return err
	}
	if err := m.repo.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", name, err)
	}
	m.mu.Lock()
	delete(m.collections, name)
	m.mu.Unlock()

	m.logger.Info("Collection deleted", zap.String("collection", name))
	return nil
}

// update persists the result of fn applied to a copy of the collection's
// settings and installs it only when saving succeeded.
func (m *Manager) update(ctx context.Context, name string, fn func(map[string]Settings) error) (*Collection, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	// looked up under writeMu so a concurrent Delete cannot be undone by the save
	c, err := m.editable(name)
	if err != nil {
		return nil, err
	}

	settings := c.AllSettings()
	if err := fn(settings); err != nil {
		return nil, err
	}
	if err := m.repo.SaveCollection(ctx, Record{Name: c.Name(), Settings: settings}); err != nil {
		return nil, fmt.Errorf("failed to save collection %s: %w", c.Name(), err)
	}
	c.replaceSettings(settings)
	m.rebuilder.Schedule(c)
	return c, nil
}

func (m *Manager) requirePackage(id string) (*mods.Package, error) {
	pkg, ok := m.packages.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", mods.ErrPackageNotFound, id)
	}
	return pkg, nil
}

// settingsKey returns the id under which settings of pkg are stored. It is
// the package's own id, never the caller's string.
func settingsKey(pkg *mods.Package) string {
	return pkg.ID
}

// SetEnabled toggles a package in a collection.
func (m *Manager) SetEnabled(ctx context.Context, name, id string, enabled bool) error {
	pkg, err := m.requirePackage(id)
	if err != nil {
		return err
	}
	id = settingsKey(pkg)
	_, err = m.update(ctx, name, func(s map[string]Settings) error {
		cur := s[id]
		cur.Enabled = enabled
		s[id] = cur
		return nil
	})
	return err
}

// SetPriority changes the priority of a package in a collection.
func (m *Manager) SetPriority(ctx context.Context, name, id string, priority int) error {
	pkg, err := m.requirePackage(id)
	if err != nil {
		return err
	}
	id = settingsKey(pkg)
	_, err = m.update(ctx, name, func(s map[string]Settings) error {
		cur := s[id]
		cur.Priority = priority
		s[id] = cur
		return nil
	})
	return err
}

// SetOptions selects options of one group of a package in a collection.
func (m *Manager) SetOptions(ctx context.Context, name, id, group string, indices []int) error {
	pkg, err := m.requirePackage(id)
	if err != nil {
		return err
	}
	g, ok := pkg.Group(group)
	if !ok {
		return fmt.Errorf("%w: package %s has no group %q", ErrInvalidOption, id, group)
	}
	if g.Type == mods.SelectionSingle && len(indices) != 1 {
		return fmt.Errorf("%w: group %q takes exactly one option", ErrInvalidOption, group)
	}
	for _, idx := range indices {
		if idx < 0 || idx >= len(g.Options) {
			return fmt.Errorf("%w: group %q has no option %d", ErrInvalidOption, group, idx)
		}
	}

	id, group = settingsKey(pkg), g.Name
	selected := append([]int{}, indices...)
	sort.Ints(selected)
	_, err = m.update(ctx, name, func(s map[string]Settings) error {
		cur := s[id].Clone()
		if cur.Options == nil {
			cur.Options = make(map[string][]int)
		}
		cur.Options[group] = selected
		s[id] = cur
		return nil
	})
	return err
}

// Clean drops settings of packages that no longer exist and returns how many
// were removed.
func (m *Manager) Clean(ctx context.Context, name string) (int, error) {
	known := m.packages.Snapshot()
	removed := 0
	_, err := m.update(ctx, name, func(s map[string]Settings) error {
		for id := range s {
			if _, ok := known[id]; !ok {
				delete(s, id)
				removed++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Rebuild synchronously builds the collection regardless of its state.
func (m *Manager) Rebuild(ctx context.Context, name string) (*Snapshot, error) {
	c, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	return c.rebuild(ctx, m.packages.Snapshot, m.merger, true)
}

// Snapshot returns the last built snapshot of a collection without waiting.
// A dirty collection gets a background rebuild queued.
func (m *Manager) Snapshot(name string) (*Snapshot, error) {
	c, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	return m.snapshotOf(c), nil
}

func (m *Manager) snapshotOf(c *Collection) *Snapshot {
	if c.State() == StateDirty {
		m.rebuilder.Schedule(c)
	}
	return c.Snapshot()
}

func (m *Manager) backgroundBuild(ctx context.Context, c *Collection) {
	snap, err := c.rebuild(ctx, m.packages.Snapshot, m.merger, false)
	if err != nil {
		m.logger.Debug("Rebuild interrupted", zap.String("collection", c.Name()), zap.Error(err))
		return
	}
	for _, w := range snap.Warnings {
		m.logger.Warn("Collection build warning", zap.String("collection", c.Name()), zap.String("warning", w))
	}
	m.logger.Debug("Collection rebuilt",
		zap.String("collection", c.Name()),
		zap.Uint64("version", snap.Version),
		zap.Int("entries", len(snap.Entries)),
		zap.Int("conflicts", len(snap.Conflicts)+len(snap.TableConflicts)),
	)
}

// HandlePackageEvent keeps collections in line with the package store.
func (m *Manager) HandlePackageEvent(ev mods.Event) {
	m.mu.RLock()
	all := make([]*Collection, 0, len(m.collections))
	for _, c := range m.collections {
		all = append(all, c)
	}
	m.mu.RUnlock()

	switch ev.Type {
	case mods.EventAdded:
		for _, c := range all {
			c.observe(ev.ID)
			// settings kept from an earlier session
			if c.Settings(ev.ID).Enabled {
				c.MarkDirty()
				m.rebuilder.Schedule(c)
			}
		}
	case mods.EventRenamed:
		m.rekey(all, ev.OldID, ev.ID)
	case mods.EventReloaded, mods.EventRemoved:
		for _, c := range all {
			if !c.Settings(ev.ID).Enabled {
				continue
			}
			c.MarkDirty()
			m.rebuilder.Schedule(c)
		}
	}
}

func (m *Manager) rekey(all []*Collection, oldID, newID string) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	for _, c := range all {
		settings := c.AllSettings()
		s, ok := settings[oldID]
		if !ok {
			c.observe(newID)
			continue
		}
		delete(settings, oldID)
		settings[newID] = s
		if err := m.repo.SaveCollection(context.Background(), Record{Name: c.Name(), Settings: settings}); err != nil {
			m.logger.Error("Failed to persist renamed package settings",
				zap.String("collection", c.Name()), zap.String("package", newID), zap.Error(err))
		}
		c.replaceSettings(settings)
		m.rebuilder.Schedule(c)
	}
}
