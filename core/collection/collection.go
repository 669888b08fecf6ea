package collection

import (
	"context"
	"sync"
	"sync/atomic"

	"mod-manager/core/mods"
)

const (
	// DefaultName is the collection that always exists and cannot be deleted.
	DefaultName = "Default"
	// EmptyName is the sentinel collection that never has any entries.
	EmptyName = "None"
)

// State is the build state of a collection.
type State int32

const (
	StateClean State = iota
	StateDirty
	StateBuilding
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	case StateBuilding:
		return "building"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Collection owns the package settings of one profile and its last built
// snapshot. Readers only ever see complete snapshots.
type Collection struct {
	name  string
	empty bool

	mu         sync.Mutex
	settings   map[string]Settings
	generation uint64
	state      State
	version    uint64

	buildMu  sync.Mutex
	snapshot atomic.Pointer[Snapshot]
}

func newCollection(name string, settings map[string]Settings) *Collection {
	if settings == nil {
		settings = make(map[string]Settings)
	}
	c := &Collection{name: name, settings: settings, state: StateDirty}
	c.snapshot.Store(emptySnapshot(name))
	return c
}

// Empty returns the sentinel collection: permanently clean, never built.
func Empty() *Collection {
	c := &Collection{name: EmptyName, empty: true, settings: map[string]Settings{}, state: StateClean}
	c.snapshot.Store(emptySnapshot(EmptyName))
	return c
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// IsEmpty reports whether c is the sentinel collection.
func (c *Collection) IsEmpty() bool { return c.empty }

// State returns the current build state.
func (c *Collection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the last completed snapshot without blocking.
func (c *Collection) Snapshot() *Snapshot {
	return c.snapshot.Load()
}

// Settings returns the settings for a package; unseen packages are disabled
// with priority 0.
func (c *Collection) Settings(id string) Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings[id].Clone()
}

// AllSettings returns a copy of every stored setting.
func (c *Collection) AllSettings() map[string]Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneSettings(c.settings)
}

// replaceSettings installs settings and marks the collection dirty.
func (c *Collection) replaceSettings(settings map[string]Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = settings
	c.markDirtyLocked()
}

// observe adds default settings for packages the collection has not seen.
func (c *Collection) observe(ids ...string) {
	if c.empty {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		if _, ok := c.settings[id]; !ok {
			c.settings[id] = Settings{}
		}
	}
}

// MarkDirty invalidates the current snapshot.
func (c *Collection) MarkDirty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.markDirtyLocked()
}

func (c *Collection) markDirtyLocked() {
	if c.empty {
		return
	}
	c.generation++
	if c.state == StateClean {
		c.state = StateDirty
	}
}

// rebuild builds a new snapshot if the collection is not clean. Builds of the
// same collection never overlap; a mutation that lands during a build leaves
// the collection dirty afterwards.
func (c *Collection) rebuild(ctx context.Context, packages func() map[string]*mods.Package, merger Merger, force bool) (*Snapshot, error) {
	if c.empty {
		return c.Snapshot(), nil
	}
	c.buildMu.Lock()
	defer c.buildMu.Unlock()

	c.mu.Lock()
	if c.state == StateClean && !force {
		c.mu.Unlock()
		return c.Snapshot(), nil
	}
	gen := c.generation
	settings := cloneSettings(c.settings)
	c.state = StateBuilding
	c.mu.Unlock()

	snap := Build(ctx, c.name, packages(), settings, merger)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		c.state = StateDirty
		return c.Snapshot(), err
	}
	c.version++
	snap.Version = c.version
	c.snapshot.Store(snap)
	if c.generation == gen {
		c.state = StateClean
	} else {
		c.state = StateDirty
	}
	return snap, nil
}
