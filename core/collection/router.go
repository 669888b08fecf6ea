package collection

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"mod-manager/core/gamedata"
)

// Scope tells which assignment answered a lookup.
type Scope string

const (
	ScopeActor   Scope = "actor"
	ScopeDefault Scope = "default"
	ScopeForced  Scope = "forced"
)

// Resolution is the answer to one lookup.
type Resolution struct {
	Path       gamedata.GamePath `json:"path"`
	Collection string            `json:"collection"`
	Scope      Scope             `json:"scope"`
	Entry      Entry             `json:"entry"`
}

// Router selects the collection that answers a request. The order is the
// actor's collection, then Default, then Forced.
type Router struct {
	m *Manager

	mu          sync.RWMutex
	assignments Assignments
}

func newRouter(m *Manager) *Router {
	return &Router{
		m:           m,
		assignments: Assignments{Default: DefaultName, Forced: EmptyName, Actors: map[string]string{}},
	}
}

func (r *Router) load(ctx context.Context) error {
	a, err := r.m.repo.LoadAssignments(ctx)
	if err != nil {
		return fmt.Errorf("failed to load assignments: %w", err)
	}
	if a.Actors == nil {
		a.Actors = map[string]string{}
	}
	// names that no longer exist fall back to the empty collection
	known := func(name string) string {
		if name == "" {
			return EmptyName
		}
		if _, err := r.m.Get(name); err != nil {
			return EmptyName
		}
		return name
	}
	a.Default = known(a.Default)
	a.Forced = known(a.Forced)
	for actor, name := range a.Actors {
		a.Actors[actor] = known(name)
	}

	r.mu.Lock()
	r.assignments = a
	r.mu.Unlock()
	return nil
}

// Assignments returns a copy of the current assignments.
func (r *Router) Assignments() Assignments {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.assignments.Clone()
}

func (r *Router) set(ctx context.Context, fn func(*Assignments) error) error {
	r.m.writeMu.Lock()
	defer r.m.writeMu.Unlock()

	next := r.Assignments()
	if err := fn(&next); err != nil {
		return err
	}
	if err := r.m.repo.SaveAssignments(ctx, next); err != nil {
		return fmt.Errorf("failed to save assignments: %w", err)
	}
	r.mu.Lock()
	r.assignments = next
	r.mu.Unlock()
	return nil
}

// canonical returns the stored name of collection name. Callers hold the
// manager's write lock so the collection cannot vanish before it is assigned.
func (r *Router) canonical(name string) (string, error) {
	c, err := r.m.Get(name)
	if err != nil {
		return "", err
	}
	return c.Name(), nil
}

// SetDefault assigns the collection used for every request.
func (r *Router) SetDefault(ctx context.Context, name string) error {
	return r.set(ctx, func(a *Assignments) error {
		n, err := r.canonical(name)
		a.Default = n
		return err
	})
}

// SetForced assigns the collection consulted after Default.
func (r *Router) SetForced(ctx context.Context, name string) error {
	return r.set(ctx, func(a *Assignments) error {
		n, err := r.canonical(name)
		a.Forced = n
		return err
	})
}

// SetActor assigns a collection to one actor.
func (r *Router) SetActor(ctx context.Context, actor, name string) error {
	// actor keys outlive the request buffer they may come from
	actor = strings.Clone(strings.TrimSpace(actor))
	if actor == "" {
		return fmt.Errorf("%w: actor name is empty", ErrInvalidName)
	}
	return r.set(ctx, func(a *Assignments) error {
		n, err := r.canonical(name)
		if err != nil {
			return err
		}
		a.Actors[actor] = n
		return nil
	})
}

// RemoveActor drops the assignment of one actor.
func (r *Router) RemoveActor(ctx context.Context, actor string) error {
	return r.set(ctx, func(a *Assignments) error {
		delete(a.Actors, actor)
		return nil
	})
}

// collectionDeleted points every assignment of name at the empty collection.
// The caller holds the manager's write lock.
func (r *Router) collectionDeleted(ctx context.Context, name string) error {
	next := r.Assignments()
	changed := false
	if next.Default == name {
		next.Default, changed = EmptyName, true
	}
	if next.Forced == name {
		next.Forced, changed = EmptyName, true
	}
	for actor, n := range next.Actors {
		if n == name {
			next.Actors[actor], changed = EmptyName, true
		}
	}
	if !changed {
		return nil
	}
	if err := r.m.repo.SaveAssignments(ctx, next); err != nil {
		return fmt.Errorf("failed to save assignments: %w", err)
	}
	r.mu.Lock()
	r.assignments = next
	r.mu.Unlock()
	return nil
}

// Resolve returns the override for path as seen by actor. An empty actor
// skips the actor scope. The second result is false when the base asset
// should be served unmodified. Resolve never waits for a rebuild.
func (r *Router) Resolve(path gamedata.GamePath, actor string) (Resolution, bool) {
	a := r.Assignments()

	type scoped struct {
		scope Scope
		name  string
	}
	order := make([]scoped, 0, 3)
	if actor != "" {
		if name, ok := a.Actors[actor]; ok {
			order = append(order, scoped{ScopeActor, name})
		}
	}
	order = append(order, scoped{ScopeDefault, a.Default}, scoped{ScopeForced, a.Forced})

	for _, s := range order {
		c, err := r.m.Get(s.name)
		if err != nil {
			continue
		}
		if entry, ok := r.m.snapshotOf(c).Lookup(path); ok {
			return Resolution{Path: path, Collection: s.name, Scope: s.scope, Entry: entry}, true
		}
	}
	return Resolution{Path: path}, false
}

// Table returns the synthesized blob for a table path as seen by actor.
func (r *Router) Table(path gamedata.GamePath, actor string) ([]byte, Resolution, bool) {
	res, ok := r.Resolve(path, actor)
	if !ok || res.Entry.Kind != EntryTable {
		return nil, res, false
	}
	return res.Entry.Blob, res, true
}
