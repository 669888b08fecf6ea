package collection

import (
	"context"
	"sort"
	"sync"
)

// Record is the persisted form of a collection.
type Record struct {
	Name     string
	Settings map[string]Settings
}

// Assignments maps request scopes to collection names.
type Assignments struct {
	Default string            `json:"default"`
	Forced  string            `json:"forced"`
	Actors  map[string]string `json:"actors"`
}

// Clone returns a deep copy.
func (a Assignments) Clone() Assignments {
	out := Assignments{Default: a.Default, Forced: a.Forced, Actors: make(map[string]string, len(a.Actors))}
	for actor, name := range a.Actors {
		out.Actors[actor] = name
	}
	return out
}

// Repository persists collections and router assignments.
type Repository interface {
	LoadCollections(ctx context.Context) ([]Record, error)
	SaveCollection(ctx context.Context, rec Record) error
	DeleteCollection(ctx context.Context, name string) error
	LoadAssignments(ctx context.Context) (Assignments, error)
	SaveAssignments(ctx context.Context, a Assignments) error
}

// MemoryRepository keeps everything in process memory.
type MemoryRepository struct {
	mu          sync.Mutex
	collections map[string]Record
	assignments *Assignments
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{collections: make(map[string]Record)}
}

func (r *MemoryRepository) LoadCollections(_ context.Context) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, 0, len(r.collections))
	for _, rec := range r.collections {
		out = append(out, Record{Name: rec.Name, Settings: cloneSettings(rec.Settings)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepository) SaveCollection(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[rec.Name] = Record{Name: rec.Name, Settings: cloneSettings(rec.Settings)}
	return nil
}

func (r *MemoryRepository) DeleteCollection(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.collections, name)
	return nil
}

func (r *MemoryRepository) LoadAssignments(_ context.Context) (Assignments, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.assignments == nil {
		return Assignments{Default: DefaultName, Forced: EmptyName, Actors: map[string]string{}}, nil
	}
	return r.assignments.Clone(), nil
}

func (r *MemoryRepository) SaveAssignments(_ context.Context, a Assignments) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := a.Clone()
	r.assignments = &c
	return nil
}
