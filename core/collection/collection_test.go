package collection

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"mod-manager/core/gamedata"
	"mod-manager/core/meta"
	"mod-manager/core/metafile"
	"mod-manager/core/mods"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type baseTables map[gamedata.GamePath][]byte

func (b baseTables) FetchTable(_ context.Context, p gamedata.GamePath) ([]byte, error) {
	data, ok := b[p]
	if !ok {
		return nil, errors.New("missing base table")
	}
	return data, nil
}

type packageSet struct {
	mu   sync.RWMutex
	pkgs map[string]*mods.Package
}

func (s *packageSet) Get(id string) (*mods.Package, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pkgs[id]
	return p, ok
}

func (s *packageSet) Snapshot() map[string]*mods.Package {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*mods.Package, len(s.pkgs))
	for id, p := range s.pkgs {
		out[id] = p
	}
	return out
}

var hairKey = gamedata.EqdpPath(gamedata.SlotHair, 101)

func hairBit(entry uint16) meta.TableEdit {
	return meta.NewEqdpEdit(meta.EqdpEdit{SetID: 42, Slot: gamedata.SlotHair, GenderRace: 101, Entry: entry})
}

func testEngine() *meta.Engine {
	base := baseTables{hairKey: metafile.NewEqdpFile(101, 0, 4).Bytes()}
	return meta.NewEngine(meta.NewDefaultCache(base), zap.NewNop())
}

func filePackage(id string, paths ...string) *mods.Package {
	files := make(map[gamedata.GamePath]gamedata.RelPath)
	for _, p := range paths {
		files[gamedata.GamePath(p)] = gamedata.RelPath(id + ".tex")
	}
	return &mods.Package{ID: id, Dir: filepath.Join("mods", id), Name: id, Default: mods.Contribution{Files: files}}
}

func editPackage(id string, edits ...meta.TableEdit) *mods.Package {
	return &mods.Package{ID: id, Dir: filepath.Join("mods", id), Name: id, Default: mods.Contribution{Edits: edits}}
}

func TestBuild_HairConflict(t *testing.T) {
	packages := map[string]*mods.Package{
		"RedHair": editPackage("RedHair", hairBit(1<<10)),
		"NoHair":  editPackage("NoHair", hairBit(0)),
	}
	settings := map[string]Settings{
		"RedHair": {Enabled: true, Priority: 10},
		"NoHair":  {Enabled: true, Priority: 1},
	}

	snap := Build(context.Background(), "X", packages, settings, testEngine())

	entry, ok := snap.Lookup(hairKey)
	require.True(t, ok)
	assert.Equal(t, EntryTable, entry.Kind)
	assert.Equal(t, []string{"RedHair"}, entry.Packages)
	table, err := metafile.ParseEqdp(entry.Blob)
	require.NoError(t, err)
	assert.Equal(t, uint16(1<<10), table.Entry(42))

	require.Len(t, snap.TableConflicts, 1)
	c := snap.TableConflicts[0]
	assert.Equal(t, hairBit(0).Field(), c.Key)
	assert.Equal(t, "RedHair", c.Winner)
	assert.Equal(t, []string{"NoHair"}, c.Losers)
	assert.Equal(t, "resolved", string(c.Status))
	assert.Empty(t, snap.Warnings)
}

func TestBuild_NoOpWinnerSynthesizesNothing(t *testing.T) {
	packages := map[string]*mods.Package{
		"RedHair": editPackage("RedHair", hairBit(1<<10)),
		"NoHair":  editPackage("NoHair", hairBit(0)),
	}
	settings := map[string]Settings{
		"RedHair": {Enabled: true, Priority: 1},
		"NoHair":  {Enabled: true, Priority: 10},
	}

	snap := Build(context.Background(), "X", packages, settings, testEngine())
	_, ok := snap.Lookup(hairKey)
	assert.False(t, ok)
	require.Len(t, snap.TableConflicts, 1)
	assert.Equal(t, "NoHair", snap.TableConflicts[0].Winner)
}

func TestBuild_MissingBaseTableIsWarning(t *testing.T) {
	other := meta.NewEqdpEdit(meta.EqdpEdit{SetID: 3, Slot: gamedata.SlotBody, GenderRace: 1401, Entry: 1 << 2})
	packages := map[string]*mods.Package{
		"A": editPackage("A", other, hairBit(1<<10)),
		"B": filePackage("B", "chara/b.tex"),
	}
	settings := map[string]Settings{"A": {Enabled: true}, "B": {Enabled: true}}

	snap := Build(context.Background(), "X", packages, settings, testEngine())
	require.Len(t, snap.Warnings, 1)
	_, ok := snap.Lookup(hairKey)
	assert.True(t, ok)
	_, ok = snap.Lookup("chara/b.tex")
	assert.True(t, ok)
}

func TestBuild_DisabledLeavesNoResidue(t *testing.T) {
	packages := map[string]*mods.Package{
		"A": filePackage("A", "chara/a.tex", "chara/shared.tex"),
		"B": filePackage("B", "chara/b.tex", "chara/shared.tex"),
	}
	settings := map[string]Settings{"A": {Enabled: true}, "B": {Enabled: true}}
	snap := Build(context.Background(), "X", packages, settings, testEngine())
	assert.Len(t, snap.Entries, 3)
	require.Len(t, snap.Conflicts, 1)
	assert.Equal(t, "unresolved", string(snap.Conflicts[0].Status))

	settings["A"] = Settings{Enabled: false}
	snap = Build(context.Background(), "X", packages, settings, testEngine())
	assert.Len(t, snap.Entries, 2)
	for _, e := range snap.Entries {
		assert.Equal(t, "B", e.Package)
	}
	assert.Empty(t, snap.Conflicts)
}

func TestBuild_Deterministic(t *testing.T) {
	packages := map[string]*mods.Package{
		"A": filePackage("A", "chara/1.tex", "chara/2.tex"),
		"B": filePackage("B", "chara/2.tex", "chara/3.tex"),
		"C": editPackage("C", hairBit(1<<10)),
		"D": editPackage("D", hairBit(2<<10)),
	}
	settings := map[string]Settings{
		"A": {Enabled: true, Priority: 2},
		"B": {Enabled: true, Priority: 2},
		"C": {Enabled: true},
		"D": {Enabled: true},
	}
	first := Build(context.Background(), "X", packages, settings, testEngine())
	for i := 0; i < 10; i++ {
		again := Build(context.Background(), "X", packages, settings, testEngine())
		assert.Equal(t, first.Fingerprint, again.Fingerprint)
		assert.Equal(t, first.Entries, again.Entries)
	}
	require.Len(t, first.TableConflicts, 1)
	assert.Equal(t, "C", first.TableConflicts[0].Winner)
}

func TestEmptyCollection(t *testing.T) {
	c := Empty()
	assert.Equal(t, StateClean, c.State())
	c.MarkDirty()
	assert.Equal(t, StateClean, c.State())
	snap, err := c.rebuild(context.Background(), nil, nil, true)
	require.NoError(t, err)
	assert.Empty(t, snap.Entries)
}

// blockingMerger holds builds until released.
type blockingMerger struct {
	*meta.Engine
	started chan struct{}
	release chan struct{}
}

func (b *blockingMerger) CheckNoOp(ctx context.Context, e meta.TableEdit) bool {
	select {
	case b.started <- struct{}{}:
	default:
	}
	<-b.release
	return b.Engine.CheckNoOp(ctx, e)
}

func TestCollection_MutationDuringBuild(t *testing.T) {
	pkgs := map[string]*mods.Package{"A": editPackage("A", hairBit(1<<10))}
	c := newCollection("X", map[string]Settings{"A": {Enabled: true}})
	merger := &blockingMerger{Engine: testEngine(), started: make(chan struct{}, 1), release: make(chan struct{})}

	done := make(chan *Snapshot)
	go func() {
		snap, _ := c.rebuild(context.Background(), func() map[string]*mods.Package { return pkgs }, merger, false)
		done <- snap
	}()

	<-merger.started
	assert.Equal(t, StateBuilding, c.State())
	// readers see the previous snapshot while building
	assert.Equal(t, uint64(0), c.Snapshot().Version)

	c.replaceSettings(map[string]Settings{"A": {Enabled: false}})
	close(merger.release)

	snap := <-done
	assert.Equal(t, uint64(1), snap.Version)
	assert.Equal(t, StateDirty, c.State())

	snap, err := c.rebuild(context.Background(), func() map[string]*mods.Package { return pkgs }, merger, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), snap.Version)
	assert.Empty(t, snap.Entries)
	assert.Equal(t, StateClean, c.State())
}

func TestRebuilder_BuildsInBackground(t *testing.T) {
	var mu sync.Mutex
	built := map[string]int{}
	r := NewRebuilder(Config{RebuildWorkers: 2, QueueSize: 4}, func(ctx context.Context, c *Collection) {
		_, _ = c.rebuild(ctx, func() map[string]*mods.Package { return nil }, testEngine(), false)
		mu.Lock()
		built[c.Name()]++
		mu.Unlock()
	}, zap.NewNop())
	r.Start(context.Background())
	defer r.Stop()

	a, b := newCollection("A", nil), newCollection("B", nil)
	assert.True(t, r.Schedule(a))
	r.Schedule(b)
	assert.False(t, r.Schedule(Empty()))

	assert.Eventually(t, func() bool {
		return a.State() == StateClean && b.State() == StateClean
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, built["A"], 1)
}
