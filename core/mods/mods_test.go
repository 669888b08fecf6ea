package mods

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"unsafe"

	"mod-manager/core/gamedata"
	"mod-manager/core/meta"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writePackage(t *testing.T, root, id string, metaJSON string, files ...string) {
	t.Helper()
	dir := filepath.Join(root, id)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, MetaFile), []byte(metaJSON), 0o644))
	for _, f := range files {
		full := filepath.Join(dir, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(f), 0o644))
	}
}

const redHairMeta = `{
  "Name": "Red Hair",
  "Author": "someone",
  "Files": {"textures/red.tex": ["Chara/Human/c0101/hair.tex", "../bad.tex"]},
  "FileSwaps": {"chara/a.mdl": "chara/b.mdl"},
  "Groups": [
    {"GroupName": "Length", "SelectionType": "Single", "Options": [
      {"OptionName": "Short", "OptionFiles": {"textures/short.tex": ["chara/human/c0101/hair.tex"]}},
      {"OptionName": "Long", "OptionFiles": {"textures/long.tex": ["chara/human/c0101/hair.tex"]}}
    ]},
    {"GroupName": "Extras", "SelectionType": "Multi", "Options": [
      {"OptionName": "Bow", "OptionFiles": {"textures/bow.tex": ["chara/bow.tex"]},
       "Manipulations": [{"Type": "Eqdp", "Eqdp": {"SetId": 42, "Slot": "Hair", "GenderRace": "0101", "Entry": 1024}}]}
    ]}
  ]
}`

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	writePackage(t, root, "RedHair", redHairMeta,
		"textures/red.tex", "textures/short.tex", "textures/long.tex", "textures/bow.tex")
	writePackage(t, root, "Plain", `{"Files": {"a.tex": ["chara/a.tex"]}}`, "a.tex")
	writePackage(t, root, "Broken", `{"Name": `)
	return NewStore(Config{Directory: root, Workers: 2}, zap.NewNop()), root
}

func TestDiscover(t *testing.T) {
	store, _ := newTestStore(t)

	var mu sync.Mutex
	var events []Event
	store.Subscribe(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	})

	report, err := store.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Loaded)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "Broken", report.Errors[0].Package)
	assert.Len(t, report.Warnings["RedHair"], 1)

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Plain", list[0].ID)
	assert.Equal(t, "Plain", list[0].Name)
	assert.Equal(t, "RedHair", list[1].ID)
	assert.Equal(t, "Red Hair", list[1].Name)

	assert.Equal(t, []Event{{Type: EventAdded, ID: "Plain"}, {Type: EventAdded, ID: "RedHair"}}, events)
}

func TestPackage_Effective(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Discover(context.Background())
	require.NoError(t, err)
	pkg, ok := store.Get("RedHair")
	require.True(t, ok)

	hair := gamedata.GamePath("chara/human/c0101/hair.tex")

	t.Run("Defaults", func(t *testing.T) {
		redirects, edits := pkg.Effective(nil)
		assert.Equal(t, Redirect{File: "textures/short.tex"}, redirects[hair])
		assert.Equal(t, Redirect{Swap: "chara/b.mdl"}, redirects["chara/a.mdl"])
		assert.NotContains(t, redirects, gamedata.GamePath("chara/bow.tex"))
		assert.Empty(t, edits)
	})

	t.Run("Selected", func(t *testing.T) {
		redirects, edits := pkg.Effective(map[string][]int{"Length": {1}, "Extras": {0}})
		assert.Equal(t, Redirect{File: "textures/long.tex"}, redirects[hair])
		assert.Equal(t, Redirect{File: "textures/bow.tex"}, redirects["chara/bow.tex"])
		require.Len(t, edits, 1)
		assert.Equal(t, gamedata.SlotHair, edits[0].Eqdp.Slot)
		assert.Equal(t, gamedata.GenderRace(101), edits[0].Eqdp.GenderRace)
	})

	t.Run("OutOfRangeIgnored", func(t *testing.T) {
		sel := pkg.Selection(map[string][]int{"Length": {7, 1, 0}, "Extras": {3}})
		assert.Equal(t, []int{0}, sel["Length"])
		assert.Empty(t, sel["Extras"])
	})
}

func TestRenameAndRemove(t *testing.T) {
	store, root := newTestStore(t)
	_, err := store.Discover(context.Background())
	require.NoError(t, err)

	var events []Event
	store.Subscribe(func(ev Event) { events = append(events, ev) })

	pkg, err := store.Rename("Plain", "Simple")
	require.NoError(t, err)
	assert.Equal(t, "Simple", pkg.ID)
	assert.DirExists(t, filepath.Join(root, "Simple"))
	_, ok := store.Get("Plain")
	assert.False(t, ok)

	_, err = store.Rename("Simple", "RedHair")
	assert.True(t, errors.Is(err, ErrPackageExists))
	_, err = store.Rename("Simple", "../x")
	assert.True(t, errors.Is(err, ErrInvalidID))

	require.NoError(t, store.Remove("Simple"))
	assert.NoDirExists(t, filepath.Join(root, "Simple"))
	assert.True(t, errors.Is(store.Remove("Simple"), ErrPackageNotFound))

	assert.Equal(t, []Event{
		{Type: EventRenamed, ID: "Simple", OldID: "Plain"},
		{Type: EventRemoved, ID: "Simple"},
	}, events)
}

func TestSubscribe_EverySubscriberSeesEvents(t *testing.T) {
	store, root := newTestStore(t)
	_, err := store.Discover(context.Background())
	require.NoError(t, err)

	var first, second, late []Event
	store.Subscribe(func(ev Event) {
		first = append(first, ev)
		if len(first) == 1 {
			// registering during delivery takes effect from the next event
			store.Subscribe(func(ev Event) { late = append(late, ev) })
		}
	})
	store.Subscribe(func(ev Event) { second = append(second, ev) })

	writePackage(t, root, "Fresh", `{"Files": {"b.tex": ["chara/b.tex"]}}`, "b.tex")
	_, err = store.Reload(context.Background(), "Fresh")
	require.NoError(t, err)
	require.NoError(t, store.Remove("Fresh"))

	want := []Event{{Type: EventAdded, ID: "Fresh"}, {Type: EventRemoved, ID: "Fresh"}}
	assert.Equal(t, want, first)
	assert.Equal(t, want, second)
	assert.Equal(t, want[1:], late)
}

func TestReload_KeepsOwnID(t *testing.T) {
	store, root := newTestStore(t)
	_, err := store.Discover(context.Background())
	require.NoError(t, err)
	writePackage(t, root, "Fresh", `{"Files": {"b.tex": ["chara/b.tex"]}}`, "b.tex")

	// an id backed by a buffer the caller reuses, as a web framework does
	buf := []byte("Fresh")
	id := unsafe.String(&buf[0], len(buf))
	_, err = store.Reload(context.Background(), id)
	require.NoError(t, err)
	copy(buf, "Zzzzz")

	pkg, ok := store.Get("Fresh")
	require.True(t, ok)
	assert.Equal(t, "Fresh", pkg.ID)
	_, ok = store.Get("Zzzzz")
	assert.False(t, ok)
}

type staticChecker map[string]bool

func (c staticChecker) CheckNoOp(_ context.Context, edit meta.TableEdit) bool {
	return c[edit.Field()]
}

func TestSaveAndPruneEdits(t *testing.T) {
	store, root := newTestStore(t)
	_, err := store.Discover(context.Background())
	require.NoError(t, err)

	keep := meta.NewEqdpEdit(meta.EqdpEdit{SetID: 42, Slot: gamedata.SlotHair, GenderRace: 101, Entry: 1 << 10})
	drop := meta.NewGmpEdit(meta.GmpEdit{SetID: 3, Entry: 0})

	pkg, err := store.SaveEdits(context.Background(), "Plain", []meta.TableEdit{keep, drop})
	require.NoError(t, err)
	assert.Len(t, pkg.Default.Edits, 2)

	_, err = store.SaveEdits(context.Background(), "Plain", []meta.TableEdit{{Kind: keep.Kind}})
	assert.Error(t, err)

	removed, err := store.PruneNoOpEdits(context.Background(), "Plain", staticChecker{drop.Field(): true})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	data, err := os.ReadFile(filepath.Join(root, "Plain", EditsFile))
	require.NoError(t, err)
	var onDisk []meta.TableEdit
	require.NoError(t, json.Unmarshal(data, &onDisk))
	require.Len(t, onDisk, 1)
	assert.Equal(t, keep.Field(), onDisk[0].Field())

	pkg, _ = store.Get("Plain")
	assert.Len(t, pkg.Default.Edits, 1)
}

func TestReload_MissingFolder(t *testing.T) {
	store, root := newTestStore(t)
	_, err := store.Discover(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(filepath.Join(root, "Plain")))
	_, err = store.Reload(context.Background(), "Plain")
	assert.True(t, errors.Is(err, ErrPackageNotFound))
	_, ok := store.Get("Plain")
	assert.False(t, ok)
}
