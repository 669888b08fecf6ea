package collection

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"mod-manager/core/gamedata"
	"mod-manager/core/meta"
	"mod-manager/core/mods"
	"mod-manager/core/resolve"
)

// Merger turns accepted table edits into synthesized tables.
type Merger interface {
	CheckNoOp(ctx context.Context, edit meta.TableEdit) bool
	MergeForKey(ctx context.Context, key meta.TableKey, edits []meta.TableEdit) (*meta.Merged, error)
}

type tableEdit struct {
	edit meta.TableEdit
	pkg  string
}

// Build computes the effective state of a collection. It only depends on its
// inputs and never fails: problems end up in Snapshot.Warnings.
func Build(ctx context.Context, name string, packages map[string]*mods.Package, settings map[string]Settings, merger Merger) *Snapshot {
	ids := make([]string, 0, len(settings))
	for id, s := range settings {
		if _, ok := packages[id]; ok && s.Enabled {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	var (
		pathCandidates []resolve.Candidate[mods.Redirect]
		editCandidates []resolve.Candidate[meta.TableEdit]
	)
	for _, id := range ids {
		pkg, s := packages[id], settings[id]
		redirects, edits := pkg.Effective(s.Options)
		for path, r := range redirects {
			pathCandidates = append(pathCandidates, resolve.Candidate[mods.Redirect]{
				Key: path.String(), Package: id, Priority: s.Priority, Value: r,
			})
		}
		for _, e := range edits {
			editCandidates = append(editCandidates, resolve.Candidate[meta.TableEdit]{
				Key: e.Field(), Package: id, Priority: s.Priority, Value: e,
			})
		}
	}

	paths := resolve.Resolve(pathCandidates)
	fields := resolve.Resolve(editCandidates)

	snap := &Snapshot{
		Collection:     name,
		BuiltAt:        time.Now().UTC(),
		Entries:        make(map[gamedata.GamePath]Entry, len(paths.Winners)),
		Conflicts:      paths.Conflicts,
		TableConflicts: fields.Conflicts,
	}
	for key, w := range paths.Winners {
		path := gamedata.GamePath(key)
		if w.Value.IsSwap() {
			snap.Entries[path] = Entry{Kind: EntrySwap, Package: w.Package, Target: w.Value.Swap}
			continue
		}
		snap.Entries[path] = Entry{
			Kind:    EntryFile,
			Package: w.Package,
			File:    filepath.Join(packages[w.Package].Dir, filepath.FromSlash(w.Value.File.String())),
		}
	}

	// No-op winners are pruned only after resolution so their conflicts are
	// still reported.
	byTable := make(map[meta.TableKey][]tableEdit)
	for _, w := range fields.Winners {
		key, err := w.Value.Table()
		if err != nil {
			snap.Warnings = append(snap.Warnings, fmt.Sprintf("%s: %s: %v", w.Package, w.Key, err))
			continue
		}
		byTable[key] = append(byTable[key], tableEdit{edit: w.Value, pkg: w.Package})
	}

	keys := make([]meta.TableKey, 0, len(byTable))
	for k := range byTable {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Path < keys[j].Path })

	for _, key := range keys {
		var (
			accepted []meta.TableEdit
			owners   = make(map[string]bool)
		)
		for _, te := range byTable[key] {
			if merger.CheckNoOp(ctx, te.edit) {
				continue
			}
			accepted = append(accepted, te.edit)
			owners[te.pkg] = true
		}
		if len(accepted) == 0 {
			continue
		}

		merged, err := merger.MergeForKey(ctx, key, accepted)
		if err != nil {
			snap.Warnings = append(snap.Warnings, fmt.Sprintf("%s: %v", key, err))
			continue
		}
		for _, w := range merged.Warnings {
			snap.Warnings = append(snap.Warnings, fmt.Sprintf("%s: %s: %s", w.Table, w.Field, w.Message))
		}

		pkgs := make([]string, 0, len(owners))
		for id := range owners {
			pkgs = append(pkgs, id)
		}
		sort.Strings(pkgs)
		if prev, ok := snap.Entries[key.Path]; ok {
			snap.Warnings = append(snap.Warnings, fmt.Sprintf("%s: table edits replace the file from %s", key, prev.Package))
		}
		snap.Entries[key.Path] = Entry{Kind: EntryTable, Packages: pkgs, Blob: merged.Blob}
	}

	sort.Strings(snap.Warnings)
	snap.Fingerprint = snap.fingerprint()
	return snap
}
