package collection

import (
	"encoding/binary"
	"sort"
	"time"

	"mod-manager/core/gamedata"
	"mod-manager/core/resolve"

	"github.com/cespare/xxhash/v2"
)

// EntryKind tells how an effective path is served.
type EntryKind string

const (
	// EntryFile serves a file from a package folder.
	EntryFile EntryKind = "file"
	// EntrySwap serves another path of the base store.
	EntrySwap EntryKind = "swap"
	// EntryTable serves a synthesized table blob.
	EntryTable EntryKind = "table"
)

// Entry is the winning source of one logical path.
type Entry struct {
	Kind EntryKind `json:"kind"`
	// Package is the winning package for files and swaps.
	Package string `json:"package,omitempty"`
	// File is the on-disk location of a replacement file.
	File string `json:"file,omitempty"`
	// Target is the base path a swap points to.
	Target gamedata.GamePath `json:"target,omitempty"`
	// Packages lists every package whose edits went into a table.
	Packages []string `json:"packages,omitempty"`
	Blob     []byte   `json:"-"`
}

// Snapshot is an immutable, fully built effective state of one collection.
type Snapshot struct {
	Collection string                     `json:"collection"`
	Version    uint64                     `json:"version"`
	BuiltAt    time.Time                  `json:"built_at"`
	Entries    map[gamedata.GamePath]Entry `json:"-"`
	// Conflicts covers logical paths.
	Conflicts []resolve.Conflict `json:"conflicts"`
	// TableConflicts covers table fields.
	TableConflicts []resolve.Conflict `json:"table_conflicts"`
	Warnings       []string           `json:"warnings,omitempty"`
	Fingerprint    uint64             `json:"fingerprint"`
}

func emptySnapshot(name string) *Snapshot {
	s := &Snapshot{Collection: name, Entries: map[gamedata.GamePath]Entry{}}
	s.Fingerprint = s.fingerprint()
	return s
}

// Lookup returns the entry for path.
func (s *Snapshot) Lookup(path gamedata.GamePath) (Entry, bool) {
	e, ok := s.Entries[path]
	return e, ok
}

// Paths returns all effective paths in order.
func (s *Snapshot) Paths() []gamedata.GamePath {
	out := make([]gamedata.GamePath, 0, len(s.Entries))
	for p := range s.Entries {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// fingerprint hashes everything resolution produced. Version and build time
// are excluded so identical inputs hash identically.
func (s *Snapshot) fingerprint() uint64 {
	d := xxhash.New()
	write := func(parts ...string) {
		for _, p := range parts {
			_, _ = d.WriteString(p)
			_, _ = d.Write([]byte{0})
		}
	}
	for _, p := range s.Paths() {
		e := s.Entries[p]
		write(p.String(), string(e.Kind), e.Package, e.File, e.Target.String())
		write(e.Packages...)
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(e.Blob)))
		_, _ = d.Write(n[:])
		_, _ = d.Write(e.Blob)
	}
	for _, list := range [][]resolve.Conflict{s.Conflicts, s.TableConflicts} {
		write("|")
		for _, c := range list {
			write(c.Key, c.Winner, string(c.Status))
			write(c.Losers...)
		}
	}
	write(s.Warnings...)
	return d.Sum64()
}
