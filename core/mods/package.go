package mods

import (
	"sort"

	"mod-manager/core/gamedata"
	"mod-manager/core/meta"
)

// SelectionType decides how many options of a group can be active.
type SelectionType string

const (
	// SelectionSingle groups have exactly one active option, index 0 by default.
	SelectionSingle SelectionType = "Single"
	// SelectionMulti groups have any subset active, none by default.
	SelectionMulti SelectionType = "Multi"
)

// Redirect is what a package serves for one logical path: either a file from
// its own folder or another game path of the base store.
type Redirect struct {
	File gamedata.RelPath  `json:"file,omitempty"`
	Swap gamedata.GamePath `json:"swap,omitempty"`
}

// IsSwap reports whether the redirect points into the base store.
func (r Redirect) IsSwap() bool {
	return r.Swap != ""
}

// Contribution is one set of files, swaps and table edits.
type Contribution struct {
	Files map[gamedata.GamePath]gamedata.RelPath  `json:"files,omitempty"`
	Swaps map[gamedata.GamePath]gamedata.GamePath `json:"swaps,omitempty"`
	Edits []meta.TableEdit                        `json:"edits,omitempty"`
}

// Option is one selectable alternative inside a group.
type Option struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Contribution
}

// Group is a named set of options.
type Group struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Type        SelectionType `json:"type"`
	Options     []Option      `json:"options"`
}

// DefaultSelection returns the indices active when a collection has no
// explicit selection for the group.
func (g Group) DefaultSelection() []int {
	if g.Type == SelectionSingle && len(g.Options) > 0 {
		return []int{0}
	}
	return nil
}

// Package is an immutable, loaded package folder.
type Package struct {
	ID          string       `json:"id"`
	Dir         string       `json:"-"`
	Name        string       `json:"name"`
	Author      string       `json:"author,omitempty"`
	Version     string       `json:"version,omitempty"`
	Description string       `json:"description,omitempty"`
	Website     string       `json:"website,omitempty"`
	Default     Contribution `json:"default"`
	Groups      []Group      `json:"groups,omitempty"`
	// Warnings lists the associations dropped while loading.
	Warnings []string `json:"warnings,omitempty"`
}

// Group returns the group named name.
func (p *Package) Group(name string) (Group, bool) {
	for _, g := range p.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// Selection returns the active option indices of every group given the
// explicit choices in selected. Out-of-range indices are dropped and Single
// groups keep at most one index.
func (p *Package) Selection(selected map[string][]int) map[string][]int {
	out := make(map[string][]int, len(p.Groups))
	for _, g := range p.Groups {
		choice, ok := selected[g.Name]
		if !ok {
			choice = g.DefaultSelection()
		}
		var valid []int
		seen := make(map[int]bool)
		for _, idx := range choice {
			if idx < 0 || idx >= len(g.Options) || seen[idx] {
				continue
			}
			seen[idx] = true
			valid = append(valid, idx)
		}
		sort.Ints(valid)
		if g.Type == SelectionSingle && len(valid) > 1 {
			valid = valid[:1]
		}
		out[g.Name] = valid
	}
	return out
}

// Effective merges the default contribution with the selected options.
// Edits are returned ordered by field with one edit per field.
func (p *Package) Effective(selected map[string][]int) (map[gamedata.GamePath]Redirect, []meta.TableEdit) {
	redirects := make(map[gamedata.GamePath]Redirect)
	edits := make(map[string]meta.TableEdit)

	add := func(c Contribution) {
		for path, file := range c.Files {
			redirects[path] = Redirect{File: file}
		}
		for path, target := range c.Swaps {
			redirects[path] = Redirect{Swap: target}
		}
		for _, e := range c.Edits {
			edits[e.Field()] = e
		}
	}

	add(p.Default)
	active := p.Selection(selected)
	for _, g := range p.Groups {
		for _, idx := range active[g.Name] {
			add(g.Options[idx].Contribution)
		}
	}

	fields := make([]string, 0, len(edits))
	for f := range edits {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	ordered := make([]meta.TableEdit, 0, len(fields))
	for _, f := range fields {
		ordered = append(ordered, edits[f])
	}
	return redirects, ordered
}
