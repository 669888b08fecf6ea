// Package resolve picks one winning package per contested key.
//
// Candidates are grouped by key and ordered by priority descending, then by
// package id ascending. The first candidate wins. Every other package that
// supplied the key is reported as a loser: packages sharing the winner's
// priority in an Unresolved conflict, strictly lower ones in a Resolved one.
// The same rule serves logical paths and table fields.
package resolve

import (
	"sort"
)

// Candidate is one package's claim on a key.
type Candidate[T any] struct {
	Key      string
	Package  string
	Priority int
	Value    T
}

// Status classifies a conflict.
type Status string

const (
	// StatusResolved means priority alone decided the winner.
	StatusResolved Status = "resolved"
	// StatusUnresolved means the winner was picked by id among equal priorities.
	StatusUnresolved Status = "unresolved"
)

// Conflict names the winner and the losers of one contested key.
type Conflict struct {
	Key    string   `json:"key"`
	Winner string   `json:"winner"`
	Losers []string `json:"losers"`
	Status Status   `json:"status"`
}

// Result is the outcome of one resolution pass.
type Result[T any] struct {
	Winners   map[string]Candidate[T]
	Conflicts []Conflict
}

// Resolve groups candidates by key and picks a winner for each.
// Repeated claims by the same package on the same key collapse to the last one.
// The result depends only on the candidate set, not on its order, except for
// such repeated claims.
func Resolve[T any](candidates []Candidate[T]) Result[T] {
	byKey := make(map[string][]Candidate[T])
	for _, c := range candidates {
		list := byKey[c.Key]
		replaced := false
		for i := range list {
			if list[i].Package == c.Package {
				list[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			list = append(list, c)
		}
		byKey[c.Key] = list
	}

	result := Result[T]{Winners: make(map[string]Candidate[T], len(byKey))}
	for key, list := range byKey {
		sort.Slice(list, func(i, j int) bool {
			return Less(list[i].Priority, list[i].Package, list[j].Priority, list[j].Package)
		})
		winner := list[0]
		result.Winners[key] = winner
		if len(list) == 1 {
			continue
		}

		var tied, lower []string
		for _, c := range list[1:] {
			if c.Priority == winner.Priority {
				tied = append(tied, c.Package)
			} else {
				lower = append(lower, c.Package)
			}
		}
		if len(tied) > 0 {
			result.Conflicts = append(result.Conflicts, Conflict{Key: key, Winner: winner.Package, Losers: tied, Status: StatusUnresolved})
		}
		if len(lower) > 0 {
			result.Conflicts = append(result.Conflicts, Conflict{Key: key, Winner: winner.Package, Losers: lower, Status: StatusResolved})
		}
	}

	SortConflicts(result.Conflicts)
	return result
}

// Less reports whether a candidate with priority pa and id a ranks before one
// with priority pb and id b.
func Less(pa int, a string, pb int, b string) bool {
	if pa != pb {
		return pa > pb
	}
	return a < b
}

// SortConflicts orders conflicts by key, unresolved before resolved.
func SortConflicts(conflicts []Conflict) {
	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].Key != conflicts[j].Key {
			return conflicts[i].Key < conflicts[j].Key
		}
		return conflicts[i].Status == StatusUnresolved && conflicts[j].Status != StatusUnresolved
	})
}

// Partition splits conflicts into resolved and unresolved entries.
func Partition(conflicts []Conflict) (resolved, unresolved []Conflict) {
	for _, c := range conflicts {
		if c.Status == StatusUnresolved {
			unresolved = append(unresolved, c)
		} else {
			resolved = append(resolved, c)
		}
	}
	return resolved, unresolved
}
