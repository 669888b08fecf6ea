// Package collection owns per-profile package settings and turns them into
// immutable effective snapshots.
//
// # Lifecycle
//
// Every mutation marks a collection Dirty. A background Rebuilder moves it
// through Building back to Clean and atomically publishes the new Snapshot.
// Readers always get the last published snapshot and never wait; a mutation
// that lands during a build leaves the collection Dirty so it is rebuilt once
// more afterwards. Builds of one collection never overlap.
//
// # Build
//
// Build is a pure function of the package set, the settings and the table
// merger. Paths and table fields are resolved with the same priority rule;
// edits equal to the base value are dropped after resolution so their
// conflicts stay visible. Problems become warnings and never abort a build.
//
// # Routing
//
//	res, ok := manager.Router().Resolve("chara/human/c0101/hair.tex", "Some Actor")
//	// actor collection, then Default, then Forced; ok == false means serve the base file
//
// The sentinel collection "None" is permanently Clean, has no entries and
// rejects every edit. Deleting a collection points its assignments at it.
package collection
