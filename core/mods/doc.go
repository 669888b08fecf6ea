// Package mods loads package folders from disk into immutable Package records.
//
// # Layout
//
//	<directory>/
//	  RedHair/
//	    meta.json                 name, author, files, swaps and option groups
//	    meta_manipulations.json   optional default table edits
//	    textures/hair_red.tex
//
// The folder name is the package id. Collections reference packages by id
// only, so a rename or removal never leaves a dangling pointer behind.
//
// # Discovery
//
// Store.Discover loads every folder in parallel. A folder whose metadata cannot
// be read becomes a *DiscoveryError and is skipped. A malformed path inside an
// otherwise valid folder only drops that single association and is reported
// as a warning.
//
// # Contributions
//
// Package.Effective returns what a package contributes for a given option
// selection. Later contributions override earlier ones in the order default
// files and swaps, groups in declaration order, options in index order.
package mods
