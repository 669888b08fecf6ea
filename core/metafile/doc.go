// Package metafile parses, clones and re-serializes the shared binary tables
// that table edits target: EQP, GMP, EQDP, EST and IMC.
//
// Every table keeps enough of the original layout that Bytes() reproduces the
// input exactly when nothing was changed, so a merged table differs from the
// base table only in the fields an edit touched (plus any block or variant the
// edit had to materialize).
//
// Tables are plain values with no shared state. Clone returns a deep copy that
// the caller owns outright.
package metafile
