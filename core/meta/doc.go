// Package meta turns declared table edits into synthesized replacement tables.
//
// # Components
//
//   - TableEdit: a tagged variant over the five edit kinds (Imc, Eqp, Eqdp, Gmp,
//     Est). Exactly one payload is set and it must match Kind. Merge code switches
//     on Kind.
//   - DefaultCache: memoized, read-only base tables keyed by table kind and path.
//     It is an explicit object owned by the running app (created on start, Reset
//     on stop) so tests build isolated instances. Concurrent first loads of the
//     same key are collapsed with singleflight.
//   - Engine: GetDefault, GetClone, CheckNoOp and MergeForKey on top of the cache.
//   - StorageProvider: the base-asset collaborator backed by object storage.
//
// # Ownership
//
// A table returned by GetDefault is shared and must never be mutated. GetClone
// returns a deep copy owned by the caller; MergeForKey only ever mutates a clone
// it requested itself.
//
// # Usage
//
//	engine := meta.NewEngine(meta.NewDefaultCache(provider), logger)
//	edit := meta.NewEqdpEdit(meta.EqdpEdit{SetID: 42, Slot: gamedata.SlotHair, GenderRace: 101, Entry: 1 << 10})
//	key, _ := edit.Table()
//	merged, err := engine.MergeForKey(ctx, key, []meta.TableEdit{edit})
package meta
