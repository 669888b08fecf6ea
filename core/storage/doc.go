// Package storage wraps the MinIO client that reads the base game data.
//
// The unpacked game files live in one bucket, keyed by their logical game
// path under an optional prefix. The resolution engine only ever reads from
// it: base tables are fetched with GetObject and never written back.
//
// # Client Interface
//
// Client is kept to the two calls the engine needs so tests can substitute
// the testify mock in core/storage/mocks.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	if err := storage.Verify(ctx, client, cfg.Storage.Bucket); err != nil {
//	    log.Warn("Base game data unavailable", zap.Error(err))
//	}
package storage
