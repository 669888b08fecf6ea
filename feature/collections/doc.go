// Package collections exposes collection management over HTTP and persists
// collections with GORM.
//
// # Persistence
//
// Repository implements collection.Repository on three tables:
//
//	collections              name
//	collection_settings      collection, package, enabled, priority, options (JSON)
//	collection_assignments   scope (default|forced|actor), actor, collection
//
// Saves replace a collection's settings inside one transaction, so a failed
// save leaves the previous rows in place.
//
// # Routes
//
//	GET    /collections
//	POST   /collections
//	GET    /collections/:name
//	DELETE /collections/:name
//	PUT    /collections/:name/mods/:mod
//	POST   /collections/:name/clean
//	POST   /collections/:name/rebuild
//	GET    /collections/:name/conflicts
//	GET    /assignments
//	PUT    /assignments/default | /assignments/forced | /assignments/actors/:actor
//	DELETE /assignments/actors/:actor
package collections
