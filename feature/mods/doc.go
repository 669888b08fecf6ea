// Package mods exposes the package store over HTTP.
//
//	GET    /mods
//	GET    /mods/:id
//	DELETE /mods/:id
//	POST   /mods/reload
//	POST   /mods/:id/rename
//	POST   /mods/:id/prune
package mods
