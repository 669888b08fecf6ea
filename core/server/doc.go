// Package server holds the HTTP server configuration.
//
// The start command builds the Fiber app from it: listen address, API key
// checked by the auth middleware and the request body limit.
package server
