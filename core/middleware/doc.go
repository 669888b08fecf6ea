// Package middleware groups the HTTP middleware of the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting every route except the public ones
//     (Swagger UI).
//   - rayid: assigns every request a ray id, stores it in the context and
//     echoes it in the X-Ray-ID response header for tracing.
//
// rayid must be registered first so every later log line carries the id.
package middleware
