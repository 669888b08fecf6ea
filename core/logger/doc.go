// Package logger provides structured logging based on Zap.
//
// # Request correlation
//
// Every HTTP request gets a ray id from the rayid middleware. WithRayID copies
// it from the Fiber context into the log entry so all lines of one request can
// be correlated.
//
// # Configuration
//
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Server started")
//
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
