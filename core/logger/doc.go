// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports development and production
// presets and integrates with the Fiber web framework.
//
// # Context Awareness
//
// WithRayID extracts the RayID set by the rayid middleware and attaches it to the
// log entry, so all logs related to a single resolve or ingest request can be
// correlated. ForTable names a logger after the pool or ledger table it serves.
//
// # Configuration
//
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Server started")
//
//	l := logger.WithRayID(log, c)
//	l.Error("Resolve failed", zap.Error(err))
package logger
