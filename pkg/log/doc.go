// Package log provides structured protocol tracing for UCSI sessions.
//
// This package defines the Logger interface and Event types for
// capturing every command/response exchange between a session and its
// backend. It is separate from operational logging (slog) - a trace
// provides a complete machine-readable record that can be inspected
// offline or replayed through the fixture backend.
//
// # Basic Usage
//
// Applications configure tracing by providing a Logger implementation:
//
//	// For development: log to console via slog
//	typec.WithLogger(log.NewSlogAdapter(slog.Default()))
//
//	// For capture: write to a binary trace file
//	tracer, _ := log.NewFileLogger("/var/log/typec/session.tlog")
//	typec.WithLogger(tracer)
//
//	// Both: use MultiLogger
//	typec.WithLogger(log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), tracer))
//
// # Event Types
//
// Events carry one payload each:
//   - Exchange: a UCSI command or its raw response data
//   - StateChange: session and backend lifecycle transitions
//   - Error: transport, protocol and decode failures
//
// # File Format
//
// Trace files use CBOR encoding with integer keys. The Reader type
// streams events back, optionally filtered, and the fixture backend
// can replay a captured trace against the decoders.
package log
