// Package log records countdown events.
//
// It is separate from operational logging (slog): an event trace is a
// machine-readable record of what a running sequence did and when, suitable
// for replay and inspection after the fact.
//
// # Basic Usage
//
//	// Development: events on the console via slog
//	w.Logger = log.NewSlogAdapter(slog.Default())
//
//	// Production: append to a binary file
//	fl, _ := log.NewFileLogger("/var/log/mzt/run.tlog")
//	w.Logger = fl
//
//	// Both
//	w.Logger = log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl)
//
// # File Format
//
// Log files are a stream of CBOR-encoded Events with integer map keys,
// conventionally named with a .tlog extension. "mzt log view" prints them.
package log
