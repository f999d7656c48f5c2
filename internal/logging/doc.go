// Package logging assembles structured slog loggers and formatting helpers used
// across strikeout.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers so components emit the same field
// names (component, event_type, run_id, source, destination). The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup.
package logging
