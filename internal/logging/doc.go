// Package logging assembles structured slog loggers and formatting helpers
// used across storyreel components.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers so composition code tags log lines
// with project, job, and scene identifiers consistently. A no-op logger is
// provided for tests and wiring code that cannot fail.
package logging
