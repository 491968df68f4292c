// Package logging configures slog output for scribe.
//
// It provides a pretty console handler for interactive use, a JSON handler
// for machine consumption, and small helpers for building attributes and
// component-scoped loggers.
package logging
