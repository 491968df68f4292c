// Package queue persists the processing state of each discovered recording
// in SQLite. The workflow manager drives items through the stage lifecycle
// recorded here; the CLI inspects and clears it.
package queue
