// Package daemon runs the watch loop as a single-instance background
// process, guarded by a file lock in the log directory.
package daemon
