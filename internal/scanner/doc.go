// Package scanner discovers unprocessed recordings in the watch directory.
//
// A recording counts as processed when a Markdown transcript with the same
// stem already exists in its output directory, so re-running the watcher
// never transcribes the same audio twice.
package scanner
