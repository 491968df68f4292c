// Package diarize wraps the scribe-diarize helper, a pyannote-based
// speaker-diarization CLI that emits speaker turns as JSON. The helper is
// looked up on PATH, via SCRIBE_DIARIZE_PATH, or next to the scribe binary.
package diarize
