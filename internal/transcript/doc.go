// Package transcript holds the transcript data model and the pure
// post-processing steps between the external models and the renderer:
// assigning speaker labels to transcribed segments, coalescing consecutive
// same-speaker segments, and script-based language inference.
package transcript
