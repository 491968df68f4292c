// Package language normalizes the language tags that flow between the
// transcription model, the translator, and the report renderer.
package language
