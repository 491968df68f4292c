// Package workflow drives recordings through the transcription pipeline.
//
// The manager polls the watch directory, enqueues new recordings, and walks
// each queue item through its stages: normalize, transcribe, diarize, and
// render. Failures are isolated per item so one bad recording never stalls
// the rest of the batch.
package workflow
