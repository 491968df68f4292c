// Package whisperx invokes the WhisperX speech-to-text pipeline through uvx.
//
// The service transcribes normalized WAV audio and parses the resulting JSON
// into transcript segments. Model selection, device, and VAD method are
// passed via Config.
package whisperx
