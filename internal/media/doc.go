// Package media wraps ffmpeg and ffprobe for audio normalization and
// container inspection. Every recording is normalized to a mono 16kHz
// PCM WAV before transcription so the speech models see uniform input.
package media
