// Package deps checks the availability of the external tools scribe shells
// out to: ffmpeg, ffprobe, uvx, the diarizer, and pandoc.
package deps
