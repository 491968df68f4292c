package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// supportedExtensions lists the container formats ffmpeg can decode for us.
// Video containers are included because recordings often arrive as screen
// captures with an audio track.
var supportedExtensions = map[string]struct{}{
	".m4a":  {},
	".mp3":  {},
	".wav":  {},
	".flac": {},
	".aac":  {},
	".ogg":  {},
	".wma":  {},
	".opus": {},
	".m4b":  {},
	".aiff": {},
	".ape":  {},
	".webm": {},
	".mp4":  {},
	".avi":  {},
	".mkv":  {},
}

// IsSupportedAudio reports whether the file extension belongs to a format
// the pipeline can normalize.
func IsSupportedAudio(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// SupportedExtensions returns the recognized extensions in sorted order.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// TranscriptPath returns where the Markdown transcript for sourcePath lives
// inside outputDir.
func TranscriptPath(sourcePath, outputDir string) string {
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, stem+".md")
}

// IsProcessed reports whether a transcript already exists for sourcePath.
func IsProcessed(sourcePath, outputDir string) bool {
	info, err := os.Stat(TranscriptPath(sourcePath, outputDir))
	return err == nil && !info.IsDir()
}

// PendingFiles scans watchDir for supported recordings that have no
// transcript yet. outputDirFor maps a source path to its transcript
// directory. Results are sorted for deterministic processing order.
func PendingFiles(watchDir string, outputDirFor func(string) string) ([]string, error) {
	entries, err := os.ReadDir(watchDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan %s: %w", watchDir, err)
	}

	var pending []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(watchDir, entry.Name())
		if !IsSupportedAudio(path) {
			continue
		}
		if IsProcessed(path, outputDirFor(path)) {
			continue
		}
		pending = append(pending, path)
	}
	sort.Strings(pending)
	return pending, nil
}

// Fingerprint derives a cheap identity for a recording from its size and
// modification time. Good enough to notice a file being replaced in place.
func Fingerprint(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", path, err)
	}
	return fmt.Sprintf("%d-%d", info.Size(), info.ModTime().UnixNano()), nil
}
