package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// commandOutput runs external commands; swapped in tests.
var commandOutput = func(cmd *exec.Cmd) ([]byte, error) {
	return cmd.CombinedOutput()
}

// NormalizedPath returns the WAV path for sourcePath inside workDir.
func NormalizedPath(sourcePath, workDir string) string {
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(workDir, stem+".wav")
}

// Normalize converts sourcePath into a mono 16kHz pcm_s16le WAV at dest.
// The conversion writes through a temp file so a crash never leaves a
// truncated WAV behind. When dest already exists and is newer than the
// source the conversion is skipped.
func Normalize(ctx context.Context, ffmpegBinary, sourcePath, dest string) error {
	ffmpegBinary = strings.TrimSpace(ffmpegBinary)
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}

	srcInfo, err := os.Stat(sourcePath)
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}
	if destInfo, err := os.Stat(dest); err == nil && !destInfo.ModTime().Before(srcInfo.ModTime()) {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("normalize: ensure work directory: %w", err)
	}

	tmp := dest + ".tmp"
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", sourcePath,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		"-f", "wav",
		tmp,
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, args...) //nolint:gosec
	if output, err := commandOutput(cmd); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("ffmpeg normalize: %w: %s", err, strings.TrimSpace(string(output)))
	}

	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("normalize: finalize output: %w", err)
	}
	return nil
}
