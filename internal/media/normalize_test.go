package media

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func stubCommand(t *testing.T, fn func(cmd *exec.Cmd) ([]byte, error)) {
	t.Helper()
	orig := commandOutput
	commandOutput = fn
	t.Cleanup(func() { commandOutput = orig })
}

func TestNormalizeInvokesFFmpegAndRenames(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "talk.m4a")
	if err := os.WriteFile(source, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	dest := filepath.Join(dir, "work", "talk.wav")

	var gotArgs []string
	stubCommand(t, func(cmd *exec.Cmd) ([]byte, error) {
		gotArgs = cmd.Args
		return nil, os.WriteFile(cmd.Args[len(cmd.Args)-1], []byte("RIFF"), 0o644)
	})

	if err := Normalize(context.Background(), "ffmpeg", source, dest); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("expected normalized output at %s: %v", dest, err)
	}
	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{"-ac 1", "-ar 16000", "-c:a pcm_s16le", source} {
		if !strings.Contains(joined, want) {
			t.Errorf("ffmpeg args missing %q: %s", want, joined)
		}
	}
	if !strings.HasSuffix(gotArgs[len(gotArgs)-1], ".tmp") {
		t.Errorf("expected conversion to target a temp file, got %q", gotArgs[len(gotArgs)-1])
	}
}

func TestNormalizeSkipsWhenOutputCurrent(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "talk.m4a")
	dest := filepath.Join(dir, "talk.wav")
	if err := os.WriteFile(source, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dest, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(dest, future, future); err != nil {
		t.Fatal(err)
	}

	stubCommand(t, func(cmd *exec.Cmd) ([]byte, error) {
		t.Fatal("ffmpeg should not run when output is current")
		return nil, nil
	})

	if err := Normalize(context.Background(), "ffmpeg", source, dest); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
}

func TestNormalizeReportsFFmpegStderr(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "talk.m4a")
	if err := os.WriteFile(source, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	stubCommand(t, func(cmd *exec.Cmd) ([]byte, error) {
		return []byte("Invalid data found when processing input"), os.ErrInvalid
	})

	err := Normalize(context.Background(), "ffmpeg", source, filepath.Join(dir, "talk.wav"))
	if err == nil {
		t.Fatal("expected conversion error")
	}
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestNormalizedPath(t *testing.T) {
	got := NormalizedPath("/watch/weekly sync.m4a", "/work")
	want := filepath.Join("/work", "weekly sync.wav")
	if got != want {
		t.Fatalf("NormalizedPath = %q, want %q", got, want)
	}
}
