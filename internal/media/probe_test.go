package media

import (
	"context"
	"os/exec"
	"strings"
	"testing"
)

func TestProbeParsesDurationAndStreams(t *testing.T) {
	stubCommand(t, func(cmd *exec.Cmd) ([]byte, error) {
		return []byte(`{
            "streams": [
                {"index": 0, "codec_type": "audio", "codec_name": "aac", "channels": 2, "sample_rate": "44100"}
            ],
            "format": {"filename": "talk.m4a", "nb_streams": 1, "duration": "1834.52", "format_name": "mov,mp4,m4a"}
        }`), nil
	})

	result, err := Probe(context.Background(), "ffprobe", "talk.m4a")
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if result.AudioStreamCount() != 1 {
		t.Fatalf("expected one audio stream, got %d", result.AudioStreamCount())
	}
	if got := result.DurationSeconds(); got != 1834.52 {
		t.Fatalf("DurationSeconds = %v, want 1834.52", got)
	}
}

func TestProbeRejectsEmptyPath(t *testing.T) {
	if _, err := Probe(context.Background(), "ffprobe", "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestProbeReportsCommandFailure(t *testing.T) {
	stubCommand(t, func(cmd *exec.Cmd) ([]byte, error) {
		return []byte("No such file or directory"), exec.ErrNotFound
	})

	_, err := Probe(context.Background(), "ffprobe", "missing.m4a")
	if err == nil {
		t.Fatal("expected probe failure")
	}
	if !strings.Contains(err.Error(), "No such file") {
		t.Fatalf("expected command output in error, got %v", err)
	}
}

func TestProbeDurationDefaultsToZero(t *testing.T) {
	var r ProbeResult
	if got := r.DurationSeconds(); got != 0 {
		t.Fatalf("expected zero duration, got %v", got)
	}
}
