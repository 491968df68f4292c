package diarize

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"scribe/internal/transcript"
)

func TestDiarizeBuildsArgsAndParsesTurns(t *testing.T) {
	svc := NewService(Config{
		HFToken:     "hf_secret",
		MinSpeakers: 2,
		MaxSpeakers: 4,
	})

	var gotArgs []string
	svc.WithCommandOutput(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = args
		return []byte(`[
            {"start": 0.0, "end": 5.2, "speaker": "SPEAKER_00"},
            {"start": 5.2, "end": 9.8, "speaker": "SPEAKER_01"}
        ]`), nil
	})

	turns, err := svc.Diarize(context.Background(), "/work/talk.wav")
	if err != nil {
		t.Fatalf("Diarize failed: %v", err)
	}

	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{
		"--hf-token hf_secret",
		"--min-speakers 2",
		"--max-speakers 4",
		"--device cpu",
		"/work/talk.wav",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}

	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Speaker != "SPEAKER_00" || turns[1].Speaker != "SPEAKER_01" {
		t.Fatalf("unexpected speakers: %#v", turns)
	}
}

func TestDiarizeOmitsUnsetSpeakerBounds(t *testing.T) {
	svc := NewService(Config{HFToken: "hf_secret", CUDAEnabled: true})

	var gotArgs []string
	svc.WithCommandOutput(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = args
		return []byte(`[]`), nil
	})

	if _, err := svc.Diarize(context.Background(), "/work/talk.wav"); err != nil {
		t.Fatalf("Diarize failed: %v", err)
	}
	joined := strings.Join(gotArgs, " ")
	if strings.Contains(joined, "--min-speakers") || strings.Contains(joined, "--max-speakers") {
		t.Fatalf("unset bounds should not be passed: %s", joined)
	}
	if !strings.Contains(joined, "--device cuda") {
		t.Fatalf("expected cuda device: %s", joined)
	}
}

func TestDiarizeRequiresToken(t *testing.T) {
	svc := NewService(Config{})
	if _, err := svc.Diarize(context.Background(), "/work/talk.wav"); err == nil {
		t.Fatal("expected error without token")
	}
}

func TestParseTurnsDropsMalformedEntries(t *testing.T) {
	turns, err := ParseTurns([]byte(`[
        {"start": 0, "end": 3, "speaker": "SPEAKER_00"},
        {"start": 3, "end": 4, "speaker": "  "},
        {"start": 9, "end": 5, "speaker": "SPEAKER_01"}
    ]`))
	if err != nil {
		t.Fatalf("ParseTurns failed: %v", err)
	}
	if len(turns) != 1 || turns[0].Speaker != "SPEAKER_00" {
		t.Fatalf("expected only the valid turn, got %#v", turns)
	}
}

func TestParseTurnsSortsByStartTime(t *testing.T) {
	turns, err := ParseTurns([]byte(`[
        {"start": 12, "end": 15, "speaker": "SPEAKER_01"},
        {"start": 0, "end": 6, "speaker": "SPEAKER_00"},
        {"start": 6, "end": 12, "speaker": "SPEAKER_01"}
    ]`))
	if err != nil {
		t.Fatalf("ParseTurns failed: %v", err)
	}
	for i := 1; i < len(turns); i++ {
		if turns[i].Start < turns[i-1].Start {
			t.Fatalf("turns not sorted by start: %#v", turns)
		}
	}
	if turns[0].Speaker != "SPEAKER_00" {
		t.Fatalf("expected earliest turn first, got %#v", turns[0])
	}
}

func TestParseTurnsRejectsInvalidJSON(t *testing.T) {
	if _, err := ParseTurns([]byte("not json")); err == nil {
		t.Fatal("expected JSON error")
	}
}

func TestSaveAndLoadTurns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turns.json")
	in := []transcript.SpeakerTurn{
		{Start: 0, End: 4.5, Speaker: "SPEAKER_00"},
		{Start: 4.5, End: 7, Speaker: "SPEAKER_01"},
	}
	if err := SaveTurns(path, in); err != nil {
		t.Fatalf("SaveTurns failed: %v", err)
	}

	out, err := LoadTurns(path)
	if err != nil {
		t.Fatalf("LoadTurns failed: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d turns, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("turn %d mismatch: got %#v want %#v", i, out[i], in[i])
		}
	}
}
