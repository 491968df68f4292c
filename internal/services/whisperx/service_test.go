package whisperx

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTranscribeFileBuildsCPUCommand(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "talk.wav")
	if err := os.WriteFile(source, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := NewService(Config{Model: "large-v3", VADMethod: VADMethodSilero})
	var gotName string
	var gotArgs []string
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		payload := `{"language": "zh", "segments": [{"start": 0, "end": 2.5, "text": " 大家好 "}]}`
		return os.WriteFile(filepath.Join(dir, "talk.json"), []byte(payload), 0o644)
	})

	result, err := svc.TranscribeFile(context.Background(), source, dir, "zh")
	if err != nil {
		t.Fatalf("TranscribeFile failed: %v", err)
	}
	if gotName != UVXCommand {
		t.Fatalf("expected uvx invocation, got %q", gotName)
	}

	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{
		"--index-url " + PypiIndexURL,
		"whisperx " + source,
		"--model large-v3",
		"--vad_method silero",
		"--language zh",
		"--device cpu",
		"--compute_type float32",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
	if strings.Contains(joined, CUDAIndexURL) {
		t.Error("CPU run should not reference the CUDA index")
	}

	if result.Text != "大家好" {
		t.Fatalf("unexpected transcript text: %q", result.Text)
	}
	if result.JSONPath != filepath.Join(dir, "talk.json") {
		t.Fatalf("unexpected JSON path: %q", result.JSONPath)
	}
}

func TestBuildArgsCUDAAndPyannote(t *testing.T) {
	svc := NewService(Config{
		CUDAEnabled: true,
		VADMethod:   VADMethodPyannote,
		HFToken:     "hf_secret",
	})
	args := svc.buildArgs("in.wav", "out", "")
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"--index-url " + CUDAIndexURL,
		"--extra-index-url " + PypiIndexURL,
		"--model " + DefaultModel,
		"--vad_method pyannote",
		"--hf_token hf_secret",
		"--device cuda",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
	if strings.Contains(joined, "--language") {
		t.Error("empty language should not emit --language")
	}
	if strings.Contains(joined, "--compute_type") {
		t.Error("CUDA run should not force a compute type")
	}
}

func TestTranscribeFileRequiresSource(t *testing.T) {
	svc := NewService(Config{})
	if _, err := svc.TranscribeFile(context.Background(), "", t.TempDir(), ""); err == nil {
		t.Fatal("expected error for empty source")
	}
}

func TestLoadSegments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")
	payload := `{
        "language": "en",
        "segments": [
            {"start": 0, "end": 1.5, "text": " hello there ", "words": [{"word": "hello", "start": 0, "end": 0.6}]},
            {"start": 1.5, "end": 3, "text": "general update"}
        ]
    }`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	segments, language, err := LoadSegments(path)
	if err != nil {
		t.Fatalf("LoadSegments failed: %v", err)
	}
	if language != "en" {
		t.Fatalf("language = %q, want en", language)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if len(segments[0].Words) != 1 || segments[0].Words[0].Word != "hello" {
		t.Fatalf("unexpected word timing: %#v", segments[0].Words)
	}
}

func TestLoadSegmentsRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadSegments(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestToTranscriptSegments(t *testing.T) {
	raw := []Segment{
		{Start: 0, End: 2, Text: " 早安 "},
		{Start: 2, End: 4, Text: "quarterly revenue numbers", Language: "de"},
		{Start: 4, End: 5, Text: "   "},
	}

	segments := ToTranscriptSegments(raw, "zh", []string{"zh", "en"})
	if len(segments) != 2 {
		t.Fatalf("expected blank segment dropped, got %d segments", len(segments))
	}
	if segments[0].Text != "早安" || segments[0].Language != "zh" {
		t.Fatalf("unexpected first segment: %#v", segments[0])
	}
	// "de" is outside the allowed set, so the Latin text is re-inferred.
	if segments[1].Language != "en" {
		t.Fatalf("expected inferred en for Latin text, got %q", segments[1].Language)
	}
}
