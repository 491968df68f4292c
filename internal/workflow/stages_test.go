package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scribe/internal/queue"
	"scribe/internal/services/diarize"
	"scribe/internal/services/whisperx"
	"scribe/internal/testsupport"
	"scribe/internal/transcript"
)

func TestNormalizeHandlerPrepare(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler := &NormalizeHandler{cfg: cfg}
	ctx := context.Background()

	missing := &queue.Item{SourcePath: filepath.Join(cfg.Paths.WatchDir, "absent.m4a")}
	if err := handler.Prepare(ctx, missing); err == nil {
		t.Fatal("expected error for missing source")
	}

	textFile := filepath.Join(t.TempDir(), "notes.txt")
	testsupport.WriteFile(t, textFile, 8)
	if err := handler.Prepare(ctx, &queue.Item{SourcePath: textFile}); err == nil {
		t.Fatal("expected error for unsupported format")
	}

	audio := filepath.Join(t.TempDir(), "talk.m4a")
	testsupport.WriteFile(t, audio, 8)
	if err := handler.Prepare(ctx, &queue.Item{SourcePath: audio}); err != nil {
		t.Fatalf("Prepare failed for valid audio: %v", err)
	}
}

func TestTranscribeHandlerFallsBackToSileroVAD(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Transcription.VADMethod = "pyannote"
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	audio := filepath.Join(cfg.Paths.WorkDir, "talk.wav")
	testsupport.WriteFile(t, audio, 16)

	svc := whisperx.NewService(whisperx.Config{
		Model:     cfg.Transcription.Model,
		VADMethod: cfg.Transcription.VADMethod,
		HFToken:   cfg.Diarization.HFToken,
	})

	var calls [][]string
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		calls = append(calls, append([]string(nil), args...))
		if len(calls) == 1 {
			return errors.New("whisperx: exit status 1: 401 Client Error: Unauthorized")
		}
		payload := `{"language": "en", "segments": [{"start": 0, "end": 2, "text": "hello there"}]}`
		return os.WriteFile(filepath.Join(cfg.Paths.WorkDir, "talk.json"), []byte(payload), 0o644)
	})

	handler := &TranscribeHandler{cfg: cfg, service: svc}
	item := &queue.Item{ID: 3, SourcePath: "/watch/talk.m4a", NormalizedFile: audio}
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(calls) != 2 {
		t.Fatalf("expected one retry after token rejection, got %d calls", len(calls))
	}
	first := strings.Join(calls[0], " ")
	second := strings.Join(calls[1], " ")
	if !strings.Contains(first, "--vad_method pyannote") || !strings.Contains(first, "--hf_token") {
		t.Fatalf("first attempt should use pyannote with token: %s", first)
	}
	if !strings.Contains(second, "--vad_method silero") {
		t.Fatalf("retry should fall back to silero: %s", second)
	}
	if strings.Contains(second, "--hf_token") {
		t.Fatalf("silero retry should not send the rejected token: %s", second)
	}
	if item.TranscriptFile == "" {
		t.Fatal("transcript path not recorded after fallback")
	}
}

func TestTranscribeHandlerSurfacesNonTokenErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Transcription.VADMethod = "pyannote"
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	audio := filepath.Join(cfg.Paths.WorkDir, "talk.wav")
	testsupport.WriteFile(t, audio, 16)

	svc := whisperx.NewService(whisperx.Config{VADMethod: "pyannote", HFToken: cfg.Diarization.HFToken})
	attempts := 0
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		attempts++
		return errors.New("whisperx: exit status 1: CUDA out of memory")
	})

	handler := &TranscribeHandler{cfg: cfg, service: svc}
	item := &queue.Item{ID: 4, NormalizedFile: audio}
	if err := handler.Execute(context.Background(), item); err == nil {
		t.Fatal("expected transcription error to propagate")
	}
	if attempts != 1 {
		t.Fatalf("non-token failures must not retry, got %d attempts", attempts)
	}
}

func TestDiarizeHandlerDisabledSkips(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutDiarization())
	handler := &DiarizeHandler{cfg: cfg}

	item := &queue.Item{ID: 1, NormalizedFile: "/work/talk.wav"}
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if item.DiarizationFile != "" {
		t.Fatalf("disabled diarization should not produce a file: %q", item.DiarizationFile)
	}
}

func TestRenderHandlerWritesMarkdown(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutTranslation())
	cfg.Report.PDFEnabled = false
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	workDir := cfg.Paths.WorkDir
	transcriptPath := filepath.Join(workDir, "talk.json")
	payload := `{
        "language": "zh",
        "segments": [
            {"start": 0, "end": 4, "text": "大家好，歡迎參加會議。"},
            {"start": 4, "end": 9, "text": "我先報告進度。"},
            {"start": 9, "end": 12, "text": "沒問題。"}
        ]
    }`
	if err := os.WriteFile(transcriptPath, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	turnsPath := filepath.Join(workDir, "talk.turns.json")
	turns := []transcript.SpeakerTurn{
		{Start: 0, End: 9, Speaker: "SPEAKER_00"},
		{Start: 9, End: 12, Speaker: "SPEAKER_01"},
	}
	if err := diarize.SaveTurns(turnsPath, turns); err != nil {
		t.Fatal(err)
	}

	sourcePath := filepath.Join(cfg.Paths.WatchDir, "talk.m4a")
	item := &queue.Item{
		ID:               7,
		SourcePath:       sourcePath,
		Title:            "talk",
		TranscriptFile:   transcriptPath,
		DiarizationFile:  turnsPath,
		DetectedLanguage: "zh",
	}

	handler := &RenderHandler{cfg: cfg}
	if err := handler.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if item.MarkdownFile == "" {
		t.Fatal("markdown path not recorded")
	}
	data, err := os.ReadFile(item.MarkdownFile)
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	md := string(data)
	for _, want := range []string{"### SPEAKER_00", "### SPEAKER_01", "沒問題。"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	// Same-speaker runs collapse into one block.
	if strings.Count(md, "### SPEAKER_00") != 1 {
		t.Errorf("expected coalesced speaker run, got %d sections", strings.Count(md, "### SPEAKER_00"))
	}
}

func TestRenderHandlerUsesProbedDuration(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutDiarization(), testsupport.WithoutTranslation())
	cfg.Report.PDFEnabled = false
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	// Fake ffprobe reporting a recording much longer than the last segment.
	binDir := t.TempDir()
	script := "#!/bin/sh\necho '{\"format\": {\"duration\": \"125.3\"}}'\n"
	if err := os.WriteFile(filepath.Join(binDir, "ffprobe"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	transcriptPath := filepath.Join(cfg.Paths.WorkDir, "long.json")
	payload := `{"language": "en", "segments": [{"start": 0, "end": 3, "text": "short opening remark"}]}`
	if err := os.WriteFile(transcriptPath, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	item := &queue.Item{
		ID:             9,
		SourcePath:     filepath.Join(cfg.Paths.WatchDir, "long.m4a"),
		NormalizedFile: filepath.Join(cfg.Paths.WorkDir, "long.wav"),
		TranscriptFile: transcriptPath,
	}
	handler := &RenderHandler{cfg: cfg}
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	data, err := os.ReadFile(item.MarkdownFile)
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	if !strings.Contains(string(data), "| Duration | 02:05 |") {
		t.Fatalf("expected probed duration in metadata table:\n%s", data)
	}
}

func TestRenderHandlerWithoutTurnsUsesUnknownSpeaker(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutDiarization(), testsupport.WithoutTranslation())
	cfg.Report.PDFEnabled = false
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	transcriptPath := filepath.Join(cfg.Paths.WorkDir, "memo.json")
	payload := `{"language": "en", "segments": [{"start": 0, "end": 3, "text": "quick note to self"}]}`
	if err := os.WriteFile(transcriptPath, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	item := &queue.Item{
		ID:             8,
		SourcePath:     filepath.Join(cfg.Paths.WatchDir, "memo.m4a"),
		TranscriptFile: transcriptPath,
	}
	handler := &RenderHandler{cfg: cfg}
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	data, err := os.ReadFile(item.MarkdownFile)
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	if !strings.Contains(string(data), "### Unknown Speaker") {
		t.Fatal("expected unknown speaker section without diarization")
	}
}

func TestDefaultStagesCoverPipeline(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	bindings := DefaultStages(cfg, nil)
	if len(bindings) != 4 {
		t.Fatalf("expected 4 stages, got %d", len(bindings))
	}
	wantOrder := []queue.Status{
		queue.StatusPending,
		queue.StatusNormalized,
		queue.StatusTranscribed,
		queue.StatusDiarized,
	}
	for i, binding := range bindings {
		if binding.FromStatus != wantOrder[i] {
			t.Errorf("stage %d from %q, want %q", i, binding.FromStatus, wantOrder[i])
		}
		if binding.Handler == nil {
			t.Errorf("stage %d missing handler", i)
		}
	}
	if bindings[len(bindings)-1].DoneStatus != queue.StatusCompleted {
		t.Fatal("pipeline must end at completed")
	}
}
