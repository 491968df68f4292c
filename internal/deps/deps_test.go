package deps_test

import (
	"testing"

	"scribe/internal/config"
	"scribe/internal/deps"
	"scribe/internal/testsupport"
)

func TestCheckBinariesReportsMissing(t *testing.T) {
	results := deps.CheckBinaries([]deps.Requirement{
		{Name: "Ghost", Command: "definitely-not-installed-anywhere"},
		{Name: "Blank", Command: "  "},
	})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Available {
		t.Error("nonexistent binary reported available")
	}
	if results[1].Available || results[1].Detail != "command not configured" {
		t.Errorf("blank command not handled: %+v", results[1])
	}
}

func TestCheckBinariesFindsStubbed(t *testing.T) {
	testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg"))
	results := deps.CheckBinaries([]deps.Requirement{
		{Name: "FFmpeg", Command: "ffmpeg", Description: "Required for audio normalization"},
	})
	if !results[0].Available {
		t.Fatalf("stubbed ffmpeg not found: %+v", results[0])
	}
}

func TestRequirementsFollowFeatureFlags(t *testing.T) {
	cfg := config.Default()
	cfg.Diarization.Enabled = true
	cfg.Report.PDFEnabled = true

	names := map[string]bool{}
	for _, req := range deps.Requirements(&cfg) {
		names[req.Name] = true
	}
	for _, want := range []string{"FFmpeg", "FFprobe", "uvx", "Diarizer", "Pandoc", "XeLaTeX"} {
		if !names[want] {
			t.Errorf("requirements missing %s", want)
		}
	}

	cfg.Diarization.Enabled = false
	cfg.Report.PDFEnabled = false
	for _, req := range deps.Requirements(&cfg) {
		if req.Name == "Diarizer" || req.Name == "Pandoc" {
			t.Errorf("%s should be gated off", req.Name)
		}
	}
}
