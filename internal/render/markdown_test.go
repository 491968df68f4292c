package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"scribe/internal/transcript"
)

func sampleDocument() Document {
	return Document{
		SourceFile:  "/watch/weekly_sync.m4a",
		Language:    "zh",
		GeneratedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Segments: []transcript.LabeledSegment{
			{Start: 0, End: 12.4, Text: "大家早安，我們開始吧。", Language: "zh", Speaker: "SPEAKER_00"},
			{Start: 12.4, End: 30, Text: "Quick update on the numbers.", Language: "en", Speaker: "SPEAKER_01", Translation: "快速更新一下數字。"},
			{Start: 30, End: 41.7, Text: "好，謝謝。", Language: "zh", Speaker: "SPEAKER_00"},
		},
	}
}

func TestFormatMarkdownStructure(t *testing.T) {
	md := FormatMarkdown(sampleDocument())

	if !strings.HasPrefix(md, "# Weekly Sync\n") {
		t.Fatalf("expected derived title heading, got %q", strings.SplitN(md, "\n", 2)[0])
	}
	for _, want := range []string{
		"| Source | `weekly_sync.m4a` |",
		"| Duration | 00:41 |",
		"| Transcribed | 2026-03-14 09:30:00 |",
		"| Language | Chinese |",
		"| Speakers | 2 |",
		"### SPEAKER_00",
		"### SPEAKER_01",
		"**`00:00 - 00:12`**",
		"大家早安，我們開始吧。",
		"  > *快速更新一下數字。*",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	// The second SPEAKER_00 run opens a fresh section.
	if strings.Count(md, "### SPEAKER_00") != 2 {
		t.Errorf("expected speaker heading per run, got %d", strings.Count(md, "### SPEAKER_00"))
	}
}

func TestFormatMarkdownPrefersProbedDuration(t *testing.T) {
	doc := sampleDocument()
	doc.Duration = 65

	md := FormatMarkdown(doc)
	if !strings.Contains(md, "| Duration | 01:05 |") {
		t.Fatalf("expected probed duration in metadata table:\n%s", md)
	}
	if strings.Contains(md, "| Duration | 00:41 |") {
		t.Fatal("last-segment fallback should not override the probed duration")
	}
}

func TestFormatMarkdownUnknownSpeakerHeading(t *testing.T) {
	doc := Document{
		SourceFile: "call.m4a",
		Segments: []transcript.LabeledSegment{
			{Start: 0, End: 2, Text: "hello", Speaker: transcript.UnknownSpeaker},
		},
	}
	md := FormatMarkdown(doc)
	if !strings.Contains(md, "### Unknown Speaker") {
		t.Fatal("expected sentinel speaker to render as Unknown Speaker")
	}
	if strings.Contains(md, transcript.UnknownSpeaker) {
		t.Fatal("raw sentinel label should not appear in output")
	}
}

func TestFormatTime(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00"},
		{59.9, "00:59"},
		{61, "01:01"},
		{3599, "59:59"},
		{3600, "01:00:00"},
		{3725, "01:02:05"},
		{-5, "00:00"},
	}
	for _, tc := range cases {
		if got := FormatTime(tc.seconds); got != tc.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestTitleFromSource(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/watch/weekly_sync.m4a", "Weekly Sync"},
		{"team-standup.2026.mp3", "Team Standup 2026"},
		{"interview.wav", "Interview"},
	}
	for _, tc := range cases {
		if got := TitleFromSource(tc.path); got != tc.want {
			t.Errorf("TitleFromSource(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestWriteMarkdownAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "talk.md")

	if err := WriteMarkdown(sampleDocument(), path); err != nil {
		t.Fatalf("WriteMarkdown failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	if !strings.Contains(string(data), "# Weekly Sync") {
		t.Fatal("markdown content not written")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temp file left behind")
	}
}
