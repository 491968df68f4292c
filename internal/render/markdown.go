package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	langpkg "scribe/internal/language"
	"scribe/internal/transcript"
)

// Document collects everything the Markdown renderer needs. Duration is the
// probed recording length in seconds; when zero, the end of the last segment
// is used instead.
type Document struct {
	Title       string
	SourceFile  string
	Language    string
	Duration    float64
	GeneratedAt time.Time
	Segments    []transcript.LabeledSegment
}

var titleCaser = cases.Title(language.English)

// TitleFromSource derives a readable document title from an audio filename.
func TitleFromSource(sourcePath string) string {
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(stem)
	return titleCaser.String(strings.Join(strings.Fields(stem), " "))
}

// FormatTime converts seconds to HH:MM:SS, dropping the hour field for
// recordings under an hour.
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// FormatMarkdown renders the transcript document as Markdown. Segments are
// grouped under speaker headings in timeline order, with translations shown
// as indented quotes below the original text.
func FormatMarkdown(doc Document) string {
	title := doc.Title
	if title == "" {
		title = TitleFromSource(doc.SourceFile)
	}

	duration := doc.Duration
	speakers := make(map[string]struct{})
	for _, seg := range doc.Segments {
		if doc.Duration <= 0 && seg.End > duration {
			duration = seg.End
		}
		speakers[seg.Speaker] = struct{}{}
	}

	generated := doc.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	lines := []string{
		"# " + title,
		"",
		"| | |",
		"|------|------|",
		fmt.Sprintf("| Source | `%s` |", filepath.Base(doc.SourceFile)),
		fmt.Sprintf("| Duration | %s |", FormatTime(duration)),
		fmt.Sprintf("| Transcribed | %s |", generated.Format("2006-01-02 15:04:05")),
		fmt.Sprintf("| Language | %s |", langpkg.DisplayName(doc.Language)),
		fmt.Sprintf("| Speakers | %d |", len(speakers)),
		"",
		"---",
		"",
	}

	currentSpeaker := ""
	for i, seg := range doc.Segments {
		if seg.Speaker != currentSpeaker {
			currentSpeaker = seg.Speaker
			if i > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, "### "+speakerHeading(seg.Speaker), "")
		}

		lines = append(lines,
			fmt.Sprintf("**`%s - %s`**", FormatTime(seg.Start), FormatTime(seg.End)),
			"",
			seg.Text,
		)
		if seg.Translation != "" {
			lines = append(lines, fmt.Sprintf("  > *%s*", seg.Translation))
		}
		lines = append(lines, "")
	}

	lines = append(lines,
		"---",
		"",
		fmt.Sprintf("*Generated by scribe on %s*", generated.Format("2006-01-02 15:04:05")),
		"",
	)

	return strings.Join(lines, "\n")
}

func speakerHeading(speaker string) string {
	if speaker == transcript.UnknownSpeaker {
		return "Unknown Speaker"
	}
	return speaker
}

// WriteMarkdown renders doc and writes it next to the recording. The write
// goes through a temp file so watchers never see a partial transcript.
func WriteMarkdown(doc Document, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure output directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(FormatMarkdown(doc)), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalize markdown: %w", err)
	}
	return nil
}
