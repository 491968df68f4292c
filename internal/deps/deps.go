package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"scribe/internal/config"
	"scribe/internal/services/diarize"
	"scribe/internal/services/whisperx"
)

// Requirement defines an external dependency scribe relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Requirements assembles the dependency list for the given configuration.
// Feature-gated tools only appear when their feature is enabled.
func Requirements(cfg *config.Config) []Requirement {
	requirements := []Requirement{
		{
			Name:        "FFmpeg",
			Command:     "ffmpeg",
			Description: "Required for audio normalization",
		},
		{
			Name:        "FFprobe",
			Command:     "ffprobe",
			Description: "Required for media inspection",
		},
		{
			Name:        "uvx",
			Command:     whisperx.UVXCommand,
			Description: "Required for WhisperX transcription",
		},
	}
	if cfg.Diarization.Enabled {
		requirements = append(requirements, Requirement{
			Name:        "Diarizer",
			Command:     diarize.DiarizerBinary,
			Description: "Required for speaker diarization",
		})
	}
	if cfg.Report.PDFEnabled {
		requirements = append(requirements,
			Requirement{
				Name:        "Pandoc",
				Command:     "pandoc",
				Description: "Required for PDF transcripts",
				Optional:    true,
			},
			Requirement{
				Name:        "XeLaTeX",
				Command:     "xelatex",
				Description: "PDF engine used by pandoc for CJK output",
				Optional:    true,
			},
		)
	}
	return requirements
}
