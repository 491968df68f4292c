package diarize

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"scribe/internal/transcript"
)

// DiarizerBinary is the companion CLI that runs the pyannote pipeline.
const DiarizerBinary = "scribe-diarize"

// PathEnvVar overrides diarizer discovery for non-standard installs.
const PathEnvVar = "SCRIBE_DIARIZE_PATH"

// Config captures runtime settings for speaker diarization.
type Config struct {
	// HFToken authenticates against the gated pyannote models.
	HFToken string
	// MinSpeakers and MaxSpeakers bound the speaker count search.
	// Zero leaves the bound unset.
	MinSpeakers int
	MaxSpeakers int
	// CUDAEnabled selects the cuda device instead of cpu.
	CUDAEnabled bool
}

// Service provides speaker diarization through the companion CLI.
type Service struct {
	cfg           Config
	commandOutput func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewService creates a diarization service with the given configuration.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// WithCommandOutput sets a custom command runner (for testing).
func (s *Service) WithCommandOutput(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	s.commandOutput = runner
}

// findDiarizer checks for scribe-diarize in this order:
// 1. System scribe-diarize from $PATH
// 2. SCRIBE_DIARIZE_PATH env var (warns and continues if set but not found)
// 3. Bundled scribe-diarize next to the current binary
func findDiarizer() (string, error) {
	path, err := exec.LookPath(DiarizerBinary)
	if err == nil {
		return path, nil
	}

	if envPath := os.Getenv(PathEnvVar); envPath != "" {
		if _, statErr := os.Stat(envPath); statErr == nil {
			return envPath, nil
		}
		fmt.Fprintf(os.Stderr, "warning: %s set to %q but not found, continuing search\n", PathEnvVar, envPath)
	}

	if exe, exErr := os.Executable(); exErr == nil {
		candidates := []string{
			filepath.Join(filepath.Dir(exe), DiarizerBinary),
			filepath.Join(filepath.Dir(exe), DiarizerBinary+".exe"),
		}
		for _, candidate := range candidates {
			if _, statErr := os.Stat(candidate); statErr == nil {
				return candidate, nil
			}
		}
	}

	return "", fmt.Errorf("%s not found: %w", DiarizerBinary, err)
}

// Available reports whether the scribe-diarize binary can be found.
func Available() bool {
	_, err := findDiarizer()
	return err == nil
}

// turnPayload mirrors the JSON emitted by scribe-diarize.
type turnPayload struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Diarize runs speaker diarization on audioPath, a normalized WAV on disk,
// and returns the speaker turns in timeline order.
func (s *Service) Diarize(ctx context.Context, audioPath string) ([]transcript.SpeakerTurn, error) {
	if strings.TrimSpace(audioPath) == "" {
		return nil, fmt.Errorf("diarize: audio path required")
	}
	if s.cfg.HFToken == "" {
		return nil, fmt.Errorf("diarize: hugging face token required")
	}

	args := s.buildArgs(audioPath)

	var output []byte
	var err error
	if s.commandOutput != nil {
		output, err = s.commandOutput(ctx, DiarizerBinary, args...)
	} else {
		binPath, findErr := findDiarizer()
		if findErr != nil {
			return nil, findErr
		}
		cmd := exec.CommandContext(ctx, binPath, args...) //nolint:gosec
		cmd.Stderr = os.Stderr
		output, err = cmd.Output()
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", DiarizerBinary, err)
	}

	return ParseTurns(output)
}

func (s *Service) buildArgs(audioPath string) []string {
	args := []string{"--hf-token", s.cfg.HFToken}
	if s.cfg.MinSpeakers > 0 {
		args = append(args, "--min-speakers", strconv.Itoa(s.cfg.MinSpeakers))
	}
	if s.cfg.MaxSpeakers > 0 {
		args = append(args, "--max-speakers", strconv.Itoa(s.cfg.MaxSpeakers))
	}
	if s.cfg.CUDAEnabled {
		args = append(args, "--device", "cuda")
	} else {
		args = append(args, "--device", "cpu")
	}
	return append(args, audioPath)
}

// ParseTurns decodes diarizer JSON output into speaker turns, sorted by
// start time. Speaker assignment downstream requires that ordering, so it is
// enforced here rather than trusted from the external tool.
func ParseTurns(data []byte) ([]transcript.SpeakerTurn, error) {
	var payload []turnPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%s returned invalid JSON: %w", DiarizerBinary, err)
	}

	turns := make([]transcript.SpeakerTurn, 0, len(payload))
	for _, turn := range payload {
		speaker := strings.TrimSpace(turn.Speaker)
		if speaker == "" || turn.End < turn.Start {
			continue
		}
		turns = append(turns, transcript.SpeakerTurn{
			Start:   turn.Start,
			End:     turn.End,
			Speaker: speaker,
		})
	}
	sort.Slice(turns, func(i, j int) bool { return turns[i].Start < turns[j].Start })
	return turns, nil
}

// SaveTurns writes speaker turns to path as JSON for later inspection.
func SaveTurns(path string, turns []transcript.SpeakerTurn) error {
	payload := make([]turnPayload, 0, len(turns))
	for _, turn := range turns {
		payload = append(payload, turnPayload{Start: turn.Start, End: turn.End, Speaker: turn.Speaker})
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode speaker turns: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write speaker turns: %w", err)
	}
	return nil
}

// LoadTurns reads speaker turns previously written by SaveTurns.
func LoadTurns(path string) ([]transcript.SpeakerTurn, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTurns(data)
}
