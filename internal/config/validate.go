package config

import (
	"errors"
	"fmt"
)

var knownModels = map[string]struct{}{
	"tiny":           {},
	"base":           {},
	"small":          {},
	"medium":         {},
	"large-v2":       {},
	"large-v3":       {},
	"large-v3-turbo": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateDiarization(); err != nil {
		return err
	}
	if err := c.validateReport(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.WatchDir == "" {
		return errors.New("paths.watch_dir must be set (or export SCRIBE_WATCH_DIR)")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if _, ok := knownModels[c.Transcription.Model]; !ok {
		return fmt.Errorf("transcription.model: unknown model %q", c.Transcription.Model)
	}
	switch c.Transcription.VADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("transcription.vad_method: must be \"silero\" or \"pyannote\", got %q", c.Transcription.VADMethod)
	}
	return nil
}

func (c *Config) validateDiarization() error {
	if !c.Diarization.Enabled {
		return nil
	}
	if c.Diarization.HFToken == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/scribe/config.toml"
		}
		return fmt.Errorf("diarization.hf_token is required for speaker diarization. Set HF_TOKEN env var or edit %s (create with 'scribe config init')", defaultPath)
	}
	if c.Diarization.MaxSpeakers > 0 && c.Diarization.MinSpeakers > c.Diarization.MaxSpeakers {
		return errors.New("diarization.min_speakers must not exceed diarization.max_speakers")
	}
	return nil
}

func (c *Config) validateReport() error {
	if c.Report.FontSize < 6 || c.Report.FontSize > 32 {
		return fmt.Errorf("report.font_size: %d is outside the supported 6-32pt range", c.Report.FontSize)
	}
	return nil
}
