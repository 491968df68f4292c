package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscription()
	c.normalizeDiarization()
	c.normalizeTranslation()
	c.normalizeReport()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("SCRIBE_WATCH_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.WatchDir = strings.TrimSpace(value)
	}

	var err error
	if c.Paths.WatchDir, err = ExpandPath(c.Paths.WatchDir); err != nil {
		return fmt.Errorf("paths.watch_dir: %w", err)
	}
	if c.Paths.OutputDir, err = ExpandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = ExpandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultModel
	}
	c.Transcription.VADMethod = strings.ToLower(strings.TrimSpace(c.Transcription.VADMethod))
	if c.Transcription.VADMethod == "" {
		c.Transcription.VADMethod = defaultVADMethod
	}
	langs := make([]string, 0, len(c.Transcription.AllowedLanguages))
	seen := make(map[string]struct{}, len(c.Transcription.AllowedLanguages))
	for _, lang := range c.Transcription.AllowedLanguages {
		normalized := strings.ToLower(strings.TrimSpace(lang))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		langs = append(langs, normalized)
	}
	if len(langs) == 0 {
		langs = []string{"zh", "en"}
	}
	c.Transcription.AllowedLanguages = langs
}

func (c *Config) normalizeDiarization() {
	c.Diarization.HFToken = strings.TrimSpace(c.Diarization.HFToken)
	if c.Diarization.HFToken == "" {
		for _, key := range []string{"SCRIBE_HF_TOKEN", "HUGGING_FACE_HUB_TOKEN", "HF_TOKEN"} {
			if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
				c.Diarization.HFToken = strings.TrimSpace(value)
				break
			}
		}
	}
	if c.Diarization.MinSpeakers < 0 {
		c.Diarization.MinSpeakers = 0
	}
	if c.Diarization.MaxSpeakers < 0 {
		c.Diarization.MaxSpeakers = 0
	}
}

func (c *Config) normalizeTranslation() {
	c.Translation.SourceLanguage = strings.ToLower(strings.TrimSpace(c.Translation.SourceLanguage))
	if c.Translation.SourceLanguage == "" {
		c.Translation.SourceLanguage = defaultSourceLanguage
	}
	c.Translation.TargetLanguage = strings.TrimSpace(c.Translation.TargetLanguage)
	if c.Translation.TargetLanguage == "" {
		c.Translation.TargetLanguage = defaultTargetLanguage
	}
	if c.Translation.TimeoutSeconds <= 0 {
		c.Translation.TimeoutSeconds = defaultTranslateTimeout
	}
}

func (c *Config) normalizeReport() {
	c.Report.FontFamily = strings.TrimSpace(c.Report.FontFamily)
	if c.Report.FontFamily == "" {
		c.Report.FontFamily = defaultReportFontFamily
	}
	if c.Report.FontSize <= 0 {
		c.Report.FontSize = defaultReportFontSize
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.WatchPollInterval <= 0 {
		c.Workflow.WatchPollInterval = defaultWatchPollInterval
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = defaultErrorRetryInterval
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
