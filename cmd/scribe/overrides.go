package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scribe/internal/config"
)

// pipelineOverrides are per-invocation flag overrides applied on top of the
// loaded configuration.
type pipelineOverrides struct {
	watchDir      string
	model         string
	noTranslation bool
	noPDF         bool
}

func (o *pipelineOverrides) register(cmd *cobra.Command, includeWatchDir bool) {
	if includeWatchDir {
		cmd.Flags().StringVarP(&o.watchDir, "dir", "d", "", "Override the watched directory")
	}
	cmd.Flags().StringVarP(&o.model, "model", "m", "", "Override the WhisperX model size")
	cmd.Flags().BoolVar(&o.noTranslation, "no-translation", false, "Disable translation of non-target-language segments")
	cmd.Flags().BoolVar(&o.noPDF, "no-pdf", false, "Disable PDF generation")
}

func (o *pipelineOverrides) apply(cfg *config.Config) error {
	if o.watchDir != "" {
		expanded, err := config.ExpandPath(o.watchDir)
		if err != nil {
			return fmt.Errorf("resolve watch directory: %w", err)
		}
		cfg.Paths.WatchDir = expanded
	}
	if o.model != "" {
		cfg.Transcription.Model = o.model
	}
	if o.noTranslation {
		cfg.Translation.Enabled = false
	}
	if o.noPDF {
		cfg.Report.PDFEnabled = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return cfg.EnsureDirectories()
}
