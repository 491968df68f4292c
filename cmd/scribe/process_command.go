package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/logging"
	"scribe/internal/queue"
	"scribe/internal/workflow"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var overrides pipelineOverrides

	cmd := &cobra.Command{
		Use:   "process <audio-file>",
		Short: "Transcribe a single recording and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path %q: %w", args[0], err)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				if err := overrides.apply(cfg); err != nil {
					return err
				}
				logger, err := logging.NewForDir(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}

				manager := workflow.NewManager(cfg, store, logger)
				item, err := manager.ProcessFile(signalCtx, source)
				if err != nil {
					return err
				}
				if item.Status == queue.StatusFailed {
					return fmt.Errorf("processing failed: %s", item.ErrorMessage)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Transcript written to %s\n", item.MarkdownFile)
				if item.PDFFile != "" {
					fmt.Fprintf(out, "PDF written to %s\n", item.PDFFile)
				}
				return nil
			})
		},
	}

	overrides.register(cmd, false)
	return cmd
}
