package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"scribe/internal/daemon"
	"scribe/internal/deps"
	"scribe/internal/logging"
	"scribe/internal/preflight"
	"scribe/internal/queue"
	"scribe/internal/workflow"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var skipChecks bool
	var overrides pipelineOverrides

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the recordings directory and process new audio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := overrides.apply(cfg); err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if !skipChecks {
				if err := runStartupChecks(cmd, ctx); err != nil {
					return err
				}
			}

			logger, err := logging.NewForDir(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := queue.Open(cfg.Paths.WorkDir)
			if err != nil {
				return fmt.Errorf("open queue store: %w", err)
			}
			defer store.Close()

			// Items abandoned mid-stage by a previous run go back to their
			// last stable status.
			reset, err := store.ResetStuckProcessing(signalCtx)
			if err != nil {
				return fmt.Errorf("reset stuck items: %w", err)
			}
			if reset > 0 {
				logger.Info("reset interrupted items",
					logging.String(logging.FieldComponent, "watch"),
					logging.Int64("count", reset),
				)
			}

			manager := workflow.NewManager(cfg, store, logger)
			d, err := daemon.New(cfg, store, logger, manager)
			if err != nil {
				return fmt.Errorf("create daemon: %w", err)
			}
			defer d.Close()

			if err := d.Start(signalCtx); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", cfg.Paths.WatchDir)
			<-signalCtx.Done()
			d.Stop()
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "Skip dependency and environment checks at startup")
	overrides.register(cmd, true)
	return cmd
}

// runStartupChecks verifies external binaries and the environment before the
// watch loop starts. Missing optional tools only produce a warning.
func runStartupChecks(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	var missing []string
	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		if status.Available {
			continue
		}
		if status.Optional {
			fmt.Fprintf(out, "warn: optional dependency %s not found (%s)\n", status.Name, status.Description)
			continue
		}
		missing = append(missing, fmt.Sprintf("%s (%s)", status.Name, status.Command))
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required dependencies: %s", strings.Join(missing, ", "))
	}

	results := preflight.RunAll(cmd.Context(), cfg)
	for _, result := range results {
		if !result.Passed {
			fmt.Fprintf(out, "check failed: %s: %s\n", result.Name, result.Detail)
		}
	}
	if !preflight.Passed(results) {
		return fmt.Errorf("environment checks failed; fix the issues above or rerun with --skip-checks")
	}
	return nil
}
