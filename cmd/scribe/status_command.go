package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/deps"
	"scribe/internal/logging"
	"scribe/internal/preflight"
	"scribe/internal/queue"
	"scribe/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show dependency, environment, and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				fmt.Fprintln(out, renderSectionHeader("Dependencies", colorize))
				for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
					kind := statusOK
					message := status.Detail
					if !status.Available {
						kind = statusError
						if status.Optional {
							kind = statusWarn
						}
						message = status.Description
					}
					fmt.Fprintln(out, renderStatusLine(status.Name, kind, message, colorize))
				}

				fmt.Fprintln(out)
				fmt.Fprintln(out, renderSectionHeader("Environment", colorize))
				for _, result := range preflight.RunAll(cmd.Context(), cfg) {
					kind := statusOK
					if !result.Passed {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
				}

				fmt.Fprintln(out)
				fmt.Fprintln(out, renderSectionHeader("Stages", colorize))
				manager := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), nil)
				for _, health := range manager.Health(cmd.Context()) {
					kind := statusOK
					if !health.Ready {
						kind = statusWarn
					}
					fmt.Fprintln(out, renderStatusLine(health.Name, kind, health.Detail, colorize))
				}

				fmt.Fprintln(out)
				fmt.Fprintln(out, renderSectionHeader("Queue", colorize))
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				total := 0
				rows := make([][]string, 0, len(stats))
				for _, status := range queue.AllStatuses() {
					count, ok := stats[status]
					if !ok || count == 0 {
						continue
					}
					total += count
					rows = append(rows, []string{string(status), fmt.Sprintf("%d", count)})
				}
				if total == 0 {
					fmt.Fprintln(out, statusIndent+"Queue is empty")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]column{{title: "Status"}, {title: "Count", numeric: true}},
					rows,
				))
				return nil
			})
		},
	}
}
