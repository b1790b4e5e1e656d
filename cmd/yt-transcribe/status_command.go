package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"yt-transcribe/internal/ledger"
	"yt-transcribe/internal/pipeline"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <url>",
		Short: "Show which steps are complete for a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			driver := pipeline.New(pipeline.Dependencies{JobRoot: cfg.Paths.JobRoot, Logger: ctx.logger(cfg)})
			statuses, dir, err := driver.Status(args[0])
			out := cmd.OutOrStdout()
			if errors.Is(err, ledger.ErrJobNotFound) {
				fmt.Fprintf(out, "No job state for %s (expected at %s)\n", strings.TrimSpace(args[0]), dir)
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "State directory: %s\n", dir)
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Step", "Status", "Completed", "Artifacts"},
				buildStepRows(statuses, shouldColorize(out)),
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func buildStepRows(statuses []ledger.StepStatus, colorize bool) [][]string {
	rows := make([][]string, 0, len(statuses))
	for i, s := range statuses {
		state := "○ pending"
		completed := "-"
		if s.Done {
			state = "✓ completed"
			completed = formatTimestamp(s.CompletedAt)
			if colorize {
				state = ansiGreen + state + ansiReset
			}
		}
		artifacts := strings.Join(s.Artifacts, ", ")
		if artifacts == "" {
			artifacts = "-"
		}
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), string(s.Step), state, completed, artifacts})
	}
	return rows
}
