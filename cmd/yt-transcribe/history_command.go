package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"yt-transcribe/internal/history"
	"yt-transcribe/internal/textutil"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent pipeline runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			store, err := ctx.openHistory(cfg)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			if store == nil {
				fmt.Fprintln(out, "Run history is disabled (set history.enabled = true)")
				return nil
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Status", "Duration", "Run/Reused", "Title", "URL"},
				buildHistoryRows(runs),
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

func buildHistoryRows(runs []*history.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		title := textutil.FirstNonEmpty(run.Title, "-")
		status := string(run.Status)
		if run.Status == history.StatusFailed && run.ErrorMessage != "" {
			status += ": " + textutil.Truncate(run.ErrorMessage, 40)
		}
		rows = append(rows, []string{
			formatTimestamp(run.StartedAt),
			status,
			formatDuration(run.Duration()),
			fmt.Sprintf("%d/%d", run.StepsExecuted, run.StepsReused),
			textutil.Truncate(title, 40),
			run.URL,
		})
	}
	return rows
}
