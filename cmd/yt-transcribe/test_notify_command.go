package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"yt-transcribe/internal/notifications"
)

const testNotifyMarkdown = `# yt-transcribe test notification

This message was sent by **yt-transcribe test-notify**.

- Email, Telegram and desktop delivery use the same summary path as a real run
- No video was processed
`

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test message through every enabled channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fanout := notifications.FromConfig(cfg, ctx.logger(cfg))
			if len(fanout.Channels()) == 0 {
				fmt.Fprintln(out, "No notification channels enabled")
				return nil
			}

			summaryPath := filepath.Join(cfg.Paths.LogDir, "test-notify.md")
			if err := os.WriteFile(summaryPath, []byte(testNotifyMarkdown), 0o644); err != nil {
				return fmt.Errorf("write test summary: %w", err)
			}

			results := fanout.Dispatch(cmd.Context(), notifications.Message{
				Title:       "Test notification",
				Markdown:    testNotifyMarkdown,
				SummaryPath: summaryPath,
			})

			rows := make([][]string, 0, len(results))
			failed := 0
			for _, r := range results {
				detail := "-"
				if r.Err != nil {
					detail = r.Err.Error()
				}
				if !r.OK() && !r.Skipped {
					failed++
				}
				rows = append(rows, []string{r.Channel, r.Status(), r.Elapsed.Round(time.Millisecond).String(), detail})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Channel", "Result", "Elapsed", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			if failed > 0 {
				return errors.New(pluralize(failed, "channel failed", "channels failed"))
			}
			fmt.Fprintln(out, "Test notification sent")
			return nil
		},
	}
}
