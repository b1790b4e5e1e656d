package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(opts ...contextOption) *cobra.Command {
	var configFlag string
	var flags runFlags

	ctx := newCommandContext(&configFlag, opts...)

	rootCmd := &cobra.Command{
		Use:   "yt-transcribe [flags] <url>",
		Short: "Transcribe and summarize online videos",
		Long: "Download a video's audio, transcribe it with MLX Whisper, summarize the transcript " +
			"and deliver the summary by email, Telegram and desktop notification.\n\n" +
			"Every step is recorded in a per-video ledger; rerunning the same URL resumes " +
			"from the first incomplete step.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runPipeline(cmd, ctx, args[0], flags)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().BoolVarP(&flags.upgrade, "upgrade", "U", false, "Run yt-dlp and mlx-whisper at their latest published versions")
	rootCmd.Flags().BoolVarP(&flags.resume, "resume", "r", false, "Print the step status before resuming")
	rootCmd.Flags().StringVarP(&flags.model, "model", "m", "", "Summary model for this run (overrides summary.model)")

	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newClearCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))
	rootCmd.AddCommand(newTestNotifyCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
