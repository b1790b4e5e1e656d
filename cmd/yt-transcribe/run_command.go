package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"yt-transcribe/internal/history"
	"yt-transcribe/internal/jobkey"
	"yt-transcribe/internal/ledger"
	"yt-transcribe/internal/logging"
	"yt-transcribe/internal/pipeline"
	"yt-transcribe/internal/preflight"
)

// runFlags carries the root command's run options.
type runFlags struct {
	upgrade bool
	resume  bool
	model   string
}

func runPipeline(cmd *cobra.Command, ctx *commandContext, url string, flags runFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger := ctx.logger(cfg)
	runCtx := cmd.Context()

	done := completedSteps(cfg.Paths.JobRoot, url)
	summarizer, err := ctx.newSummarizer(cfg)
	if err != nil {
		if !done(ledger.StepSummarize) {
			return err
		}
		logger.Debug("summarizer unavailable, summary already recorded", logging.Error(err))
		summarizer = nil
	}
	gate := preflight.GateOptions{Upgrade: flags.upgrade, Done: done}
	if err := preflight.Gate(runCtx, cfg, ctx.platform, summarizer, gate); err != nil {
		return err
	}

	runID := uuid.NewString()
	store, err := ctx.openHistory(cfg)
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run will not appear in yt-transcribe history"),
		)
	}
	var record *history.Run
	if store != nil {
		defer store.Close()
		record, err = store.Start(runCtx, runID, jobkey.Derive(url), url)
		if err != nil {
			logging.WarnWithContext(logger, "record run start failed", "history_write_failed", logging.Error(err))
		}
	}

	deps := ctx.newDependencies(cfg, logger, summarizer, flags.upgrade)
	driver := pipeline.New(deps, pipeline.WithRunID(func() string { return runID }))

	out := cmd.OutOrStdout()
	result, runErr := driver.Run(runCtx, url, pipeline.RunOptions{
		Upgrade:      flags.upgrade,
		Resume:       flags.resume,
		SummaryModel: flags.model,
		Report:       out,
	})

	// Detached so an interrupted run is still recorded as failed.
	if record != nil {
		finishRecord(context.WithoutCancel(runCtx), store, record, result, runErr, logger)
	}
	if runErr != nil {
		return runErr
	}

	fmt.Fprintln(out, "\nAll steps completed successfully!")
	fmt.Fprintf(out, "\nFinal output: %s\n", result.SummaryPath)
	if result.PasteURL != "" {
		fmt.Fprintf(out, "Full transcript: %s\n", result.PasteURL)
	}
	fmt.Fprintf(out, "State directory: %s\n", result.JobDir)
	return nil
}

// completedSteps reports the steps an earlier run of url already finished.
// A job without a ledger has none.
func completedSteps(jobRoot, url string) func(ledger.Step) bool {
	job, err := ledger.OpenExisting(jobRoot, jobkey.Derive(url))
	if err != nil {
		return func(ledger.Step) bool { return false }
	}
	return job.IsDone
}

func finishRecord(ctx context.Context, store *history.Store, record *history.Run, result pipeline.Result, runErr error, logger *slog.Logger) {
	record.Title = result.Metadata.Title
	record.SummaryPath = result.SummaryPath
	record.PasteURL = result.PasteURL
	record.StepsExecuted = len(result.StepsExecuted)
	record.StepsReused = len(result.StepsReused)
	if err := store.Finish(ctx, record, runErr); err != nil {
		logging.WarnWithContext(logger, "record run finish failed", "history_write_failed", logging.Error(err))
	}
}
