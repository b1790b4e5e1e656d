package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"yt-transcribe/internal/config"
	"yt-transcribe/internal/jobkey"
	"yt-transcribe/internal/ledger"
)

func newClearCommand(ctx *commandContext) *cobra.Command {
	var stepFlag string
	var cascade bool
	var all bool

	cmd := &cobra.Command{
		Use:   "clear <url>",
		Short: "Reset recorded steps so they run again",
		Long: "Clear removes completion markers from a job's ledger.\n\n" +
			"  --step S            clear one step\n" +
			"  --step S --cascade  clear S and every later step\n" +
			"  --all               delete the whole job directory and its run history",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			url := args[0]
			key := jobkey.Derive(url)
			out := cmd.OutOrStdout()

			if all {
				if err := clearJob(cmd, ctx, cfg, key); err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed job state for %s\n", url)
				return nil
			}
			if strings.TrimSpace(stepFlag) == "" {
				return errors.New("specify --step <step> or --all")
			}
			step, err := ledger.ParseStep(stepFlag)
			if err != nil {
				return fmt.Errorf("%w (valid steps: %s)", err, stepNames())
			}

			job, err := ledger.OpenExisting(cfg.Paths.JobRoot, key)
			if err != nil {
				return err
			}
			unlock, err := job.Lock()
			if err != nil {
				return err
			}
			defer func() { _ = unlock() }()

			if cascade {
				err = job.ClearFrom(step)
			} else {
				err = job.Clear(step)
			}
			if err != nil {
				return err
			}
			if cascade {
				fmt.Fprintf(out, "Cleared %s and later steps for %s\n", step, url)
			} else {
				fmt.Fprintf(out, "Cleared %s for %s\n", step, url)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&stepFlag, "step", "s", "", "Step to clear ("+stepNames()+")")
	cmd.Flags().BoolVar(&cascade, "cascade", false, "Also clear every step after --step")
	cmd.Flags().BoolVar(&all, "all", false, "Delete the entire job directory")
	cmd.MarkFlagsMutuallyExclusive("step", "all")
	return cmd
}

func clearJob(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, key string) error {
	job, err := ledger.OpenExisting(cfg.Paths.JobRoot, key)
	if err != nil {
		return err
	}
	unlock, err := job.Lock()
	if err != nil {
		return err
	}
	removeErr := ledger.Remove(cfg.Paths.JobRoot, key)
	_ = unlock()
	if removeErr != nil {
		return removeErr
	}

	store, err := ctx.openHistory(cfg)
	if err != nil || store == nil {
		return nil
	}
	defer store.Close()
	if _, err := store.DeleteJob(cmd.Context(), key); err != nil {
		return fmt.Errorf("remove run history: %w", err)
	}
	return nil
}

func stepNames() string {
	names := make([]string, 0, len(ledger.Steps))
	for _, step := range ledger.Steps {
		names = append(names, string(step))
	}
	return strings.Join(names, ", ")
}
