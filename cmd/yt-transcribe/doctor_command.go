package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"yt-transcribe/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check platform, tools, credentials and directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			summarizer, buildErr := ctx.newSummarizer(cfg)
			results := preflight.RunAll(cmd.Context(), cfg, ctx.platform, summarizer)
			if buildErr != nil {
				for i := range results {
					if strings.HasPrefix(results[i].Name, "Summarizer") {
						results[i].Detail = buildErr.Error()
					}
				}
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			blocking := 0
			for _, section := range groupResults(results) {
				for _, line := range renderSectionHeader(section.title, colorize) {
					fmt.Fprintln(out, line)
				}
				for _, r := range section.results {
					if r.Blocking() {
						blocking++
					}
					detail := strings.ReplaceAll(r.Detail, "\n", "; ")
					fmt.Fprintln(out, renderStatusLine(r.Name, resultKind(r), detail, colorize))
				}
				fmt.Fprintln(out)
			}
			if blocking > 0 {
				return errors.New(pluralize(blocking, "blocking check failed", "blocking checks failed"))
			}
			fmt.Fprintln(out, "All required checks passed")
			return nil
		},
	}
}

type resultSection struct {
	title   string
	results []preflight.Result
}

// groupResults orders doctor output by concern.
func groupResults(results []preflight.Result) []resultSection {
	sections := []resultSection{
		{title: "Platform & Tools"},
		{title: "Summarization"},
		{title: "Directories"},
		{title: "Notifications"},
	}
	for _, r := range results {
		idx := 0
		switch {
		case strings.HasPrefix(r.Name, "Summarizer"):
			idx = 1
		case strings.HasSuffix(r.Name, "directory"):
			idx = 2
		case r.Optional && isChannelCheck(r.Name):
			idx = 3
		}
		sections[idx].results = append(sections[idx].results, r)
	}
	out := sections[:0]
	for _, s := range sections {
		if len(s.results) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func isChannelCheck(name string) bool {
	switch name {
	case "PrivateBin", "Email", "Telegram", "Desktop", "ntfy":
		return true
	}
	return false
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

