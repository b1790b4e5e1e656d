package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"yt-transcribe/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			if hint := services.Remediation(err); hint != "" {
				fmt.Fprintln(os.Stderr, hint)
			}
		} else {
			fmt.Fprintln(os.Stderr, "Interrupted; rerun the same command to resume.")
		}
		os.Exit(1)
	}
}
