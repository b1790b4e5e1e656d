package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"yt-transcribe/internal/ledger"
	"yt-transcribe/internal/notifications"
	"yt-transcribe/internal/services/ytdlp"
	"yt-transcribe/internal/summarize"
)

// Resolver fetches video metadata.
type Resolver interface {
	Resolve(ctx context.Context, url string) (ytdlp.Metadata, error)
}

// Downloader fetches the audio track into dir and returns its path.
type Downloader interface {
	Download(ctx context.Context, url, id, dir string, upgrade bool) (string, error)
}

// Transcriber writes a transcript next to the audio and returns its path.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, outputDir string, upgrade bool) (string, error)
}

// Publisher uploads the full transcript and returns a shareable link.
type Publisher interface {
	Publish(ctx context.Context, transcript, title, sourceURL string) (string, error)
}

// Notifier fans the finished summary out to every channel.
type Notifier interface {
	Dispatch(ctx context.Context, msg notifications.Message) []notifications.Result
}

// Dependencies wires the collaborators for each step. A nil Publisher
// disables publish-transcript.
type Dependencies struct {
	Resolver    Resolver
	Downloader  Downloader
	Transcriber Transcriber
	Summarizer  summarize.Summarizer
	Publisher   Publisher
	Notifier    Notifier
	Prompt      string
	JobRoot     string
	Logger      *slog.Logger
}

// RunOptions controls one invocation.
type RunOptions struct {
	// Upgrade runs the external tools at their latest published version.
	Upgrade bool
	// Resume prints the step status report before running.
	Resume bool
	// SummaryModel overrides the summary backend's configured model when set.
	SummaryModel string
	// Report receives human-readable progress lines. Nil discards them.
	Report io.Writer
}

// Result summarizes a completed run.
type Result struct {
	RunID         string
	JobKey        string
	JobDir        string
	Metadata      ytdlp.Metadata
	SummaryPath   string
	PasteURL      string
	Deliveries    []notifications.Result
	StepsExecuted []ledger.Step
	StepsReused   []ledger.Step
}

// CorruptedStateError reports a step marked done whose artifact is gone.
type CorruptedStateError struct {
	URL      string
	Step     ledger.Step
	Artifact string
	Path     string
	// Cleared is set when the driver already removed the step marker.
	Cleared bool
}

func (e *CorruptedStateError) Error() string {
	if e.Cleared {
		return fmt.Sprintf("corrupted state: %s artifact %s not found at %s; the %s marker was removed, rerun to %s again",
			e.Step, e.Artifact, e.Path, e.Step, e.Step)
	}
	return fmt.Sprintf("corrupted state: step %s is marked done but artifact %s is missing (%s); run `yt-transcribe clear %s --step %s` and rerun",
		e.Step, e.Artifact, e.Path, e.URL, e.Step)
}
