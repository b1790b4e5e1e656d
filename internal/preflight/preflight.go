package preflight

import (
	"context"
	"runtime"

	"yt-transcribe/internal/config"
	"yt-transcribe/internal/ledger"
	"yt-transcribe/internal/services"
	"yt-transcribe/internal/summarize"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Detail   string
	Optional bool
}

// Blocking reports whether a failed check must stop a run.
func (r Result) Blocking() bool {
	return !r.Passed && !r.Optional
}

// Platform identifies the host the checks evaluate.
type Platform struct {
	OS   string
	Arch string
}

// HostPlatform returns the platform of the running binary.
func HostPlatform() Platform {
	return Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

// GateOptions narrows the gate to the work a run still has to do.
type GateOptions struct {
	// Upgrade runs yt-dlp through uvx, so the local binary becomes optional.
	Upgrade bool
	// Done reports steps the job ledger already marks complete. Nil means a
	// fresh job.
	Done func(ledger.Step) bool
}

func (o GateOptions) done(step ledger.Step) bool {
	return o.Done != nil && o.Done(step)
}

// Gate runs the checks a pipeline run depends on, in order: platform,
// external binaries, then the summarizer. Tools and credentials for steps the
// ledger already marks done are not required. It returns an ErrPrecondition
// error for the first blocking failure. Gate never contacts a remote API.
func Gate(ctx context.Context, cfg *config.Config, platform Platform, summarizer summarize.Summarizer, opts GateOptions) error {
	if cfg == nil {
		return services.Wrap(services.ErrConfiguration, "preflight", "load config", "configuration unavailable", nil)
	}
	if result := CheckPlatform(platform, cfg.Transcription.RequireAppleSilicon); result.Blocking() {
		return &PreconditionError{Check: result.Name, Detail: result.Detail}
	}

	needDownload := !opts.done(ledger.StepFetchMetadata) || !opts.done(ledger.StepDownloadAudio)
	needTranscribe := !opts.done(ledger.StepTranscribe)
	for _, result := range CheckBinaries(cfg, opts.Upgrade) {
		if !result.Blocking() {
			continue
		}
		switch result.Name {
		case "yt-dlp", "FFmpeg":
			if !needDownload {
				continue
			}
		case "uvx":
			if !needTranscribe && !(opts.Upgrade && needDownload) {
				continue
			}
		}
		return &PreconditionError{Check: result.Name, Detail: result.Detail}
	}

	if opts.done(ledger.StepSummarize) {
		return nil
	}
	if result := CheckSummarizer(ctx, cfg.Summary.Backend, summarizer); result.Blocking() {
		return &PreconditionError{Check: result.Name, Detail: result.Detail}
	}
	return nil
}

// RunAll executes every check for the doctor report. Channel checks are
// informational and never block.
func RunAll(ctx context.Context, cfg *config.Config, platform Platform, summarizer summarize.Summarizer) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckPlatform(platform, cfg.Transcription.RequireAppleSilicon))
	results = append(results, CheckBinaries(cfg, false)...)
	results = append(results, ProbeSummarizer(ctx, cfg.Summary.Backend, summarizer))

	// Job root (always checked)
	results = append(results, CheckDirectoryAccess("Job directory", cfg.Paths.JobRoot))

	// Log directory (when configured)
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	results = append(results, CheckChannels(cfg)...)
	return results
}

// PreconditionError reports a failed gate check. It unwraps to
// services.ErrPrecondition.
type PreconditionError struct {
	Check  string
	Detail string
}

func (e *PreconditionError) Error() string {
	return e.Detail
}

func (e *PreconditionError) Unwrap() error {
	return services.ErrPrecondition
}
