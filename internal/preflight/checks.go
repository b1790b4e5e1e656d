package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"

	"yt-transcribe/internal/config"
	"yt-transcribe/internal/deps"
	"yt-transcribe/internal/summarize"
)

// CheckPlatform verifies the host can run MLX-accelerated Whisper. The check
// passes on any platform when the requirement is disabled.
func CheckPlatform(platform Platform, requireAppleSilicon bool) Result {
	const name = "Platform"
	detected := platform.OS + " " + platform.Arch
	if platform.OS == "darwin" && platform.Arch == "arm64" {
		return Result{Name: name, Passed: true, Detail: "Apple Silicon (" + detected + ")"}
	}
	if !requireAppleSilicon {
		return Result{Name: name, Passed: true, Detail: detected + " (Apple Silicon check disabled)"}
	}
	return Result{
		Name:   name,
		Detail: "yt-transcribe requires Apple Silicon (M-series) Mac.\nDetected: " + detected,
	}
}

// Requirements lists the executables a run shells out to. With upgrade set,
// yt-dlp runs through uvx so the local binary becomes optional.
func Requirements(cfg *config.Config, upgrade bool) []deps.Requirement {
	requirements := []deps.Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.Tools.YtDlp,
			Description: "Required for metadata lookup and audio download",
			Optional:    upgrade,
		},
		{
			Name:        "uvx",
			Command:     cfg.Tools.UVX,
			Description: "Required to run mlx-whisper",
		},
	}
	if cfg.Email.Enabled {
		requirements = append(requirements, deps.Requirement{
			Name:        "sendmail",
			Command:     cfg.Email.SendmailPath,
			Description: "Used for email notifications",
			Optional:    true,
		})
	}
	if cfg.Desktop.Enabled {
		requirements = append(requirements, deps.Requirement{
			Name:        "terminal-notifier",
			Command:     cfg.Desktop.Command,
			Description: "Used for desktop notifications",
			Optional:    true,
		})
	}
	return requirements
}

// CheckBinaries reports availability of every required executable and the
// FFmpeg binary yt-dlp will use.
func CheckBinaries(cfg *config.Config, upgrade bool) []Result {
	statuses := deps.CheckBinaries(Requirements(cfg, upgrade))
	statuses = append(statuses, deps.CheckFFmpegForYtDlp(cfg.Tools.YtDlp, cfg.Tools.FFmpeg))

	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		result := Result{Name: status.Name, Passed: status.Available, Optional: status.Optional}
		if status.Available {
			result.Detail = status.Command
		} else {
			result.Detail = fmt.Sprintf("%s not found. Install it or ensure it is on PATH before running (%s).", status.Command, status.Description)
		}
		results = append(results, result)
	}
	return results
}

// CheckSummarizer runs the backend's local readiness check when it has one.
func CheckSummarizer(ctx context.Context, backend string, summarizer summarize.Summarizer) Result {
	name := "Summarizer (" + backend + ")"
	if summarizer == nil {
		return Result{Name: name, Detail: "summarizer not configured"}
	}
	checker, ok := summarizer.(summarize.Checker)
	if !ok {
		return Result{Name: name, Passed: true, Detail: "ready"}
	}
	if err := checker.Check(ctx); err != nil {
		return Result{Name: name, Detail: summarizeCheckError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "ready"}
}

// ProbeSummarizer runs CheckSummarizer and then, for backends that support
// it, a live request against the summarization API.
func ProbeSummarizer(ctx context.Context, backend string, summarizer summarize.Summarizer) Result {
	result := CheckSummarizer(ctx, backend, summarizer)
	if !result.Passed {
		return result
	}
	prober, ok := summarizer.(summarize.Prober)
	if !ok {
		return result
	}
	if err := prober.Probe(ctx); err != nil {
		return Result{Name: result.Name, Detail: summarizeCheckError(err)}
	}
	return Result{Name: result.Name, Passed: true, Detail: "ready (API reachable)"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// summarizeCheckError produces a human-readable summary for backend check failures.
func summarizeCheckError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (API unreachable)"
	}
	return err.Error()
}
