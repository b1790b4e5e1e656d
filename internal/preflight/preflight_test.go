package preflight_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"yt-transcribe/internal/config"
	"yt-transcribe/internal/ledger"
	"yt-transcribe/internal/preflight"
	"yt-transcribe/internal/services"
	"yt-transcribe/internal/summarize"
	"yt-transcribe/internal/testsupport"
)

type fakeSummarizer struct {
	checkErr error
}

func (f *fakeSummarizer) Summarize(context.Context, summarize.Request) (string, error) {
	return "summary", nil
}

func (f *fakeSummarizer) Check(context.Context) error { return f.checkErr }

type uncheckedSummarizer struct{}

func (uncheckedSummarizer) Summarize(context.Context, summarize.Request) (string, error) {
	return "", nil
}

var appleSilicon = preflight.Platform{OS: "darwin", Arch: "arm64"}

func TestCheckPlatform(t *testing.T) {
	if r := preflight.CheckPlatform(appleSilicon, true); !r.Passed {
		t.Fatalf("expected pass on Apple Silicon, got %q", r.Detail)
	}
	r := preflight.CheckPlatform(preflight.Platform{OS: "linux", Arch: "amd64"}, true)
	if r.Passed {
		t.Fatal("expected failure on linux when Apple Silicon is required")
	}
	if !strings.Contains(r.Detail, "requires Apple Silicon (M-series) Mac") || !strings.Contains(r.Detail, "Detected: linux amd64") {
		t.Fatalf("unexpected detail %q", r.Detail)
	}
	if r := preflight.CheckPlatform(preflight.Platform{OS: "linux", Arch: "amd64"}, false); !r.Passed {
		t.Fatalf("expected pass when requirement disabled, got %q", r.Detail)
	}
}

func TestCheckDirectoryAccess(t *testing.T) {
	if r := preflight.CheckDirectoryAccess("test", t.TempDir()); !r.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", r.Detail)
	}
	if r := preflight.CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope")); r.Passed || r.Detail == "" {
		t.Fatalf("expected failure for missing dir, got %+v", r)
	}
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := preflight.CheckDirectoryAccess("test", f); r.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckSummarizer(t *testing.T) {
	ctx := context.Background()
	if r := preflight.CheckSummarizer(ctx, "codex", nil); r.Passed {
		t.Fatal("expected failure for nil summarizer")
	}
	if r := preflight.CheckSummarizer(ctx, "codex", uncheckedSummarizer{}); !r.Passed {
		t.Fatalf("expected pass without checker, got %q", r.Detail)
	}
	r := preflight.CheckSummarizer(ctx, "codex", &fakeSummarizer{checkErr: errors.New("bunx not found")})
	if r.Passed || r.Detail != "bunx not found" || r.Name != "Summarizer (codex)" {
		t.Fatalf("unexpected result %+v", r)
	}
	r = preflight.CheckSummarizer(ctx, "openai", &fakeSummarizer{checkErr: context.DeadlineExceeded})
	if !strings.Contains(r.Detail, "timed out") {
		t.Fatalf("expected timeout summary, got %q", r.Detail)
	}
}

func TestGatePassesWithStubbedBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if err := preflight.Gate(context.Background(), cfg, appleSilicon, &fakeSummarizer{}, preflight.GateOptions{}); err != nil {
		t.Fatalf("Gate: %v", err)
	}
}

func TestGateRejectsPlatform(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	cfg.Transcription.RequireAppleSilicon = true

	err := preflight.Gate(context.Background(), cfg, preflight.Platform{OS: "linux", Arch: "arm64"}, &fakeSummarizer{}, preflight.GateOptions{})
	if !errors.Is(err, services.ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition, got %v", err)
	}
	var pre *preflight.PreconditionError
	if !errors.As(err, &pre) || pre.Check != "Platform" {
		t.Fatalf("expected platform precondition, got %#v", err)
	}
}

func TestGateRejectsMissingBinary(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("uvx", "ffmpeg"))
	cfg.Tools.YtDlp = "yt-dlp-missing-for-test"

	err := preflight.Gate(context.Background(), cfg, appleSilicon, &fakeSummarizer{}, preflight.GateOptions{})
	var pre *preflight.PreconditionError
	if !errors.As(err, &pre) || pre.Check != "yt-dlp" {
		t.Fatalf("expected yt-dlp precondition, got %v", err)
	}
	if !strings.Contains(err.Error(), "yt-dlp-missing-for-test not found") {
		t.Fatalf("unexpected message %q", err.Error())
	}

	if err := preflight.Gate(context.Background(), cfg, appleSilicon, &fakeSummarizer{}, preflight.GateOptions{Upgrade: true}); err != nil {
		t.Fatalf("expected upgrade runs to skip the local yt-dlp, got %v", err)
	}
}

func TestGateRejectsSummarizer(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	err := preflight.Gate(context.Background(), cfg, appleSilicon, &fakeSummarizer{checkErr: errors.New("no key")}, preflight.GateOptions{})
	if !errors.Is(err, services.ErrPrecondition) || err.Error() != "no key" {
		t.Fatalf("expected summarizer precondition, got %v", err)
	}
}

func TestGateSkipsRequirementsOfCompletedSteps(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("uvx"))
	cfg.Tools.YtDlp = "yt-dlp-missing-for-test"
	cfg.Tools.FFmpeg = "ffmpeg-missing-for-test"
	downloaded := preflight.GateOptions{Done: func(step ledger.Step) bool {
		return step == ledger.StepFetchMetadata || step == ledger.StepDownloadAudio
	}}
	if err := preflight.Gate(context.Background(), cfg, appleSilicon, &fakeSummarizer{}, downloaded); err != nil {
		t.Fatalf("expected cached download to skip yt-dlp and ffmpeg, got %v", err)
	}

	metadataOnly := preflight.GateOptions{Done: func(step ledger.Step) bool { return step == ledger.StepFetchMetadata }}
	var pre *preflight.PreconditionError
	if err := preflight.Gate(context.Background(), cfg, appleSilicon, &fakeSummarizer{}, metadataOnly); !errors.As(err, &pre) {
		t.Fatalf("expected a pending download to require yt-dlp, got %v", err)
	}

	summarized := preflight.GateOptions{Done: func(step ledger.Step) bool { return step.Index() <= ledger.StepSummarize.Index() }}
	if err := preflight.Gate(context.Background(), cfg, appleSilicon, &fakeSummarizer{checkErr: errors.New("no key")}, summarized); err != nil {
		t.Fatalf("expected cached summary to skip the summarizer check, got %v", err)
	}
}

type probingSummarizer struct {
	fakeSummarizer
	probeErr error
	probes   int
}

func (p *probingSummarizer) Probe(context.Context) error {
	p.probes++
	return p.probeErr
}

func TestGateNeverProbes(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	s := &probingSummarizer{probeErr: errors.New("model rejected")}
	if err := preflight.Gate(context.Background(), cfg, appleSilicon, s, preflight.GateOptions{}); err != nil {
		t.Fatalf("Gate: %v", err)
	}
	if s.probes != 0 {
		t.Fatalf("expected no live probe from Gate, got %d", s.probes)
	}

	r := preflight.ProbeSummarizer(context.Background(), "openai", s)
	if r.Passed || r.Detail != "model rejected" || s.probes != 1 {
		t.Fatalf("unexpected probe result %+v (probes=%d)", r, s.probes)
	}
	s.probeErr = nil
	if r := preflight.ProbeSummarizer(context.Background(), "openai", s); !r.Passed {
		t.Fatalf("expected probe to pass, got %+v", r)
	}
}

func TestGateNilConfig(t *testing.T) {
	if err := preflight.Gate(context.Background(), nil, appleSilicon, nil, preflight.GateOptions{}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRunAllIncludesDirectoriesAndChannels(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	results := preflight.RunAll(context.Background(), cfg, appleSilicon, &fakeSummarizer{})

	byName := map[string]preflight.Result{}
	for _, r := range results {
		byName[r.Name] = r
	}
	for _, name := range []string{"Platform", "yt-dlp", "uvx", "FFmpeg", "Summarizer (codex)", "Job directory", "Log directory", "Telegram", "ntfy"} {
		r, ok := byName[name]
		if !ok {
			t.Fatalf("missing result %q in %+v", name, results)
		}
		if !r.Passed {
			t.Errorf("check %q failed: %s", name, r.Detail)
		}
	}
	if byName["Telegram"].Detail != "Disabled" || !byName["Telegram"].Optional {
		t.Fatalf("unexpected telegram result %+v", byName["Telegram"])
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := preflight.RunAll(context.Background(), nil, appleSilicon, nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestCheckTelegramFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Telegram.Enabled = true
	cfg.Telegram.BotToken = ""
	cfg.Telegram.ChatID = "42"
	r := preflight.CheckTelegramFromConfig(&cfg)
	if r.Passed || !strings.Contains(r.Detail, "TELEGRAM_BOT_TOKEN") {
		t.Fatalf("expected missing token result, got %+v", r)
	}

	cfg.Telegram.BotToken = "tok"
	if r := preflight.CheckTelegramFromConfig(&cfg); !r.Passed {
		t.Fatalf("expected configured telegram, got %+v", r)
	}

	channels := preflight.CheckChannels(&cfg)
	for _, r := range channels {
		if r.Blocking() {
			t.Fatalf("channel checks must never block, got %+v", r)
		}
	}
}
