package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"yt-transcribe/internal/config"
	"yt-transcribe/internal/logging"
	"yt-transcribe/internal/notifications"
	"yt-transcribe/internal/pipeline"
	"yt-transcribe/internal/preflight"
	"yt-transcribe/internal/services/ytdlp"
	"yt-transcribe/internal/summarize"
	"yt-transcribe/internal/testsupport"
)

const testURL = "https://www.youtube.com/watch?v=abc123"

type stubResolver struct{}

func (stubResolver) Resolve(context.Context, string) (ytdlp.Metadata, error) {
	return ytdlp.Metadata{ID: "abc123", Title: "Talk A", WebpageURL: testURL}, nil
}

type stubDownloader struct{}

func (stubDownloader) Download(_ context.Context, _, id, dir string, _ bool) (string, error) {
	path := filepath.Join(dir, id+".opus")
	return path, os.WriteFile(path, []byte("audio"), 0o644)
}

type stubTranscriber struct{ err error }

func (s stubTranscriber) Transcribe(_ context.Context, audioPath, outputDir string, _ bool) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	path := filepath.Join(outputDir, base+".txt")
	return path, os.WriteFile(path, []byte("hello transcript"), 0o644)
}

type stubSummarizer struct {
	checkErr error
	// model receives the requested model override when set.
	model *string
}

func (s stubSummarizer) Summarize(_ context.Context, req summarize.Request) (string, error) {
	if s.model != nil {
		*s.model = req.Model
	}
	return "- insight one", nil
}

func (s stubSummarizer) Check(context.Context) error { return s.checkErr }

type stubPublisher struct{}

func (stubPublisher) Publish(context.Context, string, string, string) (string, error) {
	return "https://paste.example/?id#key", nil
}

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	transcribe stubTranscriber
	summarizer stubSummarizer
	publisher  pipeline.Publisher
	platform   preflight.Platform
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	for _, key := range []string{"YT_TRANSCRIBE_JOB_ROOT", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "NTFY_TOPIC", "SUMMARY_BACKEND"} {
		t.Setenv(key, "")
	}
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		publisher:  stubPublisher{},
		platform:   preflight.Platform{OS: "darwin", Arch: "arm64"},
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (env *cliTestEnv) options() []contextOption {
	return []contextOption{func(c *commandContext) {
		c.platform = env.platform
		c.newLogger = func(*config.Config) (*slog.Logger, error) { return logging.NewNop(), nil }
		c.newSummarizer = func(*config.Config) (summarize.Summarizer, error) { return env.summarizer, nil }
		c.newDependencies = func(cfg *config.Config, logger *slog.Logger, s summarize.Summarizer, _ bool) pipeline.Dependencies {
			return pipeline.Dependencies{
				Resolver:    stubResolver{},
				Downloader:  stubDownloader{},
				Transcriber: env.transcribe,
				Summarizer:  s,
				Publisher:   env.publisher,
				Notifier:    notifications.FromConfig(cfg, logger),
				JobRoot:     cfg.Paths.JobRoot,
				Logger:      logger,
			}
		}
	}}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(env.options()...)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func requireContains(t *testing.T, output string, substrings ...string) {
	t.Helper()
	for _, s := range substrings {
		if !strings.Contains(output, s) {
			t.Fatalf("expected output to contain %q\noutput:\n%s", s, output)
		}
	}
}

func requireNotContains(t *testing.T, output, substring string) {
	t.Helper()
	if strings.Contains(output, substring) {
		t.Fatalf("expected output not to contain %q\noutput:\n%s", substring, output)
	}
}

var errTranscribe = errors.New("mlx_whisper exited 1")
