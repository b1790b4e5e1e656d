package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"yt-transcribe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Notification channels are disabled and the Apple Silicon gate is off so
// tests behave the same on every host.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.JobRoot = filepath.Join(base, "jobs")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "history.db")
	cfgVal.Transcription.RequireAppleSilicon = false
	cfgVal.Paste.Enabled = false
	cfgVal.Email.Enabled = false
	cfgVal.Email.Recipient = "tester@localhost"
	cfgVal.Email.Sender = "tester@localhost"
	cfgVal.Telegram.Enabled = false
	cfgVal.Desktop.Enabled = false
	cfgVal.Ntfy.Topic = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithSummaryBackend selects the summarization backend and key.
func WithSummaryBackend(backend, apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Summary.Backend = backend
		switch backend {
		case config.BackendOpenAI:
			b.cfg.Summary.OpenAI.APIKey = apiKey
		case config.BackendGemini:
			b.cfg.Summary.Gemini.APIKey = apiKey
		}
	}
}

// WithTelegram enables Telegram delivery against apiURL.
func WithTelegram(apiURL, token, chatID string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Telegram.Enabled = true
		b.cfg.Telegram.APIURL = apiURL
		b.cfg.Telegram.BotToken = token
		b.cfg.Telegram.ChatID = chatID
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default external binaries
// are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"yt-dlp", "uvx", "bunx", "ffmpeg", "terminal-notifier"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			WriteExecutable(b.t, binDir, name, "exit 0")
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// WriteExecutable writes a shell script named name into dir and returns its path.
func WriteExecutable(t testing.TB, dir, name, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.JobRoot)
}
