package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"yt-transcribe/internal/config"
)

func clearOverrideEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"YT_TRANSCRIBE_JOB_ROOT", "WHISPER_MODEL", "SUMMARY_BACKEND", "SUMMARY_MODEL",
		"CODEX_MODEL", "OPENAI_API_KEY", "OPENAI_BASE_URL", "LLM_MODEL", "LITELLM_MODEL",
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "GEMINI_MODEL", "PRIVATEBIN_URL",
		"EMAIL_RECIPIENT", "EMAIL_SENDER", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
		"NTFY_TOPIC", "YT_TRANSCRIBE_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearOverrideEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("USER", "alex")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantJobs := filepath.Join(tempHome, ".local", "share", "yt-transcribe", "jobs")
	if cfg.Paths.JobRoot != wantJobs {
		t.Fatalf("unexpected job root: got %q want %q", cfg.Paths.JobRoot, wantJobs)
	}
	if cfg.Summary.Backend != config.BackendCodex {
		t.Fatalf("expected codex backend by default, got %q", cfg.Summary.Backend)
	}
	if cfg.Summary.RetryAttempts != 1 {
		t.Fatalf("expected a single summary attempt by default, got %d", cfg.Summary.RetryAttempts)
	}
	if cfg.SummaryModel() != "gpt-5.2-codex" {
		t.Fatalf("unexpected default summary model %q", cfg.SummaryModel())
	}
	if cfg.Email.Recipient != "alex@localhost" {
		t.Fatalf("unexpected default recipient %q", cfg.Email.Recipient)
	}
	if !strings.HasPrefix(cfg.Email.Sender, "alex@") {
		t.Fatalf("unexpected default sender %q", cfg.Email.Sender)
	}
	if cfg.Paste.URL != "https://privatebin.net/" {
		t.Fatalf("unexpected paste url %q", cfg.Paste.URL)
	}
	if cfg.HistoryPath() == "" {
		t.Fatal("expected history enabled by default")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.JobRoot, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearOverrideEnv(t)
	t.Setenv("HOME", t.TempDir())
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "yt-transcribe.toml")

	type payload struct {
		Paths struct {
			JobRoot string `toml:"job_root"`
		} `toml:"paths"`
		Summary struct {
			Backend string `toml:"backend"`
			OpenAI  struct {
				APIKey string `toml:"api_key"`
				Model  string `toml:"model"`
			} `toml:"openai"`
		} `toml:"summary"`
		Telegram struct {
			BotToken string `toml:"bot_token"`
			ChatID   string `toml:"chat_id"`
		} `toml:"telegram"`
	}
	custom := payload{}
	custom.Paths.JobRoot = filepath.Join(tempDir, "jobs")
	custom.Summary.Backend = "OpenAI"
	custom.Summary.OpenAI.APIKey = "file-key"
	custom.Summary.OpenAI.Model = "gpt-4.1-mini"
	custom.Telegram.BotToken = "file-token"
	custom.Telegram.ChatID = "42"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.JobRoot != filepath.Join(tempDir, "jobs") {
		t.Fatalf("unexpected job root: %q", cfg.Paths.JobRoot)
	}
	if cfg.Summary.Backend != config.BackendOpenAI {
		t.Fatalf("expected backend to be canonicalized, got %q", cfg.Summary.Backend)
	}
	llm := cfg.SummaryLLM()
	if llm.APIKey != "file-key" || llm.Model != "gpt-4.1-mini" {
		t.Fatalf("unexpected llm config: %+v", llm)
	}
	if cfg.Telegram.BotToken != "file-token" || cfg.Telegram.ChatID != "42" {
		t.Fatalf("unexpected telegram config: %+v", cfg.Telegram)
	}
	if !cfg.Telegram.Enabled || !cfg.Paste.Enabled {
		t.Fatal("expected omitted enabled flags to keep their defaults")
	}
}

func TestEnvironmentOverridesFileValues(t *testing.T) {
	clearOverrideEnv(t)
	t.Setenv("HOME", t.TempDir())
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.toml")
	contents := `
[telegram]
bot_token = "file-token"
chat_id = "1"

[summary]
backend = "codex"

[paste]
url = "https://paste.example.com"
`
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("SUMMARY_BACKEND", "gemini")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("YT_TRANSCRIBE_JOB_ROOT", filepath.Join(tempDir, "env-jobs"))

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Telegram.BotToken != "env-token" {
		t.Fatalf("expected env token to win, got %q", cfg.Telegram.BotToken)
	}
	if cfg.Telegram.ChatID != "1" {
		t.Fatalf("expected file chat id to survive, got %q", cfg.Telegram.ChatID)
	}
	if cfg.Summary.Backend != config.BackendGemini {
		t.Fatalf("expected env backend to win, got %q", cfg.Summary.Backend)
	}
	if cfg.Summary.Gemini.APIKey != "google-key" {
		t.Fatalf("expected GOOGLE_API_KEY fallback, got %q", cfg.Summary.Gemini.APIKey)
	}
	if cfg.SummaryModel() != "gemini-2.5-flash" {
		t.Fatalf("unexpected gemini model %q", cfg.SummaryModel())
	}
	if cfg.Paths.JobRoot != filepath.Join(tempDir, "env-jobs") {
		t.Fatalf("expected env job root, got %q", cfg.Paths.JobRoot)
	}
	if cfg.Paste.URL != "https://paste.example.com/" {
		t.Fatalf("expected trailing slash on paste url, got %q", cfg.Paste.URL)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"backend", func(c *config.Config) { c.Summary.Backend = "bard" }, "summary.backend"},
		{"timeout", func(c *config.Config) { c.Summary.TimeoutSeconds = 0 }, "summary.timeout_seconds"},
		{"paste url", func(c *config.Config) { c.Paste.URL = "ftp://paste" }, "paste.url"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"telegram timeout", func(c *config.Config) { c.Telegram.TimeoutSeconds = -1 }, "telegram.timeout_seconds"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestValidateAllowsBadPasteURLWhenDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Paste.Enabled = false
	cfg.Paste.URL = "not a url"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected disabled paste to skip url validation, got %v", err)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	clearOverrideEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Desktop.Sound != "Glass" {
		t.Fatalf("unexpected desktop sound %q", cfg.Desktop.Sound)
	}
}
