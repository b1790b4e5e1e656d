package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	JobRoot   string `toml:"job_root"`
	LogDir    string `toml:"log_dir"`
	HistoryDB string `toml:"history_db"`
}

// Tools names the external executables the pipeline shells out to.
type Tools struct {
	YtDlp  string `toml:"ytdlp"`
	UVX    string `toml:"uvx"`
	BunX   string `toml:"bunx"`
	FFmpeg string `toml:"ffmpeg"`
}

// Transcription contains speech-to-text settings.
type Transcription struct {
	Model               string `toml:"model"`
	Package             string `toml:"package"`
	RequireAppleSilicon bool   `toml:"require_apple_silicon"`
}

// Codex contains settings for the Codex CLI summarization backend.
type Codex struct {
	Package string `toml:"package"`
	Model   string `toml:"model"`
}

// OpenAI contains settings for the chat-completions summarization backend.
type OpenAI struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"` // API base; chat/completions is appended
	Model   string `toml:"model"`
}

// Gemini contains settings for the Gemini summarization backend.
type Gemini struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// Summary selects and configures the summarization backend.
type Summary struct {
	Backend        string `toml:"backend"`
	Model          string `toml:"model"`
	Prompt         string `toml:"prompt"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	RetryAttempts  int    `toml:"retry_attempts"`
	Codex          Codex  `toml:"codex"`
	OpenAI         OpenAI `toml:"openai"`
	Gemini         Gemini `toml:"gemini"`
}

// Paste contains PrivateBin publishing settings.
type Paste struct {
	Enabled        bool   `toml:"enabled"`
	URL            string `toml:"url"`
	Expire         string `toml:"expire"`
	Formatter      string `toml:"formatter"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Email contains sendmail delivery settings.
type Email struct {
	Enabled       bool   `toml:"enabled"`
	Recipient     string `toml:"recipient"`
	Sender        string `toml:"sender"`
	SendmailPath  string `toml:"sendmail_path"`
	SubjectPrefix string `toml:"subject_prefix"`
}

// Telegram contains Bot API delivery settings.
type Telegram struct {
	Enabled        bool   `toml:"enabled"`
	BotToken       string `toml:"bot_token"`
	ChatID         string `toml:"chat_id"`
	APIURL         string `toml:"api_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Desktop contains local desktop notification settings.
type Desktop struct {
	Enabled bool   `toml:"enabled"`
	Command string `toml:"command"`
	Title   string `toml:"title"`
	Message string `toml:"message"`
	Sound   string `toml:"sound"`
}

// Ntfy contains configuration for ntfy push notifications.
type Ntfy struct {
	Topic          string `toml:"topic"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// History controls the SQLite run history index.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for yt-transcribe.
//
// Configuration sections by subsystem:
//   - Paths: job root, log directory and history database
//   - Tools: external executables
//   - Transcription: mlx-whisper model and package
//   - Summary: summarization backend selection and credentials
//   - Paste: PrivateBin transcript publishing
//   - Email, Telegram, Desktop, Ntfy: notification channels
//   - History: run history index
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Tools         Tools         `toml:"tools"`
	Transcription Transcription `toml:"transcription"`
	Summary       Summary       `toml:"summary"`
	Paste         Paste         `toml:"paste"`
	Email         Email         `toml:"email"`
	Telegram      Telegram      `toml:"telegram"`
	Desktop       Desktop       `toml:"desktop"`
	Ntfy          Ntfy          `toml:"ntfy"`
	History       History       `toml:"history"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and environment overrides applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("yt-transcribe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the job root and log directory.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.JobRoot, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the chat-completions connection settings.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
	RetryAttempts  int
}

// SummaryLLM returns the connection settings for the openai summarization backend.
// The shared summary.model wins over the backend-specific model when set.
func (c *Config) SummaryLLM() LLMConfig {
	model := strings.TrimSpace(c.Summary.Model)
	if model == "" {
		model = strings.TrimSpace(c.Summary.OpenAI.Model)
	}
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.Summary.OpenAI.APIKey),
		BaseURL:        strings.TrimSpace(c.Summary.OpenAI.BaseURL),
		Model:          model,
		TimeoutSeconds: c.Summary.TimeoutSeconds,
		RetryAttempts:  c.Summary.RetryAttempts,
	}
}

// SummaryModel returns the effective model for the selected backend.
func (c *Config) SummaryModel() string {
	if model := strings.TrimSpace(c.Summary.Model); model != "" {
		return model
	}
	switch c.Summary.Backend {
	case BackendOpenAI:
		return c.Summary.OpenAI.Model
	case BackendGemini:
		return c.Summary.Gemini.Model
	default:
		return c.Summary.Codex.Model
	}
}

// HistoryPath returns the run history database path, or "" when history is disabled.
func (c *Config) HistoryPath() string {
	if !c.History.Enabled {
		return ""
	}
	return c.Paths.HistoryDB
}
