package config

import (
	"os"
	"strings"
)

// Summarization backends.
const (
	BackendCodex  = "codex"
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
)

const (
	defaultConfigPath            = "~/.config/yt-transcribe/config.toml"
	defaultJobRoot               = "~/.local/share/yt-transcribe/jobs"
	defaultLogDir                = "~/.local/share/yt-transcribe/logs"
	defaultHistoryDB             = "~/.local/share/yt-transcribe/history.db"
	defaultYtDlp                 = "yt-dlp"
	defaultUVX                   = "uvx"
	defaultBunX                  = "bunx"
	defaultFFmpeg                = "ffmpeg"
	defaultWhisperModel          = "mlx-community/whisper-large-v3-turbo"
	defaultWhisperPackage        = "mlx_whisper"
	defaultSummaryBackend        = BackendCodex
	defaultSummaryTimeout        = 300
	defaultSummaryRetryAttempts  = 1
	defaultCodexPackage          = "@openai/codex@latest"
	defaultCodexModel            = "gpt-5.2-codex"
	defaultOpenAIBaseURL         = "https://api.openai.com/v1"
	defaultOpenAIModel           = "gpt-4o-mini"
	defaultGeminiModel           = "gemini-2.5-flash"
	defaultPasteURL              = "https://privatebin.net/"
	defaultPasteExpire           = "1week"
	defaultPasteFormatter        = "markdown"
	defaultPasteTimeout          = 30
	defaultSendmailPath          = "/usr/sbin/sendmail"
	defaultSubjectPrefix         = "[YT Transcribe]"
	defaultTelegramAPIURL        = "https://api.telegram.org"
	defaultTelegramTimeout       = 60
	defaultDesktopCommand        = "terminal-notifier"
	defaultDesktopTitle          = "YT Transcribe"
	defaultDesktopMessage        = "Transcription complete"
	defaultDesktopSound          = "Glass"
	defaultNtfyTimeout           = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultRequireAppleSilicon   = true
	defaultHistoryEnabled        = true
	defaultPasteEnabled          = true
	defaultChannelEnabled        = true
	defaultEmailRecipientDomain  = "localhost"
	defaultEmailFallbackUsername = "user"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			JobRoot:   defaultJobRoot,
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Tools: Tools{
			YtDlp:  defaultYtDlp,
			UVX:    defaultUVX,
			BunX:   defaultBunX,
			FFmpeg: defaultFFmpeg,
		},
		Transcription: Transcription{
			Model:               defaultWhisperModel,
			Package:             defaultWhisperPackage,
			RequireAppleSilicon: defaultRequireAppleSilicon,
		},
		Summary: Summary{
			Backend:        defaultSummaryBackend,
			TimeoutSeconds: defaultSummaryTimeout,
			RetryAttempts:  defaultSummaryRetryAttempts,
			Codex: Codex{
				Package: defaultCodexPackage,
				Model:   defaultCodexModel,
			},
			OpenAI: OpenAI{
				BaseURL: defaultOpenAIBaseURL,
				Model:   defaultOpenAIModel,
			},
			Gemini: Gemini{
				Model: defaultGeminiModel,
			},
		},
		Paste: Paste{
			Enabled:        defaultPasteEnabled,
			URL:            defaultPasteURL,
			Expire:         defaultPasteExpire,
			Formatter:      defaultPasteFormatter,
			TimeoutSeconds: defaultPasteTimeout,
		},
		Email: Email{
			Enabled:       defaultChannelEnabled,
			SendmailPath:  defaultSendmailPath,
			SubjectPrefix: defaultSubjectPrefix,
		},
		Telegram: Telegram{
			Enabled:        defaultChannelEnabled,
			APIURL:         defaultTelegramAPIURL,
			TimeoutSeconds: defaultTelegramTimeout,
		},
		Desktop: Desktop{
			Enabled: defaultChannelEnabled,
			Command: defaultDesktopCommand,
			Title:   defaultDesktopTitle,
			Message: defaultDesktopMessage,
			Sound:   defaultDesktopSound,
		},
		Ntfy: Ntfy{
			TimeoutSeconds: defaultNtfyTimeout,
		},
		History: History{
			Enabled: defaultHistoryEnabled,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func currentUsername() string {
	for _, key := range []string{"USER", "LOGNAME"} {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return defaultEmailFallbackUsername
}

func defaultEmailRecipient() string {
	return currentUsername() + "@" + defaultEmailRecipientDomain
}

func defaultEmailSender() string {
	host, err := os.Hostname()
	if err != nil || strings.TrimSpace(host) == "" {
		host = defaultEmailRecipientDomain
	}
	return currentUsername() + "@" + host
}
