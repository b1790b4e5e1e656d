package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeTranscription()
	c.normalizeSummary()
	c.normalizePaste()
	c.normalizeEmail()
	c.normalizeTelegram()
	c.normalizeDesktop()
	c.normalizeNtfy()
	c.normalizeLogging()
	return nil
}

// envOverride replaces target with the first non-empty environment value among keys.
func envOverride(target *string, keys ...string) {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
			return
		}
	}
}

func defaultString(target *string, fallback string) {
	*target = strings.TrimSpace(*target)
	if *target == "" {
		*target = fallback
	}
}

func defaultInt(target *int, fallback int) {
	if *target == 0 {
		*target = fallback
	}
}

func (c *Config) normalizePaths() error {
	envOverride(&c.Paths.JobRoot, "YT_TRANSCRIBE_JOB_ROOT")
	defaultString(&c.Paths.JobRoot, defaultJobRoot)
	defaultString(&c.Paths.LogDir, defaultLogDir)
	defaultString(&c.Paths.HistoryDB, defaultHistoryDB)

	var err error
	if c.Paths.JobRoot, err = expandPath(c.Paths.JobRoot); err != nil {
		return fmt.Errorf("paths.job_root: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	defaultString(&c.Tools.YtDlp, defaultYtDlp)
	defaultString(&c.Tools.UVX, defaultUVX)
	defaultString(&c.Tools.BunX, defaultBunX)
	defaultString(&c.Tools.FFmpeg, defaultFFmpeg)
}

func (c *Config) normalizeTranscription() {
	envOverride(&c.Transcription.Model, "WHISPER_MODEL")
	defaultString(&c.Transcription.Model, defaultWhisperModel)
	defaultString(&c.Transcription.Package, defaultWhisperPackage)
}

func (c *Config) normalizeSummary() {
	envOverride(&c.Summary.Backend, "SUMMARY_BACKEND")
	c.Summary.Backend = strings.ToLower(strings.TrimSpace(c.Summary.Backend))
	if c.Summary.Backend == "" {
		c.Summary.Backend = defaultSummaryBackend
	}
	envOverride(&c.Summary.Model, "SUMMARY_MODEL")
	c.Summary.Model = strings.TrimSpace(c.Summary.Model)
	c.Summary.Prompt = strings.TrimSpace(c.Summary.Prompt)
	defaultInt(&c.Summary.TimeoutSeconds, defaultSummaryTimeout)
	defaultInt(&c.Summary.RetryAttempts, defaultSummaryRetryAttempts)

	envOverride(&c.Summary.Codex.Model, "CODEX_MODEL")
	defaultString(&c.Summary.Codex.Package, defaultCodexPackage)
	defaultString(&c.Summary.Codex.Model, defaultCodexModel)

	envOverride(&c.Summary.OpenAI.APIKey, "OPENAI_API_KEY")
	envOverride(&c.Summary.OpenAI.BaseURL, "OPENAI_BASE_URL")
	envOverride(&c.Summary.OpenAI.Model, "LLM_MODEL", "LITELLM_MODEL")
	c.Summary.OpenAI.APIKey = strings.TrimSpace(c.Summary.OpenAI.APIKey)
	defaultString(&c.Summary.OpenAI.BaseURL, defaultOpenAIBaseURL)
	defaultString(&c.Summary.OpenAI.Model, defaultOpenAIModel)

	envOverride(&c.Summary.Gemini.APIKey, "GEMINI_API_KEY", "GOOGLE_API_KEY")
	envOverride(&c.Summary.Gemini.Model, "GEMINI_MODEL")
	c.Summary.Gemini.APIKey = strings.TrimSpace(c.Summary.Gemini.APIKey)
	defaultString(&c.Summary.Gemini.Model, defaultGeminiModel)
}

func (c *Config) normalizePaste() {
	envOverride(&c.Paste.URL, "PRIVATEBIN_URL")
	defaultString(&c.Paste.URL, defaultPasteURL)
	if !strings.HasSuffix(c.Paste.URL, "/") {
		c.Paste.URL += "/"
	}
	defaultString(&c.Paste.Expire, defaultPasteExpire)
	defaultString(&c.Paste.Formatter, defaultPasteFormatter)
	defaultInt(&c.Paste.TimeoutSeconds, defaultPasteTimeout)
}

func (c *Config) normalizeEmail() {
	envOverride(&c.Email.Recipient, "EMAIL_RECIPIENT")
	envOverride(&c.Email.Sender, "EMAIL_SENDER")
	defaultString(&c.Email.Recipient, defaultEmailRecipient())
	defaultString(&c.Email.Sender, defaultEmailSender())
	defaultString(&c.Email.SendmailPath, defaultSendmailPath)
	defaultString(&c.Email.SubjectPrefix, defaultSubjectPrefix)
}

func (c *Config) normalizeTelegram() {
	envOverride(&c.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	envOverride(&c.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	c.Telegram.BotToken = strings.TrimSpace(c.Telegram.BotToken)
	c.Telegram.ChatID = strings.TrimSpace(c.Telegram.ChatID)
	defaultString(&c.Telegram.APIURL, defaultTelegramAPIURL)
	c.Telegram.APIURL = strings.TrimRight(c.Telegram.APIURL, "/")
	defaultInt(&c.Telegram.TimeoutSeconds, defaultTelegramTimeout)
}

func (c *Config) normalizeDesktop() {
	defaultString(&c.Desktop.Command, defaultDesktopCommand)
	defaultString(&c.Desktop.Title, defaultDesktopTitle)
	defaultString(&c.Desktop.Message, defaultDesktopMessage)
	c.Desktop.Sound = strings.TrimSpace(c.Desktop.Sound)
}

func (c *Config) normalizeNtfy() {
	envOverride(&c.Ntfy.Topic, "NTFY_TOPIC")
	c.Ntfy.Topic = strings.TrimSpace(c.Ntfy.Topic)
	defaultInt(&c.Ntfy.TimeoutSeconds, defaultNtfyTimeout)
}

func (c *Config) normalizeLogging() {
	envOverride(&c.Logging.Level, "YT_TRANSCRIBE_LOG_LEVEL")
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
