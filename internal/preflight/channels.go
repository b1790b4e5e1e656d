package preflight

import (
	"strings"

	"yt-transcribe/internal/config"
	"yt-transcribe/internal/services/telegram"
)

// CheckChannels evaluates each notification channel from configuration alone.
// Results are optional: a misconfigured channel fails softly during a run.
func CheckChannels(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckPasteFromConfig(cfg),
		CheckEmailFromConfig(cfg),
		CheckTelegramFromConfig(cfg),
		CheckDesktopFromConfig(cfg),
		CheckNtfyFromConfig(cfg),
	}
	for i := range results {
		results[i].Optional = true
	}
	return results
}

// CheckPasteFromConfig evaluates transcript publishing settings.
func CheckPasteFromConfig(cfg *config.Config) Result {
	const name = "PrivateBin"
	if !cfg.Paste.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Paste.URL}
}

// CheckEmailFromConfig evaluates email delivery settings.
func CheckEmailFromConfig(cfg *config.Config) Result {
	const name = "Email"
	if !cfg.Email.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	if strings.TrimSpace(cfg.Email.Recipient) == "" {
		return Result{Name: name, Detail: "Missing recipient"}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Email.Recipient}
}

// CheckTelegramFromConfig evaluates Telegram credentials.
func CheckTelegramFromConfig(cfg *config.Config) Result {
	const name = "Telegram"
	if !cfg.Telegram.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	client := telegram.NewClient(telegram.Config{
		BotToken: cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
		APIURL:   cfg.Telegram.APIURL,
	})
	if err := client.CheckCredentials(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: "Configured"}
}

// CheckDesktopFromConfig evaluates desktop notification settings.
func CheckDesktopFromConfig(cfg *config.Config) Result {
	const name = "Desktop"
	if !cfg.Desktop.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Desktop.Command}
}

// CheckNtfyFromConfig evaluates ntfy push settings.
func CheckNtfyFromConfig(cfg *config.Config) Result {
	const name = "ntfy"
	if strings.TrimSpace(cfg.Ntfy.Topic) == "" {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Ntfy.Topic}
}
