package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"yt-transcribe/internal/config"
	"yt-transcribe/internal/services/desktop"
	"yt-transcribe/internal/services/email"
	"yt-transcribe/internal/services/telegram"
)

// EmailChannel sends the summary through sendmail.
type EmailChannel struct {
	Sender *email.Sender
}

func (c EmailChannel) Name() string { return "email" }

func (c EmailChannel) Deliver(ctx context.Context, msg Message) error {
	return c.Sender.Send(ctx, msg.Markdown, msg.Title)
}

// TelegramChannel sends the summary to a Telegram chat.
type TelegramChannel struct {
	Client *telegram.Client
	Logger *slog.Logger
}

func (c TelegramChannel) Name() string { return "telegram" }

func (c TelegramChannel) Deliver(ctx context.Context, msg Message) error {
	mode, err := c.Client.Send(ctx, msg.Markdown, msg.Title)
	if err != nil {
		return err
	}
	if c.Logger != nil {
		c.Logger.Debug("telegram delivery mode", slog.String("mode", mode.String()))
	}
	return nil
}

// DesktopChannel raises a local notification that opens the summary.
type DesktopChannel struct {
	Notifier *desktop.Notifier
}

func (c DesktopChannel) Name() string { return "desktop" }

func (c DesktopChannel) Deliver(ctx context.Context, msg Message) error {
	err := c.Notifier.Notify(ctx, msg.SummaryPath)
	if errors.Is(err, desktop.ErrNotInstalled) {
		return fmt.Errorf("%w: %v", ErrSkipped, err)
	}
	return err
}

// FromConfig builds the fan-out for every enabled channel in the order
// email, telegram, desktop, ntfy.
func FromConfig(cfg *config.Config, logger *slog.Logger) *FanOut {
	var channels []Channel
	if cfg.Email.Enabled {
		channels = append(channels, EmailChannel{Sender: email.NewSender(email.Config{
			Recipient:     cfg.Email.Recipient,
			Sender:        cfg.Email.Sender,
			SendmailPath:  cfg.Email.SendmailPath,
			SubjectPrefix: cfg.Email.SubjectPrefix,
		})})
	}
	if cfg.Telegram.Enabled {
		channels = append(channels, TelegramChannel{
			Client: telegram.NewClient(telegram.Config{
				BotToken:       cfg.Telegram.BotToken,
				ChatID:         cfg.Telegram.ChatID,
				APIURL:         cfg.Telegram.APIURL,
				TimeoutSeconds: cfg.Telegram.TimeoutSeconds,
			}),
			Logger: logger,
		})
	}
	if cfg.Desktop.Enabled {
		channels = append(channels, DesktopChannel{Notifier: desktop.NewNotifier(desktop.Config{
			Command: cfg.Desktop.Command,
			Title:   cfg.Desktop.Title,
			Message: cfg.Desktop.Message,
			Sound:   cfg.Desktop.Sound,
		})})
	}
	if ntfy := NewNtfyChannel(cfg.Ntfy.Topic, cfg.Ntfy.TimeoutSeconds); ntfy != nil {
		channels = append(channels, ntfy)
	}
	return NewFanOut(logger, channels...)
}
