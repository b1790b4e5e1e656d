package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"yt-transcribe/internal/config"
	"yt-transcribe/internal/history"
	"yt-transcribe/internal/logging"
	"yt-transcribe/internal/notifications"
	"yt-transcribe/internal/pipeline"
	"yt-transcribe/internal/preflight"
	"yt-transcribe/internal/services"
	"yt-transcribe/internal/services/privatebin"
	"yt-transcribe/internal/services/whisper"
	"yt-transcribe/internal/services/ytdlp"
	"yt-transcribe/internal/summarize"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	platform        preflight.Platform
	newLogger       func(*config.Config) (*slog.Logger, error)
	newSummarizer   func(*config.Config) (summarize.Summarizer, error)
	newDependencies func(cfg *config.Config, logger *slog.Logger, summarizer summarize.Summarizer, upgrade bool) pipeline.Dependencies
}

type contextOption func(*commandContext)

func newCommandContext(configFlag *string, opts ...contextOption) *commandContext {
	c := &commandContext{
		configFlag:      configFlag,
		platform:        preflight.HostPlatform(),
		newLogger:       logging.NewFromConfig,
		newSummarizer:   func(cfg *config.Config) (summarize.Summarizer, error) { return summarize.New(cfg) },
		newDependencies: buildDependencies,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "", "load config", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(cfg *config.Config) *slog.Logger {
	logger, err := c.newLogger(cfg)
	if err != nil || logger == nil {
		return logging.NewNop()
	}
	return logger
}

// openHistory returns nil when history is disabled.
func (c *commandContext) openHistory(cfg *config.Config) (*history.Store, error) {
	path := cfg.HistoryPath()
	if path == "" {
		return nil, nil
	}
	return history.Open(path)
}

// buildDependencies wires the production collaborators for one run.
func buildDependencies(cfg *config.Config, logger *slog.Logger, summarizer summarize.Summarizer, upgrade bool) pipeline.Dependencies {
	resolver := ytdlp.NewService(ytdlp.Config{
		Binary:  cfg.Tools.YtDlp,
		UVX:     cfg.Tools.UVX,
		Upgrade: upgrade,
	})
	transcriber := whisper.NewService(whisper.Config{
		UVX:     cfg.Tools.UVX,
		Package: cfg.Transcription.Package,
		Model:   cfg.Transcription.Model,
	})

	deps := pipeline.Dependencies{
		Resolver:    resolver,
		Downloader:  resolver,
		Transcriber: transcriber,
		Summarizer:  summarizer,
		Notifier:    notifications.FromConfig(cfg, logger),
		Prompt:      cfg.Summary.Prompt,
		JobRoot:     cfg.Paths.JobRoot,
		Logger:      logger,
	}
	if cfg.Paste.Enabled {
		deps.Publisher = privatebin.NewClient(privatebin.Config{
			URL:            cfg.Paste.URL,
			Expire:         cfg.Paste.Expire,
			Formatter:      cfg.Paste.Formatter,
			TimeoutSeconds: cfg.Paste.TimeoutSeconds,
		})
	}
	return deps
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
