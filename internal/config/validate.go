package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSummary(); err != nil {
		return err
	}
	if err := c.validatePaste(); err != nil {
		return err
	}
	if err := c.validateChannels(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.JobRoot) == "" {
		return errors.New("paths.job_root must be set")
	}
	return nil
}

func (c *Config) validateSummary() error {
	switch c.Summary.Backend {
	case BackendCodex, BackendOpenAI, BackendGemini:
	default:
		return fmt.Errorf("summary.backend %q is not supported (expected codex, openai, or gemini)", c.Summary.Backend)
	}
	if c.Summary.TimeoutSeconds <= 0 {
		return errors.New("summary.timeout_seconds must be positive")
	}
	if c.Summary.RetryAttempts <= 0 {
		return errors.New("summary.retry_attempts must be positive")
	}
	return nil
}

func (c *Config) validatePaste() error {
	if c.Paste.TimeoutSeconds <= 0 {
		return errors.New("paste.timeout_seconds must be positive")
	}
	if !c.Paste.Enabled {
		return nil
	}
	parsed, err := url.Parse(c.Paste.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("paste.url %q must be an http(s) URL", c.Paste.URL)
	}
	return nil
}

func (c *Config) validateChannels() error {
	return ensurePositiveMap(map[string]int{
		"telegram.timeout_seconds": c.Telegram.TimeoutSeconds,
		"ntfy.timeout_seconds":     c.Ntfy.TimeoutSeconds,
	})
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported (expected console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
