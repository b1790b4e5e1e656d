package desktop

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"yt-transcribe/internal/services"
)

// ErrNotInstalled reports that the notifier binary is not on PATH.
var ErrNotInstalled = errors.New("desktop notifier not installed")

// CommandRunner executes the notifier binary.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Config describes the notifier invocation.
type Config struct {
	Command string
	Title   string
	Message string
	Sound   string
}

// Notifier posts a local desktop notification that opens the summary file.
type Notifier struct {
	cfg      Config
	run      CommandRunner
	lookPath func(string) (string, error)
}

// Option customizes the notifier.
type Option func(*Notifier)

// WithCommandRunner overrides command execution.
func WithCommandRunner(run CommandRunner) Option {
	return func(n *Notifier) {
		if run != nil {
			n.run = run
		}
	}
}

// WithLookPath overrides binary discovery.
func WithLookPath(lookPath func(string) (string, error)) Option {
	return func(n *Notifier) {
		if lookPath != nil {
			n.lookPath = lookPath
		}
	}
}

// NewNotifier constructs a desktop notifier.
func NewNotifier(cfg Config, opts ...Option) *Notifier {
	if strings.TrimSpace(cfg.Command) == "" {
		cfg.Command = "terminal-notifier"
	}
	n := &Notifier{
		cfg:      cfg,
		run:      execRunner,
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Args returns the notifier arguments for a summary file.
func (n *Notifier) Args(summaryPath string) []string {
	args := []string{"-title", n.cfg.Title, "-message", n.cfg.Message}
	if sound := strings.TrimSpace(n.cfg.Sound); sound != "" {
		args = append(args, "-sound", sound)
	}
	if summaryPath = strings.TrimSpace(summaryPath); summaryPath != "" {
		if abs, err := filepath.Abs(summaryPath); err == nil {
			summaryPath = abs
		}
		args = append(args, "-open", "file://"+summaryPath)
	}
	return args
}

// Notify shows the notification. It returns ErrNotInstalled when the binary is missing.
func (n *Notifier) Notify(ctx context.Context, summaryPath string) error {
	binary, err := n.lookPath(n.cfg.Command)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotInstalled, n.cfg.Command)
	}
	output, err := n.run(ctx, binary, n.Args(summaryPath)...)
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			detail = "no output"
		}
		return services.Wrap(services.ErrExternalTool, "", n.cfg.Command, detail, err)
	}
	return nil
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput() //nolint:gosec
}
