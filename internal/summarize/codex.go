package summarize

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"yt-transcribe/internal/services"
)

const (
	// CodexOutputFile is the file the Codex CLI writes its final message to.
	CodexOutputFile = "codex_summary.txt"

	defaultCodexPackage = "@openai/codex@latest"
	defaultCodexModel   = "gpt-5.2-codex"
)

var codexAuthFiles = []string{"auth.json", "config.toml", "config.json"}

// CodexRunner executes the Codex CLI with prompt on stdin.
type CodexRunner func(ctx context.Context, name string, args []string, stdin string) (stdout, stderr []byte, err error)

// CodexConfig describes the Codex CLI invocation.
type CodexConfig struct {
	BunX    string
	Package string
	Model   string
}

// Codex summarizes by shelling out to the Codex CLI through bunx.
type Codex struct {
	cfg      CodexConfig
	run      CodexRunner
	lookPath func(string) (string, error)
	getenv   func(string) string
	homeDir  func() (string, error)
}

// CodexOption customizes the Codex backend.
type CodexOption func(*Codex)

// WithCodexRunner overrides command execution.
func WithCodexRunner(run CodexRunner) CodexOption {
	return func(c *Codex) {
		if run != nil {
			c.run = run
		}
	}
}

// WithCodexEnvironment overrides PATH lookup, environment and home directory
// discovery used by the readiness check.
func WithCodexEnvironment(lookPath func(string) (string, error), getenv func(string) string, homeDir func() (string, error)) CodexOption {
	return func(c *Codex) {
		if lookPath != nil {
			c.lookPath = lookPath
		}
		if getenv != nil {
			c.getenv = getenv
		}
		if homeDir != nil {
			c.homeDir = homeDir
		}
	}
}

// NewCodex constructs the Codex backend.
func NewCodex(cfg CodexConfig, opts ...CodexOption) *Codex {
	if strings.TrimSpace(cfg.BunX) == "" {
		cfg.BunX = "bunx"
	}
	if strings.TrimSpace(cfg.Package) == "" {
		cfg.Package = defaultCodexPackage
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultCodexModel
	}
	c := &Codex{
		cfg:      cfg,
		run:      execCodex,
		lookPath: exec.LookPath,
		getenv:   os.Getenv,
		homeDir:  os.UserHomeDir,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Args returns the full command line after the bunx binary.
func (c *Codex) Args(outputPath, model string) []string {
	args := []string{
		c.cfg.Package,
		"exec",
		"--sandbox", "read-only",
		"--skip-git-repo-check",
		"--output-last-message", outputPath,
	}
	if model = strings.TrimSpace(model); model != "" {
		args = append(args, "-m", model)
	}
	return append(args, "-")
}

// Check fails when bunx is missing or no Codex credentials are available.
func (c *Codex) Check(context.Context) error {
	if _, err := c.lookPath(c.cfg.BunX); err != nil {
		return &toolError{
			msg:    "bunx not found. Install Bun or ensure bunx is on PATH before running.",
			marker: services.ErrPrecondition,
		}
	}
	if strings.TrimSpace(c.getenv("OPENAI_API_KEY")) != "" {
		return nil
	}
	if home, err := c.homeDir(); err == nil {
		for _, name := range codexAuthFiles {
			if _, err := os.Stat(filepath.Join(home, ".codex", name)); err == nil {
				return nil
			}
		}
	}
	return &toolError{
		msg:    "Codex CLI credentials not found. Run `bunx " + c.cfg.Package + " login` or set OPENAI_API_KEY.",
		marker: services.ErrPrecondition,
	}
}

// Summarize runs the Codex CLI and returns its last message.
func (c *Codex) Summarize(ctx context.Context, req Request) (string, error) {
	if err := c.Check(ctx); err != nil {
		return "", err
	}

	workDir := strings.TrimSpace(req.WorkDir)
	if workDir == "" {
		tmp, err := os.MkdirTemp("", "yt-transcribe-codex-")
		if err != nil {
			return "", err
		}
		defer os.RemoveAll(tmp)
		workDir = tmp
	}
	outputPath := filepath.Join(workDir, CodexOutputFile)
	if err := os.Remove(outputPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	model := c.cfg.Model
	if override := strings.TrimSpace(req.Model); override != "" {
		model = override
	}

	stdout, stderr, err := c.run(ctx, c.cfg.BunX, c.Args(outputPath, model), CodexPrompt(req.Prompt, req.Transcript))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		details := strings.TrimSpace(string(stderr))
		if details == "" {
			details = strings.TrimSpace(string(stdout))
		}
		if details == "" {
			details = "No error output captured."
		}
		return "", &toolError{msg: "Codex CLI summarization failed: " + details, marker: services.ErrExternalTool}
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &toolError{msg: "Codex CLI did not write a summary output file.", marker: services.ErrExternalTool}
		}
		return "", err
	}
	summary := strings.TrimSpace(string(data))
	if summary == "" {
		return "", &toolError{msg: "Codex CLI returned an empty summary.", marker: services.ErrExternalTool}
	}
	return summary, nil
}

func execCodex(ctx context.Context, name string, args []string, stdin string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
