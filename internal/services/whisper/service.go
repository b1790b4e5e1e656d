package whisper

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"yt-transcribe/internal/fileutil"
	"yt-transcribe/internal/services"
)

// Defaults for the mlx-whisper invocation.
const (
	DefaultModel   = "mlx-community/whisper-large-v3-turbo"
	DefaultPackage = "mlx_whisper"
	UVXCommand     = "uvx"
)

// Config captures runtime settings for mlx-whisper.
type Config struct {
	// UVX is the launcher used to run the whisper package.
	UVX string
	// Package is the PyPI package providing the CLI.
	Package string
	// Model is the Hugging Face model repository.
	Model string
}

// Service runs mlx-whisper through uvx.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a transcription service.
func NewService(cfg Config) *Service {
	if strings.TrimSpace(cfg.UVX) == "" {
		cfg.UVX = UVXCommand
	}
	if strings.TrimSpace(cfg.Package) == "" {
		cfg.Package = DefaultPackage
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	return s.cfg.Model
}

// BuildArgs returns the uvx arguments for transcribing audio into outputDir.
func (s *Service) BuildArgs(audioPath, outputDir string, upgrade bool) []string {
	pkg := s.cfg.Package
	if upgrade && !strings.Contains(pkg, "@") {
		pkg += "@latest"
	}
	return []string{
		pkg,
		"--verbose", "False",
		"--model", s.cfg.Model,
		audioPath,
		"-o", outputDir,
	}
}

// Transcribe runs mlx-whisper on audioPath and returns the path of the
// <basename>.txt transcript it writes into outputDir.
func (s *Service) Transcribe(ctx context.Context, audioPath, outputDir string, upgrade bool) (string, error) {
	if strings.TrimSpace(audioPath) == "" {
		return "", services.Wrap(services.ErrValidation, "", "mlx_whisper", "audio path required", nil)
	}
	if outputDir == "" {
		outputDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	if err := s.run(ctx, s.cfg.UVX, s.BuildArgs(audioPath, outputDir, upgrade)...); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "", "mlx_whisper", "transcription failed", err)
	}

	transcript := TranscriptPath(audioPath, outputDir)
	ok, err := fileutil.FileExists(transcript)
	if err != nil {
		return "", fmt.Errorf("transcribe: stat output: %w", err)
	}
	if !ok {
		return "", services.Wrap(services.ErrExternalTool, "", "mlx_whisper", fmt.Sprintf("transcription file %s not found", transcript), nil)
	}
	return transcript, nil
}

// TranscriptPath returns where mlx-whisper writes the text output for audioPath.
func TranscriptPath(audioPath, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	return filepath.Join(outputDir, base+".txt")
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
