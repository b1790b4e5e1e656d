package ytdlp

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"yt-transcribe/internal/services"
)

// AudioFormat is the codec yt-dlp extracts downloads into.
const AudioFormat = "opus"

// CommandRunner executes a command and returns its stdout and stderr.
type CommandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// Config captures the executables used to invoke yt-dlp.
type Config struct {
	// Binary is the yt-dlp executable for normal runs.
	Binary string
	// UVX runs yt-dlp@latest when an upgrade is requested.
	UVX string
	// Upgrade makes metadata lookups use yt-dlp@latest as well.
	Upgrade bool
}

// Service wraps yt-dlp for metadata lookup and audio extraction.
type Service struct {
	cfg    Config
	runner CommandRunner
}

// NewService creates a yt-dlp service.
func NewService(cfg Config) *Service {
	if strings.TrimSpace(cfg.Binary) == "" {
		cfg.Binary = "yt-dlp"
	}
	if strings.TrimSpace(cfg.UVX) == "" {
		cfg.UVX = "uvx"
	}
	return &Service{cfg: cfg, runner: execRunner}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner CommandRunner) {
	if runner != nil {
		s.runner = runner
	}
}

func (s *Service) command(upgrade bool, args ...string) (string, []string) {
	if upgrade {
		return s.cfg.UVX, append([]string{"yt-dlp@latest"}, args...)
	}
	return s.cfg.Binary, args
}

// Resolve fetches video metadata without downloading media.
func (s *Service) Resolve(ctx context.Context, url string) (Metadata, error) {
	name, args := s.command(s.cfg.Upgrade,
		"--dump-single-json",
		"--skip-download",
		"--no-playlist",
		"--no-warnings",
		url,
	)
	stdout, stderr, err := s.runner(ctx, name, args...)
	if err != nil {
		return Metadata{}, categorize("yt-dlp metadata", err, string(stderr))
	}
	meta, err := parseInfo(stdout)
	if err != nil {
		return Metadata{}, services.Wrap(services.ErrValidation, "", "yt-dlp metadata", "parse info json", err)
	}
	return meta, nil
}

// Download extracts the best audio stream into dir as <id>.opus and returns the file path.
func (s *Service) Download(ctx context.Context, url, id, dir string, upgrade bool) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", services.Wrap(services.ErrValidation, "", "yt-dlp download", "content id required", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure download dir: %w", err)
	}
	name, args := s.command(upgrade || s.cfg.Upgrade,
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", AudioFormat,
		"--restrict-filenames",
		"--no-playlist",
		"--no-progress",
		"--output", filepath.Join(dir, "%(id)s.%(ext)s"),
		url,
	)
	_, stderr, err := s.runner(ctx, name, args...)
	if err != nil {
		return "", categorize("yt-dlp download", err, string(stderr))
	}
	path, err := findAudio(dir, id)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "", "yt-dlp download", "locate audio", err)
	}
	return path, nil
}

var nonAudioExt = map[string]bool{
	".txt": true, ".md": true, ".json": true, ".part": true, ".ytdl": true,
	".srt": true, ".vtt": true, ".tsv": true, ".tmp": true,
}

// findAudio picks <id>.<ext> from dir, preferring the extracted codec.
func findAudio(dir, id string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, globEscape(id)+".*"))
	if err != nil {
		return "", err
	}
	var candidates []string
	for _, match := range matches {
		if nonAudioExt[strings.ToLower(filepath.Ext(match))] {
			continue
		}
		if filepath.Ext(match) == "."+AudioFormat {
			return match, nil
		}
		candidates = append(candidates, match)
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: %s.*", ErrNoAudioFile, filepath.Join(dir, id))
	}
	sort.Strings(candidates)
	return candidates[0], nil
}

func globEscape(value string) string {
	replacer := strings.NewReplacer("*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)
	return replacer.Replace(value)
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}
