package whisper_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"yt-transcribe/internal/services"
	"yt-transcribe/internal/services/whisper"
)

func TestBuildArgs(t *testing.T) {
	svc := whisper.NewService(whisper.Config{})
	got := svc.BuildArgs("/jobs/k/v1.opus", "/jobs/k", false)
	want := []string{"mlx_whisper", "--verbose", "False", "--model", "mlx-community/whisper-large-v3-turbo", "/jobs/k/v1.opus", "-o", "/jobs/k"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected args:\n got %v\nwant %v", got, want)
	}
	if upgraded := svc.BuildArgs("/a.opus", "/out", true); upgraded[0] != "mlx_whisper@latest" {
		t.Fatalf("expected @latest package, got %q", upgraded[0])
	}
}

func TestTranscribeReturnsTextPath(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "v1.opus")
	var gotName string
	svc := whisper.NewService(whisper.Config{UVX: "uvx"})
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotName = name
		return os.WriteFile(filepath.Join(dir, "v1.txt"), []byte("hello world"), 0o644)
	})

	path, err := svc.Transcribe(context.Background(), audio, dir, false)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if path != filepath.Join(dir, "v1.txt") {
		t.Fatalf("unexpected transcript path %q", path)
	}
	if gotName != "uvx" {
		t.Fatalf("expected uvx launcher, got %q", gotName)
	}
}

func TestTranscribeMissingOutputFails(t *testing.T) {
	dir := t.TempDir()
	svc := whisper.NewService(whisper.Config{})
	svc.WithCommandRunner(func(context.Context, string, ...string) error { return nil })

	_, err := svc.Transcribe(context.Background(), filepath.Join(dir, "v1.opus"), dir, false)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestTranscribeRunnerFailure(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("exit status 1")
	svc := whisper.NewService(whisper.Config{})
	svc.WithCommandRunner(func(context.Context, string, ...string) error { return boom })

	_, err := svc.Transcribe(context.Background(), filepath.Join(dir, "v1.opus"), dir, false)
	if !errors.Is(err, boom) {
		t.Fatalf("expected runner error to be wrapped, got %v", err)
	}
}
