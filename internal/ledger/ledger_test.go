package ledger_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"yt-transcribe/internal/ledger"
)

func openJob(t *testing.T) (*ledger.Job, string) {
	t.Helper()
	root := t.TempDir()
	job, err := ledger.Open(root, "abc123", "https://example.com/v1")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return job, root
}

func TestOpenCreatesLedgerAndIsIdempotent(t *testing.T) {
	job, root := openJob(t)
	if _, err := os.Stat(filepath.Join(root, "abc123", ledger.FileName)); err != nil {
		t.Fatalf("expected ledger file: %v", err)
	}
	if job.Progress() != ledger.StepNone {
		t.Fatalf("expected fresh job, got %s", job.Progress())
	}

	again, err := ledger.Open(root, "abc123", "https://example.com/v1")
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	if !again.CreatedAt().Equal(job.CreatedAt()) {
		t.Fatal("expected second Open to keep the original ledger")
	}
}

func TestMarkDonePersistsAcrossReload(t *testing.T) {
	job, root := openJob(t)
	if err := job.SaveJSON("metadata.json", map[string]string{"title": "Talk A"}); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	if err := job.MarkDone(ledger.StepFetchMetadata, "metadata.json"); err != nil {
		t.Fatalf("MarkDone: %v", err)
	}
	if err := job.MarkDone(ledger.StepFetchMetadata, "metadata.json"); err != nil {
		t.Fatalf("MarkDone twice: %v", err)
	}

	reloaded, err := ledger.OpenExisting(root, "abc123")
	if err != nil {
		t.Fatalf("OpenExisting: %v", err)
	}
	if !reloaded.IsDone(ledger.StepFetchMetadata) {
		t.Fatal("expected fetch-metadata to be done after reload")
	}
	if reloaded.IsDone(ledger.StepDownloadAudio) {
		t.Fatal("expected download-audio to be pending")
	}
	if got := reloaded.Artifacts(ledger.StepFetchMetadata); len(got) != 1 || got[0] != "metadata.json" {
		t.Fatalf("unexpected artifacts %v", got)
	}
	if reloaded.Progress() != ledger.StepFetchMetadata {
		t.Fatalf("unexpected progress %s", reloaded.Progress())
	}
	if reloaded.SourceURL() != "https://example.com/v1" {
		t.Fatalf("unexpected source url %q", reloaded.SourceURL())
	}

	var meta map[string]string
	if err := reloaded.LoadJSON("metadata.json", &meta); err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if meta["title"] != "Talk A" {
		t.Fatalf("unexpected metadata %v", meta)
	}
}

func TestLedgerFileShape(t *testing.T) {
	job, root := openJob(t)
	if err := job.MarkDone(ledger.StepNotify); err != nil {
		t.Fatalf("MarkDone: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "abc123", ledger.FileName))
	if err != nil {
		t.Fatal(err)
	}
	var raw struct {
		Version int                       `json:"version"`
		JobKey  string                    `json:"job_key"`
		Steps   map[string]map[string]any `json:"steps"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("decode ledger: %v", err)
	}
	if raw.Version != 1 || raw.JobKey != "abc123" {
		t.Fatalf("unexpected header %+v", raw)
	}
	if raw.Steps["notify"]["state"] != "done" {
		t.Fatalf("unexpected notify record %v", raw.Steps["notify"])
	}
}

func TestVerifyReportsMissingArtifact(t *testing.T) {
	job, _ := openJob(t)
	if err := job.SaveText("audio_path.txt", "vid.opus"); err != nil {
		t.Fatal(err)
	}
	if err := job.MarkDone(ledger.StepDownloadAudio, "audio_path.txt", "vid.opus"); err != nil {
		t.Fatal(err)
	}

	err := job.Verify(ledger.StepDownloadAudio)
	var missing *ledger.MissingArtifactError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingArtifactError, got %v", err)
	}
	if missing.Artifact != "vid.opus" || missing.Step != ledger.StepDownloadAudio {
		t.Fatalf("unexpected missing artifact %+v", missing)
	}

	if err := os.WriteFile(job.Path("vid.opus"), []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := job.Verify(ledger.StepDownloadAudio); err != nil {
		t.Fatalf("expected verify to pass, got %v", err)
	}
}

func TestAbsoluteArtifactsAreStoredRelative(t *testing.T) {
	job, _ := openJob(t)
	abs := job.Path("vid.txt")
	if err := job.SaveText("vid.txt", "hello"); err != nil {
		t.Fatal(err)
	}
	if err := job.MarkDone(ledger.StepTranscribe, abs); err != nil {
		t.Fatal(err)
	}
	if got := job.Artifacts(ledger.StepTranscribe); got[0] != "vid.txt" {
		t.Fatalf("expected relative artifact name, got %v", got)
	}
}

func TestClearAndClearFrom(t *testing.T) {
	job, _ := openJob(t)
	for _, step := range ledger.Steps {
		if err := job.MarkDone(step); err != nil {
			t.Fatal(err)
		}
	}

	if err := job.Clear(ledger.StepTranscribe); err != nil {
		t.Fatal(err)
	}
	if job.IsDone(ledger.StepTranscribe) {
		t.Fatal("expected transcribe cleared")
	}
	if !job.IsDone(ledger.StepSummarize) {
		t.Fatal("expected Clear not to cascade")
	}

	if err := job.ClearFrom(ledger.StepSummarize); err != nil {
		t.Fatal(err)
	}
	for _, step := range []ledger.Step{ledger.StepSummarize, ledger.StepPublishTranscript, ledger.StepNotify} {
		if job.IsDone(step) {
			t.Fatalf("expected %s cleared", step)
		}
	}
	if !job.IsDone(ledger.StepDownloadAudio) {
		t.Fatal("expected earlier steps kept")
	}
	if job.Progress() != ledger.StepDownloadAudio {
		t.Fatalf("unexpected progress %s", job.Progress())
	}
}

func TestLoadTextMissing(t *testing.T) {
	job, _ := openJob(t)
	if _, err := job.LoadText("paste_url.txt"); !errors.Is(err, ledger.ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestSnapshotOrderAndLabels(t *testing.T) {
	job, _ := openJob(t)
	if err := job.MarkDone(ledger.StepFetchMetadata); err != nil {
		t.Fatal(err)
	}
	snap := job.Snapshot()
	if len(snap) != len(ledger.Steps) {
		t.Fatalf("expected %d entries, got %d", len(ledger.Steps), len(snap))
	}
	if snap[0].Label != "Fetch Metadata" || !snap[0].Done {
		t.Fatalf("unexpected first entry %+v", snap[0])
	}
	if snap[4].Label != "Publish Transcript" || snap[4].Done {
		t.Fatalf("unexpected publish entry %+v", snap[4])
	}
}

func TestLockRejectsSecondHolder(t *testing.T) {
	job, root := openJob(t)
	unlock, err := job.Lock()
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	other, err := ledger.OpenExisting(root, "abc123")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.Lock(); !errors.Is(err, ledger.ErrJobBusy) {
		t.Fatalf("expected ErrJobBusy, got %v", err)
	}

	if err := unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	release, err := other.Lock()
	if err != nil {
		t.Fatalf("expected lock after release, got %v", err)
	}
	_ = release()
}

func TestParseStep(t *testing.T) {
	step, err := ledger.ParseStep(" Download_Audio ")
	if err != nil || step != ledger.StepDownloadAudio {
		t.Fatalf("unexpected parse %v %v", step, err)
	}
	if _, err := ledger.ParseStep("encode"); !errors.Is(err, ledger.ErrUnknownStep) {
		t.Fatalf("expected ErrUnknownStep, got %v", err)
	}
}

func TestOpenExistingAndRemove(t *testing.T) {
	root := t.TempDir()
	if _, err := ledger.OpenExisting(root, "missing"); !errors.Is(err, ledger.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
	if _, err := ledger.Open(root, "gone", ""); err != nil {
		t.Fatal(err)
	}
	if err := ledger.Remove(root, "gone"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "gone")); !os.IsNotExist(err) {
		t.Fatalf("expected directory removed, got %v", err)
	}
}

func TestOpenRejectsCorruptLedger(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "bad")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ledger.FileName), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ledger.Open(root, "bad", ""); err == nil {
		t.Fatal("expected parse error")
	}
}
