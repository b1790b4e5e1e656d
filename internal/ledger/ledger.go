package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"yt-transcribe/internal/fileutil"
	"yt-transcribe/internal/jobkey"
)

const (
	// FileName is the ledger file inside every job directory.
	FileName = "ledger.json"
	// LockFileName is the per-job flock file.
	LockFileName = ".lock"

	schemaVersion = 1
	stateDone     = "done"
)

type stepRecord struct {
	State       string    `json:"state"`
	CompletedAt time.Time `json:"completed_at"`
	Artifacts   []string  `json:"artifacts,omitempty"`
}

type document struct {
	Version   int                  `json:"version"`
	JobKey    string               `json:"job_key"`
	SourceURL string               `json:"source_url,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	Steps     map[Step]*stepRecord `json:"steps"`
}

// StepStatus summarizes one step for reports.
type StepStatus struct {
	Step        Step
	Label       string
	Done        bool
	CompletedAt time.Time
	Artifacts   []string
}

// Job is the persisted state of one URL's pipeline run.
type Job struct {
	mu  sync.Mutex
	dir string
	doc document
	now func() time.Time
}

// Open ensures the job directory exists and loads or initializes its ledger.
// Calling Open repeatedly for the same key is safe.
func Open(root, key, sourceURL string) (*Job, error) {
	dir := jobkey.Dir(root, key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create job directory %s: %w", dir, err)
	}

	job := &Job{dir: dir, now: time.Now}
	loaded, err := job.load()
	if err != nil {
		return nil, err
	}
	if loaded {
		if job.doc.SourceURL == "" && sourceURL != "" {
			job.doc.SourceURL = sourceURL
			if err := job.persist(); err != nil {
				return nil, err
			}
		}
		return job, nil
	}

	now := job.now().UTC()
	job.doc = document{
		Version:   schemaVersion,
		JobKey:    key,
		SourceURL: sourceURL,
		CreatedAt: now,
		UpdatedAt: now,
		Steps:     map[Step]*stepRecord{},
	}
	if err := job.persist(); err != nil {
		return nil, err
	}
	return job, nil
}

// OpenExisting loads a job without creating anything. It returns ErrJobNotFound
// when the directory or ledger is absent.
func OpenExisting(root, key string) (*Job, error) {
	job := &Job{dir: jobkey.Dir(root, key), now: time.Now}
	loaded, err := job.load()
	if err != nil {
		return nil, err
	}
	if !loaded {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, job.dir)
	}
	return job, nil
}

// Remove deletes the whole job directory.
func Remove(root, key string) error {
	dir := jobkey.Dir(root, key)
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrJobNotFound, dir)
		}
		return err
	}
	return os.RemoveAll(dir)
}

func (j *Job) load() (bool, error) {
	data, err := os.ReadFile(filepath.Join(j.dir, FileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read ledger: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return false, fmt.Errorf("parse ledger %s: %w", filepath.Join(j.dir, FileName), err)
	}
	if doc.Steps == nil {
		doc.Steps = map[Step]*stepRecord{}
	}
	j.doc = doc
	return true, nil
}

func (j *Job) persist() error {
	data, err := json.MarshalIndent(j.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(filepath.Join(j.dir, FileName), data, 0o644); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

// Dir returns the job directory.
func (j *Job) Dir() string { return j.dir }

// Key returns the job key.
func (j *Job) Key() string { return j.doc.JobKey }

// SourceURL returns the URL the job was opened for.
func (j *Job) SourceURL() string { return j.doc.SourceURL }

// CreatedAt returns when the ledger was first written.
func (j *Job) CreatedAt() time.Time { return j.doc.CreatedAt }

// IsDone reports whether step has completed.
func (j *Job) IsDone(step Step) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	rec, ok := j.doc.Steps[step]
	return ok && rec != nil && rec.State == stateDone
}

// MarkDone records step as completed with the given artifacts, relative to the
// job directory, and persists the ledger. Marking an already-done step again
// replaces its artifact list.
func (j *Job) MarkDone(step Step, artifacts ...string) error {
	if step.Index() < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownStep, string(step))
	}
	cleaned := make([]string, 0, len(artifacts))
	for _, name := range artifacts {
		if name = strings.TrimSpace(name); name != "" {
			cleaned = append(cleaned, j.relative(name))
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	now := j.now().UTC()
	j.doc.Steps[step] = &stepRecord{State: stateDone, CompletedAt: now, Artifacts: cleaned}
	j.doc.UpdatedAt = now
	return j.persist()
}

// Clear removes the record for step only.
func (j *Job) Clear(step Step) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := j.doc.Steps[step]; !ok {
		return nil
	}
	delete(j.doc.Steps, step)
	j.doc.UpdatedAt = j.now().UTC()
	return j.persist()
}

// ClearFrom removes the record for step and every later step.
func (j *Job) ClearFrom(step Step) error {
	start := step.Index()
	if start < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownStep, string(step))
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, s := range Steps[start:] {
		delete(j.doc.Steps, s)
	}
	j.doc.UpdatedAt = j.now().UTC()
	return j.persist()
}

// Artifacts returns the artifact names recorded for step.
func (j *Job) Artifacts(step Step) []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	rec, ok := j.doc.Steps[step]
	if !ok || rec == nil {
		return nil
	}
	return append([]string(nil), rec.Artifacts...)
}

// Verify checks that every artifact of a done step exists on disk.
func (j *Job) Verify(step Step) error {
	for _, name := range j.Artifacts(step) {
		path := j.Path(name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return &MissingArtifactError{Step: step, Artifact: name, Path: path}
			}
			return fmt.Errorf("stat artifact %s: %w", name, err)
		}
	}
	return nil
}

// Path returns the absolute path of an artifact inside the job directory.
func (j *Job) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(j.dir, name)
}

func (j *Job) relative(name string) string {
	if !filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	if rel, err := filepath.Rel(j.dir, name); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return name
}

// SaveJSON writes v as an indented JSON artifact.
func (j *Job) SaveJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return fileutil.WriteFileAtomic(j.Path(name), append(data, '\n'), 0o644)
}

// LoadJSON decodes a JSON artifact into v.
func (j *Job) LoadJSON(name string, v any) error {
	data, err := j.read(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// SaveText writes a plain-text artifact.
func (j *Job) SaveText(name, text string) error {
	return fileutil.WriteFileAtomic(j.Path(name), []byte(text), 0o644)
}

// LoadText reads a plain-text artifact.
func (j *Job) LoadText(name string) (string, error) {
	data, err := j.read(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (j *Job) read(name string) ([]byte, error) {
	data, err := os.ReadFile(j.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Progress returns the last completed step in execution order, or StepNone.
func (j *Job) Progress() Step {
	last := StepNone
	for _, step := range Steps {
		if j.IsDone(step) {
			last = step
		}
	}
	return last
}

// Snapshot returns the status of every step in execution order.
func (j *Job) Snapshot() []StepStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]StepStatus, 0, len(Steps))
	for _, step := range Steps {
		status := StepStatus{Step: step, Label: step.Label()}
		if rec, ok := j.doc.Steps[step]; ok && rec != nil && rec.State == stateDone {
			status.Done = true
			status.CompletedAt = rec.CompletedAt
			status.Artifacts = append([]string(nil), rec.Artifacts...)
		}
		out = append(out, status)
	}
	return out
}

// Lock takes a non-blocking exclusive lock on the job directory. It returns
// ErrJobBusy when another process already holds it.
func (j *Job) Lock() (func() error, error) {
	lock := flock.New(filepath.Join(j.dir, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire job lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobBusy, j.dir)
	}
	return lock.Unlock, nil
}
