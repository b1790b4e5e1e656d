package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Status is the outcome of a recorded run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one invocation of the pipeline.
type Run struct {
	ID            string
	JobKey        string
	URL           string
	Title         string
	Status        Status
	ErrorMessage  string
	PasteURL      string
	SummaryPath   string
	StepsExecuted int
	StepsReused   int
	StartedAt     time.Time
	FinishedAt    *time.Time
}

// Duration returns the elapsed time of a finished run, or zero.
func (r *Run) Duration() time.Duration {
	if r == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store persists run history in SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open creates or connects to the history database and applies migrations.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Start records a run in the running state. An empty id is replaced with a
// fresh UUID.
func (s *Store) Start(ctx context.Context, id, jobKey, url string) (*Run, error) {
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}
	run := &Run{
		ID:        id,
		JobKey:    jobKey,
		URL:       url,
		Status:    StatusRunning,
		StartedAt: s.now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, job_key, url, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.JobKey, run.URL, run.Status, run.StartedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Finish stores the final state of run. A non-nil runErr marks it failed.
func (s *Store) Finish(ctx context.Context, run *Run, runErr error) error {
	if run == nil {
		return errors.New("run is nil")
	}
	finished := s.now().UTC()
	run.FinishedAt = &finished
	run.Status = StatusSucceeded
	run.ErrorMessage = ""
	if runErr != nil {
		run.Status = StatusFailed
		run.ErrorMessage = strings.TrimSpace(runErr.Error())
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs
         SET title = ?, status = ?, error_message = ?, paste_url = ?, summary_path = ?,
             steps_executed = ?, steps_reused = ?, finished_at = ?
         WHERE id = ?`,
		nullableString(run.Title),
		run.Status,
		nullableString(run.ErrorMessage),
		nullableString(run.PasteURL),
		nullableString(run.SummaryPath),
		run.StepsExecuted,
		run.StepsReused,
		finished.Format(timeLayout),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

const runColumns = "id, job_key, url, title, status, error_message, paste_url, summary_path, steps_executed, steps_reused, started_at, finished_at"

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	return collectRuns(rows)
}

// ForJob returns every run for a job key, oldest first.
func (s *Store) ForJob(ctx context.Context, jobKey string) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs WHERE job_key = ? ORDER BY started_at`, jobKey)
	if err != nil {
		return nil, fmt.Errorf("query job runs: %w", err)
	}
	return collectRuns(rows)
}

// DeleteJob removes every run for a job key and returns the number removed.
func (s *Store) DeleteJob(ctx context.Context, jobKey string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE job_key = ?`, jobKey)
	if err != nil {
		return 0, fmt.Errorf("delete job runs: %w", err)
	}
	return res.RowsAffected()
}

func collectRuns(rows *sql.Rows) ([]*Run, error) {
	defer rows.Close()
	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		title       sql.NullString
		status      string
		errMessage  sql.NullString
		pasteURL    sql.NullString
		summaryPath sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.JobKey,
		&run.URL,
		&title,
		&status,
		&errMessage,
		&pasteURL,
		&summaryPath,
		&run.StepsExecuted,
		&run.StepsReused,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.Title = title.String
	run.Status = Status(status)
	run.ErrorMessage = errMessage.String
	run.PasteURL = pasteURL.String
	run.SummaryPath = summaryPath.String
	if ts, err := time.Parse(timeLayout, startedRaw); err == nil {
		run.StartedAt = ts
	}
	if finishedRaw.Valid {
		if ts, err := time.Parse(timeLayout, finishedRaw.String); err == nil {
			run.FinishedAt = &ts
		}
	}
	return &run, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
