package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"yt-transcribe/internal/jobkey"
	"yt-transcribe/internal/ledger"
	"yt-transcribe/internal/logging"
	"yt-transcribe/internal/notifications"
	"yt-transcribe/internal/services"
	"yt-transcribe/internal/services/ytdlp"
	"yt-transcribe/internal/summarize"
)

// Driver runs the six steps for a URL, reusing every step the ledger marks done.
type Driver struct {
	deps   Dependencies
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// Option customizes a Driver.
type Option func(*Driver)

// WithClock overrides the time source used for step timings.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) {
		if now != nil {
			d.now = now
		}
	}
}

// WithRunID overrides run identifier generation.
func WithRunID(newID func() string) Option {
	return func(d *Driver) {
		if newID != nil {
			d.newID = newID
		}
	}
}

// New constructs a Driver.
func New(deps Dependencies, opts ...Option) *Driver {
	d := &Driver{
		deps:   deps,
		logger: logging.NewComponentLogger(deps.Logger, "pipeline"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// runState carries step outputs forward through one run.
type runState struct {
	url        string
	job        *ledger.Job
	upgrade    bool
	model      string
	report     io.Writer
	meta       ytdlp.Metadata
	audioPath  string
	transcript string
	summary    string
	summaryAbs string
	pasteURL   string
	deliveries []notifications.Result
}

type stepHandler struct {
	step ledger.Step
	// load restores outputs of a step the ledger marks done.
	load func(ctx context.Context, st *runState) error
	// execute runs the collaborator and marks the step done on success.
	execute func(ctx context.Context, st *runState) error
}

func (d *Driver) handlers() []stepHandler {
	return []stepHandler{
		{ledger.StepFetchMetadata, d.loadMetadata, d.fetchMetadata},
		{ledger.StepDownloadAudio, d.loadAudio, d.downloadAudio},
		{ledger.StepTranscribe, d.loadTranscript, d.transcribe},
		{ledger.StepSummarize, d.loadSummary, d.summarize},
		{ledger.StepPublishTranscript, d.loadPasteURL, d.publish},
		{ledger.StepNotify, nil, d.notify},
	}
}

// Run executes the pipeline for url. It returns on the first fatal step error;
// publish-transcript and notification channel failures are logged and tolerated.
func (d *Driver) Run(ctx context.Context, url string, opts RunOptions) (Result, error) {
	if strings.TrimSpace(url) == "" {
		return Result{}, services.Wrap(services.ErrValidation, "", "run", "url is required", nil)
	}
	report := opts.Report
	if report == nil {
		report = io.Discard
	}

	key := jobkey.Derive(url)
	runID := d.newID()
	ctx = services.WithJobKey(ctx, key)
	ctx = services.WithRequestID(ctx, runID)
	logger := logging.WithContext(ctx, d.logger)

	job, err := ledger.Open(d.deps.JobRoot, key, url)
	if err != nil {
		return Result{}, err
	}
	unlock, err := job.Lock()
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := unlock(); err != nil {
			logger.Debug("release job lock failed", logging.Error(err))
		}
	}()

	fmt.Fprintf(report, "Processing URL: %s\n", url)
	fmt.Fprintf(report, "State directory: %s\n", job.Dir())
	if opts.Resume {
		WriteStatusReport(report, job.Snapshot())
		if last := job.Progress(); last == ledger.StepNone {
			fmt.Fprintln(report, "No completed steps, starting from the beginning.")
		} else {
			fmt.Fprintf(report, "Resuming after: %s\n", last)
		}
	}
	logger.Info("run started",
		logging.String("url", url),
		logging.String("job_dir", job.Dir()),
		logging.String(logging.FieldEventType, "run_start"),
	)

	st := &runState{url: url, job: job, upgrade: opts.Upgrade, model: opts.SummaryModel, report: report}
	result := Result{RunID: runID, JobKey: key, JobDir: job.Dir()}

	for _, h := range d.handlers() {
		reused, err := d.runStep(ctx, h, st)
		if err != nil {
			return d.finish(result, st), err
		}
		if reused {
			result.StepsReused = append(result.StepsReused, h.step)
		} else if job.IsDone(h.step) {
			result.StepsExecuted = append(result.StepsExecuted, h.step)
		}
		if h.step == ledger.StepFetchMetadata {
			fmt.Fprintf(report, "Title: %s\nURL: %s\nVideo ID: %s\n", st.meta.Title, st.meta.WebpageURL, st.meta.ID)
		}
	}

	logger.Info("run completed",
		logging.String("summary_path", st.summaryAbs),
		logging.Int("steps_executed", len(result.StepsExecuted)),
		logging.Int("steps_reused", len(result.StepsReused)),
		logging.String("deliveries", notifications.Summarize(st.deliveries)),
		logging.String(logging.FieldEventType, "run_complete"),
	)
	return d.finish(result, st), nil
}

func (d *Driver) finish(result Result, st *runState) Result {
	result.Metadata = st.meta
	result.SummaryPath = st.summaryAbs
	result.PasteURL = st.pasteURL
	result.Deliveries = st.deliveries
	return result
}

func (d *Driver) runStep(ctx context.Context, h stepHandler, st *runState) (bool, error) {
	stepCtx := services.WithStage(ctx, string(h.step))
	logger := logging.WithContext(stepCtx, d.logger)

	if st.job.IsDone(h.step) {
		if err := d.reuse(stepCtx, h, st); err != nil {
			logger.Error("step failed",
				logging.String(logging.FieldEventType, "step_failure"),
				logging.String(logging.FieldErrorHint, services.Remediation(err)),
				logging.Error(err),
			)
			return false, err
		}
		logger.Info("step reused", logging.String(logging.FieldEventType, "step_reused"))
		return true, nil
	}

	start := d.now()
	logger.Info("step started", logging.String(logging.FieldEventType, "step_start"))
	if err := h.execute(stepCtx, st); err != nil {
		logger.Error("step failed",
			logging.String(logging.FieldEventType, "step_failure"),
			logging.Duration("elapsed", d.now().Sub(start)),
			logging.String(logging.FieldErrorHint, services.Remediation(err)),
			logging.Error(err),
		)
		return false, err
	}
	if st.job.IsDone(h.step) {
		fmt.Fprintf(st.report, "✓ Step completed: %s\n", h.step)
		logger.Info("step completed",
			logging.String(logging.FieldEventType, "step_complete"),
			logging.Duration("elapsed", d.now().Sub(start)),
		)
	}
	return false, nil
}

func (d *Driver) reuse(ctx context.Context, h stepHandler, st *runState) error {
	if err := st.job.Verify(h.step); err != nil {
		var missing *ledger.MissingArtifactError
		if errors.As(err, &missing) {
			return d.corrupted(st, missing.Step, missing.Artifact, missing.Path)
		}
		return err
	}
	if h.load == nil {
		return nil
	}
	if err := h.load(ctx, st); err != nil {
		if errors.Is(err, ledger.ErrArtifactNotFound) {
			return d.corrupted(st, h.step, strings.TrimPrefix(err.Error(), ledger.ErrArtifactNotFound.Error()+": "), "")
		}
		return err
	}
	return nil
}

// corrupted builds the fail-fast error for a done step with a missing
// artifact. A missing audio file clears the download marker so the next run
// downloads again.
func (d *Driver) corrupted(st *runState, step ledger.Step, artifact, path string) error {
	if path == "" {
		path = st.job.Path(artifact)
	}
	cerr := &CorruptedStateError{URL: st.url, Step: step, Artifact: artifact, Path: path}
	if step == ledger.StepDownloadAudio {
		if err := st.job.Clear(ledger.StepDownloadAudio); err != nil {
			return errors.Join(cerr, err)
		}
		cerr.Cleared = true
		fmt.Fprintf(st.report, "Audio file %s not found, removed download marker. Re-run to download audio again.\n", path)
	}
	return cerr
}

func (d *Driver) loadMetadata(_ context.Context, st *runState) error {
	return st.job.LoadJSON(metadataFile, &st.meta)
}

func (d *Driver) fetchMetadata(ctx context.Context, st *runState) error {
	if d.deps.Resolver == nil {
		return services.Wrap(services.ErrConfiguration, string(ledger.StepFetchMetadata), "resolve", "no resolver configured", nil)
	}
	meta, err := d.deps.Resolver.Resolve(ctx, st.url)
	if err != nil {
		return err
	}
	if strings.TrimSpace(meta.Title) == "" {
		return services.Wrap(services.ErrValidation, string(ledger.StepFetchMetadata), "resolve",
			"could not extract title from video info", nil)
	}
	if strings.TrimSpace(meta.WebpageURL) == "" {
		meta.WebpageURL = st.url
	}
	if strings.TrimSpace(meta.ID) == "" {
		meta.ID = st.job.Key()
	}
	st.meta = meta
	if err := st.job.SaveJSON(metadataFile, meta); err != nil {
		return err
	}
	return st.job.MarkDone(ledger.StepFetchMetadata, metadataFile)
}

func (d *Driver) loadAudio(_ context.Context, st *runState) error {
	rel, err := st.job.LoadText(audioPathFile)
	if err != nil {
		return err
	}
	st.audioPath = st.job.Path(strings.TrimSpace(rel))
	fmt.Fprintf(st.report, "Audio file: %s\n", st.audioPath)
	return nil
}

func (d *Driver) downloadAudio(ctx context.Context, st *runState) error {
	if d.deps.Downloader == nil {
		return services.Wrap(services.ErrConfiguration, string(ledger.StepDownloadAudio), "download", "no downloader configured", nil)
	}
	path, err := d.deps.Downloader.Download(ctx, st.url, st.meta.ID, st.job.Dir(), st.upgrade)
	if err != nil {
		return err
	}
	if !filepath.IsAbs(path) {
		path = st.job.Path(path)
	}
	rel := relativeTo(st.job.Dir(), path)
	if err := st.job.SaveText(audioPathFile, rel); err != nil {
		return err
	}
	st.audioPath = path
	fmt.Fprintf(st.report, "Audio extracted to: %s\n", path)
	return st.job.MarkDone(ledger.StepDownloadAudio, audioPathFile, rel)
}

func (d *Driver) loadTranscript(_ context.Context, st *runState) error {
	text, err := st.job.LoadText(transcriptFile(st.meta.ID))
	if err != nil {
		return err
	}
	st.transcript = text
	return nil
}

func (d *Driver) transcribe(ctx context.Context, st *runState) error {
	if d.deps.Transcriber == nil {
		return services.Wrap(services.ErrConfiguration, string(ledger.StepTranscribe), "transcribe", "no transcriber configured", nil)
	}
	path, err := d.deps.Transcriber.Transcribe(ctx, st.audioPath, st.job.Dir(), st.upgrade)
	if err != nil {
		return err
	}
	text, err := st.job.LoadText(path)
	if err != nil {
		if errors.Is(err, ledger.ErrArtifactNotFound) {
			return services.Wrap(services.ErrExternalTool, string(ledger.StepTranscribe), "transcribe",
				fmt.Sprintf("transcription output %s not found", path), nil)
		}
		return err
	}
	name := transcriptFile(st.meta.ID)
	if st.job.Path(name) != path {
		if err := st.job.SaveText(name, text); err != nil {
			return err
		}
	}
	st.transcript = text
	return st.job.MarkDone(ledger.StepTranscribe, name)
}

func (d *Driver) loadSummary(_ context.Context, st *runState) error {
	name := summaryFile(st.meta.ID)
	text, err := st.job.LoadText(name)
	if err != nil {
		return err
	}
	st.summary = text
	st.summaryAbs = absPath(st.job.Path(name))
	fmt.Fprintf(st.report, "Summary file: %s\n", st.summaryAbs)
	return nil
}

func (d *Driver) summarize(ctx context.Context, st *runState) error {
	if d.deps.Summarizer == nil {
		return services.Wrap(services.ErrConfiguration, string(ledger.StepSummarize), "summarize", "no summarizer configured", nil)
	}
	content, err := d.deps.Summarizer.Summarize(ctx, summarize.Request{
		Transcript: st.transcript,
		Prompt:     summarize.PromptOrDefault(d.deps.Prompt),
		Model:      st.model,
		WorkDir:    st.job.Dir(),
	})
	if err != nil {
		return err
	}
	name := summaryFile(st.meta.ID)
	full := SummaryHeader(st.meta.WebpageURL, st.meta.Title) + content
	if err := st.job.SaveText(name, full); err != nil {
		return err
	}
	st.summary = full
	st.summaryAbs = absPath(st.job.Path(name))
	fmt.Fprintf(st.report, "Summary saved to %s\n", st.summaryAbs)
	return st.job.MarkDone(ledger.StepSummarize, name)
}

func (d *Driver) loadPasteURL(_ context.Context, st *runState) error {
	link, err := st.job.LoadText(pasteURLFile)
	if err != nil {
		return err
	}
	st.pasteURL = strings.TrimSpace(link)
	return nil
}

// publish never fails the run. On error the step stays unmarked and the
// notification goes out without a transcript link.
func (d *Driver) publish(ctx context.Context, st *runState) error {
	logger := logging.WithContext(ctx, d.logger)
	if d.deps.Publisher == nil {
		logger.Info("step skipped",
			logging.String(logging.FieldEventType, "step_skipped"),
			logging.String("reason", "publisher disabled"),
		)
		return nil
	}
	link, err := d.deps.Publisher.Publish(ctx, st.transcript, st.meta.Title, st.meta.WebpageURL)
	if err == nil && strings.TrimSpace(link) == "" {
		err = errors.New("publisher returned an empty link")
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logging.WarnWithContext(logger, "step soft-failed", "step_soft_failure",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "rerun the same command to retry the upload"),
			logging.String(logging.FieldImpact, "notifications will not include a transcript link"),
		)
		fmt.Fprintf(st.report, "Warning: transcript upload failed: %v\n", err)
		return nil
	}
	link = strings.TrimSpace(link)
	st.pasteURL = link
	fmt.Fprintf(st.report, "Full transcript uploaded: %s\n", link)
	err = st.job.SaveText(pasteURLFile, link)
	if err == nil {
		err = st.job.MarkDone(ledger.StepPublishTranscript, pasteURLFile)
	}
	if err != nil {
		logging.WarnWithContext(logger, "record transcript link failed", "step_soft_failure",
			logging.Error(err),
			logging.String("paste_url", link),
			logging.String(logging.FieldImpact, "the next run uploads the transcript again"),
		)
		fmt.Fprintf(st.report, "Warning: could not record transcript link: %v\n", err)
	}
	return nil
}

func (d *Driver) notify(ctx context.Context, st *runState) error {
	if d.deps.Notifier != nil {
		st.deliveries = d.deps.Notifier.Dispatch(ctx, notifications.Message{
			Title:       st.meta.Title,
			Markdown:    AnnotateSummary(st.summary, st.pasteURL, st.meta.WebpageURL),
			SummaryPath: st.summaryAbs,
			SourceURL:   st.meta.WebpageURL,
			PasteURL:    st.pasteURL,
		})
		for _, r := range st.deliveries {
			switch {
			case r.OK():
				fmt.Fprintf(st.report, "✓ %s sent\n", r.Channel)
			case r.Skipped:
				fmt.Fprintf(st.report, "- %s skipped: %v\n", r.Channel, r.Err)
			default:
				fmt.Fprintf(st.report, "Warning: %s failed: %v\n", r.Channel, r.Err)
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return st.job.MarkDone(ledger.StepNotify)
}

// Status returns the step report for url without running anything.
func (d *Driver) Status(url string) ([]ledger.StepStatus, string, error) {
	key := jobkey.Derive(url)
	job, err := ledger.OpenExisting(d.deps.JobRoot, key)
	if err != nil {
		return nil, jobkey.Dir(d.deps.JobRoot, key), err
	}
	return job.Snapshot(), job.Dir(), nil
}

// WriteStatusReport prints one line per step, marking completed steps.
func WriteStatusReport(w io.Writer, statuses []ledger.StepStatus) {
	fmt.Fprintln(w, "\nResume mode - Current status:")
	for _, s := range statuses {
		if s.Done {
			fmt.Fprintf(w, "✓ %s (completed)\n", s.Step)
		} else {
			fmt.Fprintf(w, "○ %s (pending)\n", s.Step)
		}
	}
	fmt.Fprintln(w)
}

func relativeTo(dir, path string) string {
	if rel, err := filepath.Rel(dir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			return resolved
		}
		return abs
	}
	return path
}
