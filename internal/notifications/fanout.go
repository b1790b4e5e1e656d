package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"yt-transcribe/internal/logging"
)

// ErrSkipped marks a channel that chose not to deliver, such as a missing
// optional binary. Skips are reported separately from failures.
var ErrSkipped = errors.New("channel skipped")

// Message is the content delivered to every channel.
type Message struct {
	Title       string
	Markdown    string
	SummaryPath string
	SourceURL   string
	PasteURL    string
}

// Channel delivers a message over one transport.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, msg Message) error
}

// Result records the outcome of one channel.
type Result struct {
	Channel string
	Err     error
	Skipped bool
	Elapsed time.Duration
}

// OK reports whether the channel delivered.
func (r Result) OK() bool { return r.Err == nil && !r.Skipped }

// Status returns "sent", "skipped" or "failed".
func (r Result) Status() string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Err != nil:
		return "failed"
	default:
		return "sent"
	}
}

// FanOut delivers a message to every channel in order.
type FanOut struct {
	channels []Channel
	logger   *slog.Logger
	now      func() time.Time
}

// NewFanOut builds a fan-out over channels, preserving their order.
func NewFanOut(logger *slog.Logger, channels ...Channel) *FanOut {
	filtered := make([]Channel, 0, len(channels))
	for _, ch := range channels {
		if ch != nil {
			filtered = append(filtered, ch)
		}
	}
	return &FanOut{
		channels: filtered,
		logger:   logging.NewComponentLogger(logger, "notifications"),
		now:      time.Now,
	}
}

// Channels returns the configured channel names.
func (f *FanOut) Channels() []string {
	if f == nil {
		return nil
	}
	names := make([]string, 0, len(f.channels))
	for _, ch := range f.channels {
		names = append(names, ch.Name())
	}
	return names
}

// Dispatch attempts every channel sequentially. A failing or panicking channel
// never prevents later channels from running.
func (f *FanOut) Dispatch(ctx context.Context, msg Message) []Result {
	if f == nil {
		return nil
	}
	logger := logging.WithContext(ctx, f.logger)
	results := make([]Result, 0, len(f.channels))
	for _, ch := range f.channels {
		start := f.now()
		err := deliver(ctx, ch, msg)
		result := Result{Channel: ch.Name(), Elapsed: f.now().Sub(start)}
		switch {
		case err == nil:
			logger.Info("notification delivered",
				logging.String("channel", result.Channel),
				logging.Duration("elapsed", result.Elapsed),
				logging.String(logging.FieldEventType, "notify_sent"),
			)
		case errors.Is(err, ErrSkipped):
			result.Skipped = true
			result.Err = err
			logger.Info("notification skipped",
				logging.String("channel", result.Channel),
				logging.String("reason", err.Error()),
				logging.String(logging.FieldEventType, "notify_skipped"),
			)
		default:
			result.Err = err
			logging.WarnWithContext(logger, "notification failed", "notify_failure",
				logging.String("channel", result.Channel),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check "+result.Channel+" settings, then run yt-transcribe test-notify"),
				logging.String(logging.FieldImpact, "summary not delivered via "+result.Channel),
			)
		}
		results = append(results, result)
	}
	return results
}

func deliver(ctx context.Context, ch Channel, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s channel panicked: %v", ch.Name(), r)
		}
	}()
	return ch.Deliver(ctx, msg)
}

// Summarize renders results as "email=sent telegram=failed".
func Summarize(results []Result) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, r.Channel+"="+r.Status())
	}
	return strings.Join(parts, " ")
}
