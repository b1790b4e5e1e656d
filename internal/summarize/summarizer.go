package summarize

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"yt-transcribe/internal/config"
	"yt-transcribe/internal/services"
	"yt-transcribe/internal/services/llm"
)

// Summarizer condenses a transcript into markdown.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (string, error)
}

// Checker is implemented by backends that can verify their prerequisites
// before a run starts. Check stays local: no network calls.
type Checker interface {
	Check(ctx context.Context) error
}

// Prober is implemented by backends that can confirm with a live request
// that the service accepts their credentials.
type Prober interface {
	Probe(ctx context.Context) error
}

// Request carries one summarization job.
type Request struct {
	Transcript string
	Prompt     string
	// Model overrides the backend's configured model when set.
	Model string
	// WorkDir receives backend scratch files such as the Codex output file.
	WorkDir string
}

type toolError struct {
	msg    string
	marker error
}

func (e *toolError) Error() string { return e.msg }

func (e *toolError) Unwrap() error { return e.marker }

type options struct {
	httpClient *http.Client
	codexOpts  []CodexOption
	generate   GenerateFunc
	llmOpts    []llm.Option
}

// Option customizes backend construction.
type Option func(*options)

// WithHTTPClient sets the HTTP client used by the openai backend.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// WithCodexOptions forwards options to the codex backend.
func WithCodexOptions(opts ...CodexOption) Option {
	return func(o *options) { o.codexOpts = append(o.codexOpts, opts...) }
}

// WithGeminiGenerator replaces the genai call used by the gemini backend.
func WithGeminiGenerator(generate GenerateFunc) Option {
	return func(o *options) { o.generate = generate }
}

// WithLLMOptions forwards options to the openai backend's client.
func WithLLMOptions(opts ...llm.Option) Option {
	return func(o *options) { o.llmOpts = append(o.llmOpts, opts...) }
}

// New selects the backend named by summary.backend.
func New(cfg *config.Config, opts ...Option) (Summarizer, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Summary.Backend))
	switch backend {
	case config.BackendCodex:
		return NewCodex(CodexConfig{
			BunX:    cfg.Tools.BunX,
			Package: cfg.Summary.Codex.Package,
			Model:   cfg.SummaryModel(),
		}, o.codexOpts...), nil
	case config.BackendOpenAI:
		settings := cfg.SummaryLLM()
		if settings.APIKey == "" {
			return nil, &toolError{
				msg:    "openai summarizer requires an API key (set summary.openai.api_key or OPENAI_API_KEY)",
				marker: services.ErrPrecondition,
			}
		}
		llmOpts := []llm.Option{llm.WithRetryMaxAttempts(settings.RetryAttempts)}
		if o.httpClient != nil {
			llmOpts = append(llmOpts, llm.WithHTTPClient(o.httpClient))
		}
		llmOpts = append(llmOpts, o.llmOpts...)
		client := llm.NewClient(llm.Config{
			APIKey:         settings.APIKey,
			BaseURL:        settings.BaseURL,
			Model:          settings.Model,
			TimeoutSeconds: settings.TimeoutSeconds,
		}, llmOpts...)
		return NewOpenAI(client), nil
	case config.BackendGemini:
		if strings.TrimSpace(cfg.Summary.Gemini.APIKey) == "" {
			return nil, &toolError{
				msg:    "gemini summarizer requires an API key (set summary.gemini.api_key or GEMINI_API_KEY)",
				marker: services.ErrPrecondition,
			}
		}
		var geminiOpts []GeminiOption
		if o.generate != nil {
			geminiOpts = append(geminiOpts, WithGenerate(o.generate))
		}
		return NewGemini(GeminiConfig{
			APIKey:         cfg.Summary.Gemini.APIKey,
			Model:          cfg.SummaryModel(),
			TimeoutSeconds: cfg.Summary.TimeoutSeconds,
		}, geminiOpts...), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "", "summarize",
			fmt.Sprintf("unknown summary backend %q", cfg.Summary.Backend), nil)
	}
}
