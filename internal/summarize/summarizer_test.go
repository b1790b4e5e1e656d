package summarize_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"yt-transcribe/internal/config"
	"yt-transcribe/internal/services"
	"yt-transcribe/internal/summarize"
)

func TestNewSelectsBackend(t *testing.T) {
	cfg := config.Default()
	s, err := summarize.New(&cfg)
	if err != nil {
		t.Fatalf("New codex: %v", err)
	}
	if _, ok := s.(*summarize.Codex); !ok {
		t.Fatalf("expected codex backend, got %T", s)
	}

	cfg.Summary.Backend = config.BackendOpenAI
	if _, err := summarize.New(&cfg); !errors.Is(err, services.ErrPrecondition) {
		t.Fatalf("expected precondition error without key, got %v", err)
	}
	cfg.Summary.OpenAI.APIKey = "sk-test"
	if s, err = summarize.New(&cfg); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*summarize.OpenAI); !ok {
		t.Fatalf("expected openai backend, got %T", s)
	}

	cfg.Summary.Backend = config.BackendGemini
	if _, err := summarize.New(&cfg); !errors.Is(err, services.ErrPrecondition) {
		t.Fatalf("expected precondition error without gemini key, got %v", err)
	}

	cfg.Summary.Backend = "claude"
	if _, err := summarize.New(&cfg); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestOpenAIBackendRequest(t *testing.T) {
	var payload struct {
		Model       string   `json:"model"`
		Temperature *float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"- point one"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Summary.Backend = config.BackendOpenAI
	cfg.Summary.OpenAI.APIKey = "sk-test"
	cfg.Summary.OpenAI.BaseURL = server.URL
	s, err := summarize.New(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	summary, err := s.Summarize(context.Background(), summarize.Request{Transcript: "hello", Prompt: "Summarize."})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary != "- point one" {
		t.Fatalf("unexpected summary %q", summary)
	}
	if payload.Model != "gpt-4o-mini" || payload.Temperature == nil || *payload.Temperature != 0.7 {
		t.Fatalf("unexpected request model=%q temperature=%v", payload.Model, payload.Temperature)
	}
	if len(payload.Messages) != 2 || payload.Messages[0].Content != summarize.AnalystSystemPrompt ||
		payload.Messages[1].Content != "Summarize.\n\nTranscript:\nhello" {
		t.Fatalf("unexpected messages %+v", payload.Messages)
	}
}

func TestGeminiBackendUsesGenerator(t *testing.T) {
	cfg := config.Default()
	cfg.Summary.Backend = config.BackendGemini
	cfg.Summary.Gemini.APIKey = "g-key"
	var gotModel, gotSystem, gotUser string
	s, err := summarize.New(&cfg, summarize.WithGeminiGenerator(func(_ context.Context, model, system, user string) (string, error) {
		gotModel, gotSystem, gotUser = model, system, user
		return "  - insight  ", nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	summary, err := s.Summarize(context.Background(), summarize.Request{Transcript: "t"})
	if err != nil {
		t.Fatal(err)
	}
	if summary != "- insight" || gotModel != "gemini-2.5-flash" || gotSystem != summarize.AnalystSystemPrompt {
		t.Fatalf("unexpected call model=%q summary=%q", gotModel, summary)
	}
	if !strings.HasPrefix(gotUser, summarize.InvestmentPrompt) {
		t.Fatalf("expected default prompt, got %q", gotUser)
	}
}

func TestGeminiBackendEmptyResponse(t *testing.T) {
	g := summarize.NewGemini(summarize.GeminiConfig{APIKey: "k"}, summarize.WithGenerate(
		func(context.Context, string, string, string) (string, error) { return " ", nil }))
	if _, err := g.Summarize(context.Background(), summarize.Request{Transcript: "t"}); err == nil {
		t.Fatal("expected empty summary error")
	}
}

func TestPromptHelpers(t *testing.T) {
	if summarize.PromptOrDefault("  ") != summarize.InvestmentPrompt {
		t.Fatal("expected default prompt for blank input")
	}
	if got := summarize.UserMessage("P", "T"); got != "P\n\nTranscript:\nT" {
		t.Fatalf("unexpected user message %q", got)
	}
	if !strings.Contains(summarize.InvestmentPrompt, "**Alpha signals:**") {
		t.Fatal("expected alpha signals bullet")
	}
}

func TestOpenAICheckIsLocalAndProbeIsLive(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"OK"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Summary.Backend = config.BackendOpenAI
	cfg.Summary.OpenAI.APIKey = "sk-test"
	cfg.Summary.OpenAI.BaseURL = server.URL + "/v1"
	s, err := summarize.New(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.(summarize.Checker).Check(context.Background()); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if requests != 0 {
		t.Fatalf("expected Check to make no request, got %d", requests)
	}
	prober, ok := s.(summarize.Prober)
	if !ok {
		t.Fatal("expected openai backend to implement Prober")
	}
	if err := prober.Probe(context.Background()); err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if requests != 1 {
		t.Fatalf("expected one live request, got %d", requests)
	}
}
