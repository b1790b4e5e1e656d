package summarize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	defaultGeminiModel = "gemini-2.5-flash"
	geminiTemperature  = 0.7
)

// GenerateFunc performs one Gemini generation.
type GenerateFunc func(ctx context.Context, model, system, user string) (string, error)

// GeminiConfig holds the Gemini API settings.
type GeminiConfig struct {
	APIKey         string
	Model          string
	TimeoutSeconds int
}

// Gemini summarizes through the Gemini API.
type Gemini struct {
	cfg      GeminiConfig
	generate GenerateFunc
}

// GeminiOption customizes the Gemini backend.
type GeminiOption func(*Gemini)

// WithGenerate replaces the genai call.
func WithGenerate(generate GenerateFunc) GeminiOption {
	return func(g *Gemini) {
		if generate != nil {
			g.generate = generate
		}
	}
}

// NewGemini constructs the Gemini backend.
func NewGemini(cfg GeminiConfig, opts ...GeminiOption) *Gemini {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultGeminiModel
	}
	g := &Gemini{cfg: cfg}
	g.generate = g.generateContent
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gemini) Summarize(ctx context.Context, req Request) (string, error) {
	model := g.cfg.Model
	if override := strings.TrimSpace(req.Model); override != "" {
		model = override
	}
	text, err := g.generate(ctx, model, AnalystSystemPrompt, UserMessage(req.Prompt, req.Transcript))
	if err != nil {
		return "", fmt.Errorf("gemini summarization failed: %w", err)
	}
	summary := strings.TrimSpace(text)
	if summary == "" {
		return "", errors.New("gemini summarization returned an empty summary")
	}
	return summary, nil
}

// Check confirms an API key is configured.
func (g *Gemini) Check(context.Context) error {
	if g.cfg.APIKey == "" {
		return errors.New("gemini api key not configured")
	}
	return nil
}

func (g *Gemini) generateContent(ctx context.Context, model, system, user string) (string, error) {
	httpClient := &http.Client{}
	if g.cfg.TimeoutSeconds > 0 {
		httpClient.Timeout = time.Duration(g.cfg.TimeoutSeconds) * time.Second
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     g.cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}
	temperature := float32(geminiTemperature)
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(user), &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		Temperature:       &temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
