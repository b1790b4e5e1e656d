package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"yt-transcribe/internal/services/llm"
)

const openAITemperature = 0.7

// OpenAI summarizes through an OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	client *llm.Client
}

// NewOpenAI wraps an llm client.
func NewOpenAI(client *llm.Client) *OpenAI {
	return &OpenAI{client: client}
}

func (o *OpenAI) Summarize(ctx context.Context, req Request) (string, error) {
	content, err := o.client.Complete(ctx, llm.Request{
		System:      AnalystSystemPrompt,
		User:        UserMessage(req.Prompt, req.Transcript),
		Model:       req.Model,
		Temperature: openAITemperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai summarization failed: %w", err)
	}
	summary := strings.TrimSpace(llm.StripCodeFence(content))
	if summary == "" {
		return "", errors.New("openai summarization returned an empty summary")
	}
	return summary, nil
}

// Check confirms an API key and model are configured. It makes no request.
func (o *OpenAI) Check(context.Context) error {
	return o.client.Validate()
}

// Probe verifies the API key and model with a minimal completion.
func (o *OpenAI) Probe(ctx context.Context) error {
	return o.client.HealthCheck(ctx)
}
