package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const userAgent = "yt-transcribe/0.1.0"

type ntfyPayload struct {
	title    string
	message  string
	tags     []string
	priority string
	click    string
}

// NtfyChannel pushes a short completion notice to an ntfy topic URL.
type NtfyChannel struct {
	endpoint string
	client   *http.Client
}

// NewNtfyChannel returns nil when topic is empty.
func NewNtfyChannel(topic string, timeoutSeconds int) *NtfyChannel {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil
	}
	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NtfyChannel{endpoint: topic, client: &http.Client{Timeout: timeout}}
}

func (n *NtfyChannel) Name() string { return "ntfy" }

func (n *NtfyChannel) Deliver(ctx context.Context, msg Message) error {
	title := strings.TrimSpace(msg.Title)
	if title == "" {
		title = "untitled"
	}
	message := fmt.Sprintf("📝 Summary ready: %s", title)
	if msg.PasteURL != "" {
		message += "\nTranscript: " + msg.PasteURL
	}
	return n.send(ctx, ntfyPayload{
		title:   "YT Transcribe - Summary Ready",
		message: message,
		tags:    []string{"yt-transcribe", "summary"},
		click:   strings.TrimSpace(msg.SourceURL),
	})
}

func (n *NtfyChannel) send(ctx context.Context, data ntfyPayload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}
	if data.click != "" {
		req.Header.Set("Click", data.click)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
