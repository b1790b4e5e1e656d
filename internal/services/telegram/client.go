package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"yt-transcribe/internal/services"
	"yt-transcribe/internal/textutil"
)

// MessageLimit is the longest text message Telegram accepts, in characters.
const MessageLimit = 4096

const (
	defaultAPIURL     = "https://api.telegram.org"
	defaultTimeout    = 60 * time.Second
	filenameTitleMax  = 50
	fallbackFilename  = "summary"
	maxResponseLength = 1 << 16
)

var (
	// ErrMissingToken reports that no bot token is configured.
	ErrMissingToken = errors.New("Telegram bot token not configured (set in ~/.config/yt-transcribe/config.toml or TELEGRAM_BOT_TOKEN env var)")
	// ErrMissingChatID reports that no chat id is configured.
	ErrMissingChatID = errors.New("Telegram chat ID not configured (set in ~/.config/yt-transcribe/config.toml or TELEGRAM_CHAT_ID env var)")
)

// Mode identifies how a summary was delivered.
type Mode int

const (
	ModeMessage Mode = iota
	ModeDocument
)

func (m Mode) String() string {
	if m == ModeDocument {
		return "document"
	}
	return "message"
}

// SelectMode picks message delivery when the formatted text fits in one message.
func SelectMode(formatted string) Mode {
	if utf8.RuneCountInString(formatted) <= MessageLimit {
		return ModeMessage
	}
	return ModeDocument
}

// Config holds bot credentials and transport settings.
type Config struct {
	BotToken       string
	ChatID         string
	APIURL         string
	TimeoutSeconds int
}

// Client sends summaries through the Telegram Bot API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a Telegram client.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.BotToken = strings.TrimSpace(cfg.BotToken)
	cfg.ChatID = strings.TrimSpace(cfg.ChatID)
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// CheckCredentials reports missing token or chat id.
func (c *Client) CheckCredentials() error {
	if c.cfg.BotToken == "" {
		return ErrMissingToken
	}
	if c.cfg.ChatID == "" {
		return ErrMissingChatID
	}
	return nil
}

// Send delivers markdown as an HTML message, or as a PDF document when the
// formatted text exceeds MessageLimit.
func (c *Client) Send(ctx context.Context, markdown, title string) (Mode, error) {
	if err := c.CheckCredentials(); err != nil {
		return ModeMessage, err
	}
	formatted := FormatHTML(markdown)
	mode := SelectMode(formatted)
	if mode == ModeMessage {
		return mode, c.SendMessage(ctx, formatted)
	}

	pdf, err := RenderPDF(markdown, title)
	if err != nil {
		return mode, services.Wrap(services.ErrExternalTool, "", "telegram", "render pdf", err)
	}
	caption := fmt.Sprintf("Summary too long for message (%d chars), sent as PDF", utf8.RuneCountInString(markdown))
	return mode, c.SendDocument(ctx, DocumentFilename(title), caption, pdf)
}

// DocumentFilename derives the PDF attachment name from the first 50
// characters of the title.
func DocumentFilename(title string) string {
	name := textutil.SanitizeFileName(textutil.Truncate(strings.TrimSpace(title), filenameTitleMax))
	if strings.TrimSpace(name) == "" {
		name = fallbackFilename
	}
	return name + ".pdf"
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
}

// SendMessage posts pre-formatted HTML text.
func (c *Client) SendMessage(ctx context.Context, html string) error {
	if err := c.CheckCredentials(); err != nil {
		return err
	}
	body, err := json.Marshal(sendMessageRequest{
		ChatID:    c.cfg.ChatID,
		Text:      html,
		ParseMode: "HTML",
	})
	if err != nil {
		return fmt.Errorf("telegram: encode message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, "sendMessage")
}

// SendDocument uploads a PDF with a caption.
func (c *Client) SendDocument(ctx context.Context, filename, caption string, document []byte) error {
	if err := c.CheckCredentials(); err != nil {
		return err
	}
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("chat_id", c.cfg.ChatID); err != nil {
		return fmt.Errorf("telegram: write chat_id: %w", err)
	}
	if err := writer.WriteField("caption", caption); err != nil {
		return fmt.Errorf("telegram: write caption: %w", err)
	}
	part, err := writer.CreateFormFile("document", filename)
	if err != nil {
		return fmt.Errorf("telegram: create document part: %w", err)
	}
	if _, err := part.Write(document); err != nil {
		return fmt.Errorf("telegram: write document: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("telegram: close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("sendDocument"), &buf)
	if err != nil {
		return fmt.Errorf("telegram: new request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.do(req, "sendDocument")
}

func (c *Client) endpoint(method string) string {
	return c.cfg.APIURL + "/bot" + c.cfg.BotToken + "/" + method
}

func (c *Client) do(req *http.Request, method string) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The request URL embeds the bot token.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return services.Wrap(services.ErrTransient, "", "telegram", method, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseLength))
	if err != nil {
		return fmt.Errorf("telegram: read response: %w", err)
	}

	var parsed apiResponse
	decodeErr := json.Unmarshal(payload, &parsed)
	if resp.StatusCode >= http.StatusMultipleChoices || decodeErr != nil || !parsed.OK {
		detail := strings.TrimSpace(parsed.Description)
		if detail == "" {
			detail = strings.TrimSpace(string(payload))
		}
		return services.Wrap(services.ErrExternalTool, "", "telegram",
			fmt.Sprintf("%s returned %d", method, resp.StatusCode), errors.New(detail))
	}
	return nil
}
