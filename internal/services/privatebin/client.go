package privatebin

import (
	"bytes"
	"compress/flate"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/pbkdf2"

	"yt-transcribe/internal/services"
)

// Paste format v2 parameters.
const (
	formatVersion  = 2
	kdfIterations  = 100000
	keySizeBits    = 256
	tagSizeBits    = 128
	ivSize         = 16
	saltSize       = 8
	masterKeySize  = 32
	cipherAlgo     = "aes"
	cipherMode     = "gcm"
	compressionTag = "zlib"

	defaultExpire    = "1week"
	defaultFormatter = "markdown"
	defaultTimeout   = 30 * time.Second
)

// Config captures the PrivateBin host settings.
type Config struct {
	URL            string
	Expire         string
	Formatter      string
	TimeoutSeconds int
}

// Client publishes end-to-end encrypted pastes.
type Client struct {
	cfg        Config
	httpClient *http.Client
	random     io.Reader
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

// WithRandom overrides the entropy source used for keys and nonces.
func WithRandom(r io.Reader) Option {
	return func(c *Client) {
		if r != nil {
			c.random = r
		}
	}
}

// NewClient constructs a PrivateBin client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	cfg.URL = strings.TrimSpace(cfg.URL)
	if !strings.HasSuffix(cfg.URL, "/") {
		cfg.URL += "/"
	}
	if strings.TrimSpace(cfg.Expire) == "" {
		cfg.Expire = defaultExpire
	}
	if strings.TrimSpace(cfg.Formatter) == "" {
		cfg.Formatter = defaultFormatter
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		random:     rand.Reader,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Publish uploads the transcript with a title header and returns the shareable link.
func (c *Client) Publish(ctx context.Context, transcript, title, sourceURL string) (string, error) {
	return c.Upload(ctx, FormatDocument(transcript, title, sourceURL))
}

// FormatDocument renders the paste body for a transcript.
func FormatDocument(transcript, title, sourceURL string) string {
	var b strings.Builder
	if title = strings.TrimSpace(title); title != "" {
		b.WriteString("# ")
		b.WriteString(title)
		b.WriteString("\n\n")
	}
	if sourceURL = strings.TrimSpace(sourceURL); sourceURL != "" {
		b.WriteString("Source: ")
		b.WriteString(sourceURL)
		b.WriteString("\n\n")
	}
	b.WriteString(strings.TrimSpace(transcript))
	b.WriteString("\n")
	return b.String()
}

type pasteRequest struct {
	V     int             `json:"v"`
	AData json.RawMessage `json:"adata"`
	CT    string          `json:"ct"`
	Meta  pasteMeta       `json:"meta"`
}

type pasteMeta struct {
	Expire string `json:"expire"`
}

type pasteResponse struct {
	Status      int    `json:"status"`
	ID          string `json:"id"`
	URL         string `json:"url"`
	DeleteToken string `json:"deletetoken"`
	Message     string `json:"message"`
}

// Upload encrypts text and posts it, returning "<host>?<id>#<base58 key>".
func (c *Client) Upload(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", services.Wrap(services.ErrValidation, "", "privatebin", "empty paste", nil)
	}

	key := make([]byte, masterKeySize)
	iv := make([]byte, ivSize)
	salt := make([]byte, saltSize)
	for _, buf := range [][]byte{key, iv, salt} {
		if _, err := io.ReadFull(c.random, buf); err != nil {
			return "", fmt.Errorf("privatebin: read random: %w", err)
		}
	}

	adata, err := buildAData(iv, salt, c.cfg.Formatter)
	if err != nil {
		return "", err
	}
	ct, err := encrypt(key, iv, salt, adata, text)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(pasteRequest{
		V:     formatVersion,
		AData: adata,
		CT:    base64.StdEncoding.EncodeToString(ct),
		Meta:  pasteMeta{Expire: c.cfg.Expire},
	})
	if err != nil {
		return "", fmt.Errorf("privatebin: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("privatebin: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "JSONHttpRequest")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "", "privatebin", "post paste", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("privatebin: read response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", services.Wrap(services.ErrExternalTool, "", "privatebin",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))), nil)
	}

	var result pasteResponse
	if err := json.Unmarshal(payload, &result); err != nil {
		return "", services.Wrap(services.ErrValidation, "", "privatebin", "decode response", err)
	}
	if result.Status != 0 {
		return "", services.Wrap(services.ErrExternalTool, "", "privatebin", "rejected paste", errors.New(result.Message))
	}
	if strings.TrimSpace(result.ID) == "" {
		return "", services.Wrap(services.ErrValidation, "", "privatebin", "response missing paste id", nil)
	}
	return c.cfg.URL + "?" + result.ID + "#" + base58.Encode(key), nil
}

// buildAData returns the compact JSON authenticated-data array.
func buildAData(iv, salt []byte, formatter string) ([]byte, error) {
	spec := []any{
		base64.StdEncoding.EncodeToString(iv),
		base64.StdEncoding.EncodeToString(salt),
		kdfIterations,
		keySizeBits,
		tagSizeBits,
		cipherAlgo,
		cipherMode,
		compressionTag,
	}
	adata, err := json.Marshal([]any{spec, formatter, 0, 0})
	if err != nil {
		return nil, fmt.Errorf("privatebin: encode adata: %w", err)
	}
	return adata, nil
}

func deriveKey(key, salt []byte) []byte {
	return pbkdf2.Key(key, salt, kdfIterations, keySizeBits/8, sha256.New)
}

func newGCM(key, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(key, salt))
	if err != nil {
		return nil, fmt.Errorf("privatebin: cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, fmt.Errorf("privatebin: gcm: %w", err)
	}
	return gcm, nil
}

func encrypt(key, iv, salt, adata []byte, text string) ([]byte, error) {
	plain, err := json.Marshal(map[string]string{"paste": text})
	if err != nil {
		return nil, fmt.Errorf("privatebin: encode paste: %w", err)
	}
	var compressed bytes.Buffer
	writer, err := flate.NewWriter(&compressed, flate.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("privatebin: deflate: %w", err)
	}
	if _, err := writer.Write(plain); err != nil {
		return nil, fmt.Errorf("privatebin: deflate: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("privatebin: deflate: %w", err)
	}

	gcm, err := newGCM(key, salt)
	if err != nil {
		return nil, err
	}
	return gcm.Seal(nil, iv, compressed.Bytes(), adata), nil
}
