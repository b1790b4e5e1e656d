package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"os"
	"os/exec"
	"strings"
	"time"

	"yt-transcribe/internal/services"
)

const (
	defaultSendmailPath  = "/usr/sbin/sendmail"
	defaultSubjectPrefix = "[YT Transcribe]"
)

// SendmailRunner pipes a message into the sendmail binary.
type SendmailRunner func(ctx context.Context, path string, args []string, message []byte) (stderr []byte, err error)

// Config describes the envelope and local MTA.
type Config struct {
	Recipient     string
	Sender        string
	SendmailPath  string
	SubjectPrefix string
}

// Sender delivers summaries through the local MTA.
type Sender struct {
	cfg Config
	run SendmailRunner
	now func() time.Time
}

// Option customizes the sender.
type Option func(*Sender)

// WithRunner overrides the sendmail invocation.
func WithRunner(run SendmailRunner) Option {
	return func(s *Sender) {
		if run != nil {
			s.run = run
		}
	}
}

// WithClock overrides the Date header clock.
func WithClock(now func() time.Time) Option {
	return func(s *Sender) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSender constructs an email sender.
func NewSender(cfg Config, opts ...Option) *Sender {
	if strings.TrimSpace(cfg.SendmailPath) == "" {
		cfg.SendmailPath = defaultSendmailPath
	}
	if strings.TrimSpace(cfg.SubjectPrefix) == "" {
		cfg.SubjectPrefix = defaultSubjectPrefix
	}
	s := &Sender{cfg: cfg, run: execSendmail, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subject returns the subject line for a summary title.
func (s *Sender) Subject(title string) string {
	return strings.TrimSpace(s.cfg.SubjectPrefix + " " + strings.TrimSpace(title))
}

// Send emails markdown as a multipart/alternative message with plain and HTML parts.
func (s *Sender) Send(ctx context.Context, markdown, title string) error {
	if strings.TrimSpace(s.cfg.Recipient) == "" {
		return services.Wrap(services.ErrConfiguration, "", "email", "recipient not configured", nil)
	}
	msg, err := s.Compose(markdown, title)
	if err != nil {
		return err
	}
	stderr, err := s.run(ctx, s.cfg.SendmailPath, []string{"-t", "-oi"}, msg)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return err
		}
		detail := strings.TrimSpace(string(stderr))
		if detail == "" {
			detail = "no error output"
		}
		return services.Wrap(services.ErrExternalTool, "", "sendmail", detail, err)
	}
	return nil
}

// Compose builds the raw RFC 5322 message.
func (s *Sender) Compose(markdown, title string) ([]byte, error) {
	htmlBody, err := RenderHTML(markdown)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writePart(writer, "text/plain; charset=utf-8", markdown); err != nil {
		return nil, err
	}
	if err := writePart(writer, "text/html; charset=utf-8", htmlBody); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	var msg bytes.Buffer
	header := func(key, value string) {
		msg.WriteString(key)
		msg.WriteString(": ")
		msg.WriteString(value)
		msg.WriteString("\r\n")
	}
	header("From", s.cfg.Sender)
	header("To", s.cfg.Recipient)
	header("Subject", mime.QEncoding.Encode("utf-8", s.Subject(title)))
	header("Date", s.now().Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", "multipart/alternative; boundary="+writer.Boundary())
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

func writePart(writer *multipart.Writer, contentType, content string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	h.Set("Content-Transfer-Encoding", "quoted-printable")
	part, err := writer.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create %s part: %w", contentType, err)
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(content)); err != nil {
		return fmt.Errorf("write %s part: %w", contentType, err)
	}
	return qp.Close()
}

func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, "", "email", "sendmail not found at "+path, nil)
		}
		return err
	}
	if info.IsDir() {
		return services.Wrap(services.ErrNotFound, "", "email", "sendmail not found at "+path, nil)
	}
	return nil
}

func execSendmail(ctx context.Context, path string, args []string, message []byte) ([]byte, error) {
	if err := checkExecutable(path); err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, path, args...) //nolint:gosec
	cmd.Stdin = bytes.NewReader(message)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}
