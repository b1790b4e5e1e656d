package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFormatHTML(t *testing.T) {
	input := "## Key Points\n\n- **Bold** claim & <tag>\n* __alt__ bold\nplain a < b"
	want := "<b>Key Points</b>\n\n- <b>Bold</b> claim &amp; &lt;tag&gt;\n- <b>alt</b> bold\nplain a &lt; b"
	if got := FormatHTML(input); got != want {
		t.Fatalf("FormatHTML mismatch\nwant %q\ngot  %q", want, got)
	}
}

func TestSelectModeBoundary(t *testing.T) {
	if SelectMode(strings.Repeat("é", MessageLimit)) != ModeMessage {
		t.Fatal("expected message mode at the limit")
	}
	if SelectMode(strings.Repeat("a", MessageLimit+1)) != ModeDocument {
		t.Fatal("expected document mode past the limit")
	}
}

func TestDocumentFilename(t *testing.T) {
	title := "A/B: " + strings.Repeat("x", 60)
	name := DocumentFilename(title)
	if !strings.HasSuffix(name, ".pdf") || strings.ContainsAny(name, "/:") {
		t.Fatalf("unexpected filename %q", name)
	}
	if got := len([]rune(strings.TrimSuffix(name, ".pdf"))); got > 50 {
		t.Fatalf("expected at most 50 title runes, got %d", got)
	}
	if DocumentFilename("  ") != "summary.pdf" {
		t.Fatalf("unexpected fallback %q", DocumentFilename(""))
	}
}

func TestSendShortSummaryUsesMessage(t *testing.T) {
	var path string
	var got sendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient(Config{BotToken: "tok", ChatID: "42", APIURL: server.URL + "/"})
	mode, err := client.Send(context.Background(), "# Title\n- **one**", "Talk")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if mode != ModeMessage {
		t.Fatalf("expected message mode, got %s", mode)
	}
	if path != "/bottok/sendMessage" {
		t.Fatalf("unexpected path %q", path)
	}
	if got.ChatID != "42" || got.ParseMode != "HTML" || got.Text != "<b>Title</b>\n- <b>one</b>" {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestSendLongSummaryUsesDocument(t *testing.T) {
	markdown := strings.Repeat("- **point** with detail\n", 300)
	var (
		path     string
		caption  string
		chatID   string
		filename string
		document []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		caption = r.FormValue("caption")
		chatID = r.FormValue("chat_id")
		file, header, err := r.FormFile("document")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			filename = header.Filename
			document, _ = io.ReadAll(file)
			file.Close()
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient(Config{BotToken: "tok", ChatID: "42", APIURL: server.URL})
	mode, err := client.Send(context.Background(), markdown, "Talk: A")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if mode != ModeDocument || path != "/bottok/sendDocument" {
		t.Fatalf("expected document delivery, got %s at %q", mode, path)
	}
	wantCaption := "Summary too long for message (7200 chars), sent as PDF"
	if caption != wantCaption {
		t.Fatalf("unexpected caption %q", caption)
	}
	if chatID != "42" || filename != "Talk- A.pdf" {
		t.Fatalf("unexpected chat %q filename %q", chatID, filename)
	}
	if !strings.HasPrefix(string(document), "%PDF-") {
		t.Fatal("expected a PDF document")
	}
}

func TestSendMissingCredentials(t *testing.T) {
	_, err := NewClient(Config{ChatID: "42"}).Send(context.Background(), "hi", "t")
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
	if !strings.Contains(err.Error(), "TELEGRAM_BOT_TOKEN") {
		t.Fatalf("unexpected message %q", err)
	}
	_, err = NewClient(Config{BotToken: "tok"}).Send(context.Background(), "hi", "t")
	if !errors.Is(err, ErrMissingChatID) {
		t.Fatalf("expected ErrMissingChatID, got %v", err)
	}
}

func TestSendReportsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	_, err := NewClient(Config{BotToken: "tok", ChatID: "1", APIURL: server.URL}).Send(context.Background(), "hi", "t")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("expected API description in error, got %v", err)
	}
}

func TestRenderPDF(t *testing.T) {
	data, err := RenderPDF("# Heading\n\n## Sub\n- **bold** item\nParagraph with “quotes”", "Title")
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF-") {
		t.Fatal("expected PDF header")
	}
}
