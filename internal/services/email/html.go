package email

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

const stylesheet = `<style>
    body {
        font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Helvetica, Arial, sans-serif;
        line-height: 1.6;
        color: #333;
        max-width: 800px;
        margin: 0 auto;
        padding: 20px;
        background-color: #f5f5f5;
    }
    .content {
        background-color: #ffffff;
        padding: 30px;
        border-radius: 8px;
        box-shadow: 0 2px 4px rgba(0,0,0,0.1);
    }
    h1, h2, h3 { color: #1a1a1a; margin-top: 24px; margin-bottom: 16px; }
    h1 { font-size: 28px; border-bottom: 2px solid #e1e4e8; padding-bottom: 8px; }
    h2 { font-size: 24px; border-bottom: 1px solid #e1e4e8; padding-bottom: 6px; }
    h3 { font-size: 20px; }
    ul, ol { margin: 16px 0; padding-left: 32px; }
    li { margin: 8px 0; }
    strong { color: #0366d6; font-weight: 600; }
    code {
        background-color: #f6f8fa;
        padding: 2px 6px;
        border-radius: 3px;
        font-family: 'Monaco', 'Menlo', 'Consolas', monospace;
        font-size: 85%;
    }
    pre {
        background-color: #f6f8fa;
        padding: 16px;
        border-radius: 6px;
        overflow-x: auto;
        border: 1px solid #e1e4e8;
    }
    pre code { background-color: transparent; padding: 0; }
    a { color: #0366d6; text-decoration: none; }
    a:hover { text-decoration: underline; }
    blockquote {
        margin: 16px 0;
        padding: 0 16px;
        border-left: 4px solid #dfe2e5;
        color: #6a737d;
    }
</style>`

var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// RenderHTML converts markdown into a styled standalone HTML document.
func RenderHTML(markdown string) (string, error) {
	var body bytes.Buffer
	if err := markdownRenderer.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	var doc bytes.Buffer
	doc.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	doc.WriteString("<meta charset=\"utf-8\">\n")
	doc.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	doc.WriteString(stylesheet)
	doc.WriteString("\n</head>\n<body>\n<div class=\"content\">\n")
	doc.Write(body.Bytes())
	doc.WriteString("</div>\n</body>\n</html>\n")
	return doc.String(), nil
}
