package telegram

import (
	"html"
	"regexp"
	"strings"
)

var (
	boldPattern   = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
	bulletPattern = regexp.MustCompile(`^[-*]\s+(.*)$`)
)

// FormatHTML converts summary markdown into the HTML subset Telegram accepts.
// Headings become bold lines, bullets are normalized to "- ", bold spans are
// kept and everything else is escaped.
func FormatHTML(markdown string) string {
	lines := strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		switch {
		case stripped == "":
			out = append(out, "")
		case strings.HasPrefix(stripped, "#"):
			heading := strings.TrimSpace(strings.TrimLeft(stripped, "#"))
			out = append(out, "<b>"+html.EscapeString(heading)+"</b>")
		default:
			if m := bulletPattern.FindStringSubmatch(stripped); m != nil {
				out = append(out, "- "+formatInline(m[1]))
				continue
			}
			out = append(out, formatInline(stripped))
		}
	}
	return strings.Join(out, "\n")
}

func formatInline(text string) string {
	var b strings.Builder
	last := 0
	for _, span := range boldSpans(text) {
		b.WriteString(html.EscapeString(text[last:span.start]))
		b.WriteString("<b>")
		b.WriteString(html.EscapeString(span.inner))
		b.WriteString("</b>")
		last = span.end
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}

type boldSpan struct {
	start int
	end   int
	inner string
}

func boldSpans(text string) []boldSpan {
	matches := boldPattern.FindAllStringSubmatchIndex(text, -1)
	spans := make([]boldSpan, 0, len(matches))
	for _, m := range matches {
		inner := ""
		if m[2] >= 0 {
			inner = text[m[2]:m[3]]
		} else {
			inner = text[m[4]:m[5]]
		}
		spans = append(spans, boldSpan{start: m[0], end: m[1], inner: inner})
	}
	return spans
}
