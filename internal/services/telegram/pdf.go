package telegram

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin   = 72.0
	bottomMargin = 36.0
	bodySize     = 11.0
	bodyLeading  = 16.0
	bulletIndent = 14.0
)

var headingSizes = map[int]float64{1: 16, 2: 14, 3: 12}

// RenderPDF lays out summary markdown as a Letter-size PDF document.
func RenderPDF(markdown, title string) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, bottomMargin)
	pdf.SetTitle(title, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if title = strings.TrimSpace(title); title != "" {
		pdf.SetFont("Helvetica", "B", 18)
		pdf.SetTextColor(26, 26, 26)
		pdf.MultiCell(0, 22, tr(title), "", "L", false)
		pdf.Ln(18)
	}

	for _, raw := range strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			pdf.Ln(7)
			continue
		}
		if level, text, ok := headingLevel(line); ok {
			pdf.SetFont("Helvetica", "B", headingSizes[level])
			pdf.SetTextColor(26, 26, 26)
			pdf.MultiCell(0, headingSizes[level]+4, tr(text), "", "L", false)
			pdf.Ln(6)
			continue
		}
		pdf.SetTextColor(51, 51, 51)
		if m := bulletPattern.FindStringSubmatch(line); m != nil {
			pdf.SetLeftMargin(pageMargin + bulletIndent)
			pdf.SetX(pageMargin)
			pdf.SetFont("Helvetica", "", bodySize)
			pdf.Write(bodyLeading, tr("• "))
			writeInline(pdf, tr, m[1])
			pdf.SetLeftMargin(pageMargin)
		} else {
			writeInline(pdf, tr, line)
		}
		pdf.Ln(bodyLeading)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func headingLevel(line string) (int, string, bool) {
	for level := 3; level >= 1; level-- {
		prefix := strings.Repeat("#", level) + " "
		if strings.HasPrefix(line, prefix) {
			return level, strings.TrimSpace(line[len(prefix):]), true
		}
	}
	return 0, "", false
}

func writeInline(pdf *fpdf.Fpdf, tr func(string) string, text string) {
	last := 0
	for _, span := range boldSpans(text) {
		pdf.SetFont("Helvetica", "", bodySize)
		pdf.Write(bodyLeading, tr(text[last:span.start]))
		pdf.SetFont("Helvetica", "B", bodySize)
		pdf.Write(bodyLeading, tr(span.inner))
		last = span.end
	}
	pdf.SetFont("Helvetica", "", bodySize)
	pdf.Write(bodyLeading, tr(text[last:]))
}
