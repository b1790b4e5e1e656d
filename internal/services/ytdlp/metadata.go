package ytdlp

import (
	"encoding/json"
	"strings"
)

// Metadata is the subset of yt-dlp's info dictionary the pipeline keeps.
type Metadata struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	WebpageURL string  `json:"webpage_url"`
	Uploader   string  `json:"uploader,omitempty"`
	Duration   float64 `json:"duration,omitempty"`
	Extractor  string  `json:"extractor,omitempty"`
}

// infoDict mirrors the fields read from yt-dlp --dump-single-json output.
type infoDict struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	FullTitle    string  `json:"fulltitle"`
	WebpageURL   string  `json:"webpage_url"`
	OriginalURL  string  `json:"original_url"`
	Uploader     string  `json:"uploader"`
	Channel      string  `json:"channel"`
	Duration     float64 `json:"duration"`
	Extractor    string  `json:"extractor"`
	ExtractorKey string  `json:"extractor_key"`
}

func parseInfo(data []byte) (Metadata, error) {
	var info infoDict
	if err := json.Unmarshal(data, &info); err != nil {
		return Metadata{}, err
	}
	meta := Metadata{
		ID:         strings.TrimSpace(info.ID),
		Title:      strings.TrimSpace(info.Title),
		WebpageURL: strings.TrimSpace(info.WebpageURL),
		Uploader:   strings.TrimSpace(info.Uploader),
		Duration:   info.Duration,
		Extractor:  strings.TrimSpace(info.Extractor),
	}
	if meta.Title == "" {
		meta.Title = strings.TrimSpace(info.FullTitle)
	}
	if meta.Uploader == "" {
		meta.Uploader = strings.TrimSpace(info.Channel)
	}
	if meta.Extractor == "" {
		meta.Extractor = strings.TrimSpace(info.ExtractorKey)
	}
	return meta, nil
}
