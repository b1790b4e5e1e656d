package ytdlp

import (
	"errors"
	"strings"

	"yt-transcribe/internal/services"
)

var (
	// ErrVideoUnavailable indicates the video was removed or never existed.
	ErrVideoUnavailable = errors.New("video unavailable")
	// ErrVideoPrivate indicates the video is private.
	ErrVideoPrivate = errors.New("video is private")
	// ErrAgeRestricted indicates the content requires a signed-in session.
	ErrAgeRestricted = errors.New("content is age-restricted")
	// ErrUnsupportedURL indicates no yt-dlp extractor handles the URL.
	ErrUnsupportedURL = errors.New("url not supported")
	// ErrNetwork indicates a network failure while talking to the host.
	ErrNetwork = errors.New("network error")
	// ErrNoAudioFile indicates yt-dlp exited cleanly but left no audio file behind.
	ErrNoAudioFile = errors.New("downloaded audio file not found")
)

// categorize maps yt-dlp stderr onto a sentinel and a services marker.
func categorize(operation string, err error, stderr string) error {
	lower := strings.ToLower(stderr)
	detail := lastLine(stderr)

	var sentinel, marker error
	switch {
	case strings.Contains(lower, "video unavailable") || strings.Contains(lower, "this video is unavailable"):
		sentinel, marker = ErrVideoUnavailable, services.ErrNotFound
	case strings.Contains(lower, "private video") || strings.Contains(lower, "is private"):
		sentinel, marker = ErrVideoPrivate, services.ErrNotFound
	case strings.Contains(lower, "age-restricted") || strings.Contains(lower, "sign in to confirm your age"):
		sentinel, marker = ErrAgeRestricted, services.ErrValidation
	case strings.Contains(lower, "unsupported url") || strings.Contains(lower, "no suitable extractor"):
		sentinel, marker = ErrUnsupportedURL, services.ErrValidation
	case strings.Contains(lower, "unable to download") || strings.Contains(lower, "connection") || strings.Contains(lower, "network"):
		sentinel, marker = ErrNetwork, services.ErrTransient
	default:
		return services.Wrap(services.ErrExternalTool, "", operation, detail, err)
	}
	return services.Wrap(marker, "", operation, detail, errors.Join(sentinel, err))
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "no error output captured"
}
