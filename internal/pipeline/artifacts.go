package pipeline

// Job directory artifact names.
const (
	metadataFile  = "metadata.json"
	audioPathFile = "audio_path.txt"
	pasteURLFile  = "paste_url.txt"
)

func transcriptFile(id string) string { return id + ".txt" }

func summaryFile(id string) string { return id + ".md" }

// SummaryHeader prefixes a summary with its source URL and title.
func SummaryHeader(webpageURL, title string) string {
	return "URL: " + webpageURL + "\nTitle: " + title + "\n\n"
}

// AnnotateSummary appends the transcript link and source URL for notifications.
func AnnotateSummary(summary, pasteURL, webpageURL string) string {
	if pasteURL != "" {
		summary += "\n\n---\n\n**Full Transcript:** " + pasteURL
	}
	if webpageURL != "" {
		summary += "\n**Source:** " + webpageURL
	}
	return summary
}
