// Package summarize turns transcripts into markdown summaries.
//
// Three interchangeable backends implement Summarizer: the Codex CLI run
// through bunx, an OpenAI-compatible chat completions API, and the Gemini
// API. New picks one from configuration; each backend also implements Checker
// so preflight can fail before any download starts. The openai backend also
// implements Prober, which doctor uses to make a live request.
package summarize
