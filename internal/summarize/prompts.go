package summarize

import "strings"

// InvestmentPrompt is the default summarization instruction.
const InvestmentPrompt = `* **Core insights:** Bullet point the key ideas, focusing on what's actionable for investment decisions (market signals, timing, risks, opportunities)
* **Non-consensus views:** What contrarian, surprising, or non-obvious points were made? Include specific quotes if striking
* **Alpha signals:** Any mentions of emerging trends, inefficiencies, or insights that aren't yet priced in by markets?
`

// AnalystSystemPrompt is the persona shared by the API backends.
const AnalystSystemPrompt = "You are a financial analyst helping investors extract actionable insights from content."

const codexTemplate = AnalystSystemPrompt + "\n" +
	"Follow the format exactly and keep the response concise.\n" +
	"{prompt}\n\n" +
	"Transcript:\n" +
	"{transcript}\n\n" +
	"Return only the summary in markdown. Do not include the transcript, code fences, or extra commentary."

// PromptOrDefault returns prompt, or InvestmentPrompt when prompt is blank.
func PromptOrDefault(prompt string) string {
	if strings.TrimSpace(prompt) == "" {
		return InvestmentPrompt
	}
	return prompt
}

// UserMessage joins the instruction and transcript for chat backends.
func UserMessage(prompt, transcript string) string {
	return PromptOrDefault(prompt) + "\n\nTranscript:\n" + transcript
}

// CodexPrompt builds the stdin document for the Codex CLI.
func CodexPrompt(prompt, transcript string) string {
	return strings.NewReplacer("{prompt}", PromptOrDefault(prompt), "{transcript}", transcript).Replace(codexTemplate)
}
