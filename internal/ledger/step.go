package ledger

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Step names one pipeline step.
type Step string

const (
	// StepNone is the implicit "not started" position.
	StepNone              Step = ""
	StepFetchMetadata     Step = "fetch-metadata"
	StepDownloadAudio     Step = "download-audio"
	StepTranscribe        Step = "transcribe"
	StepSummarize         Step = "summarize"
	StepPublishTranscript Step = "publish-transcript"
	StepNotify            Step = "notify"
)

// Steps lists every step in execution order.
var Steps = []Step{
	StepFetchMetadata,
	StepDownloadAudio,
	StepTranscribe,
	StepSummarize,
	StepPublishTranscript,
	StepNotify,
}

var titleCaser = cases.Title(language.English)

// ParseStep resolves a step name as typed by an operator.
func ParseStep(value string) (Step, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	for _, step := range Steps {
		if string(step) == normalized {
			return step, nil
		}
	}
	return StepNone, fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownStep, value, stepList())
}

// Index returns the zero-based position of s in Steps, or -1.
func (s Step) Index() int {
	for idx, step := range Steps {
		if step == s {
			return idx
		}
	}
	return -1
}

// Label renders the step for humans, e.g. "Fetch Metadata".
func (s Step) Label() string {
	if s == StepNone {
		return "Not Started"
	}
	return titleCaser.String(strings.ReplaceAll(string(s), "-", " "))
}

func (s Step) String() string {
	if s == StepNone {
		return "none"
	}
	return string(s)
}

func stepList() string {
	names := make([]string, len(Steps))
	for idx, step := range Steps {
		names[idx] = string(step)
	}
	return strings.Join(names, ", ")
}
