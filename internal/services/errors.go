package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
	ErrPrecondition  = errors.New("precondition failed")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Remediation returns operator guidance for a failed run, or "" when the
// error carries no marker with known advice.
func Remediation(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPrecondition):
		return "Run 'yt-transcribe doctor' to see which prerequisite is missing."
	case errors.Is(err, ErrConfiguration):
		return "Check the configuration with 'yt-transcribe config validate'."
	case errors.Is(err, ErrExternalTool):
		return "The external tool failed; rerun the same command to resume from the failed step."
	case errors.Is(err, ErrTimeout), errors.Is(err, ErrTransient):
		return "This looks temporary; rerun the same command to resume."
	case errors.Is(err, ErrNotFound):
		return "Verify the URL points to an available video."
	case errors.Is(err, ErrValidation):
		return "The collaborator returned unusable output; inspect the job directory before rerunning."
	default:
		return ""
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{stage, operation, message} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
