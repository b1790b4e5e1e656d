package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrArtifactNotFound reports a typed artifact load for a file that does not exist.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrJobBusy reports that another process holds the job lock.
	ErrJobBusy = errors.New("job is already running in another process")
	// ErrUnknownStep reports a step name outside Steps.
	ErrUnknownStep = errors.New("unknown step")
	// ErrJobNotFound reports a job directory without a ledger.
	ErrJobNotFound = errors.New("job not found")
)

// MissingArtifactError reports a step recorded as done whose artifact is gone.
type MissingArtifactError struct {
	Step     Step
	Artifact string
	Path     string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("step %s is marked done but artifact %s is missing (%s)", e.Step, e.Artifact, e.Path)
}
