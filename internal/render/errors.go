package render

import (
	"errors"
	"fmt"

	"renderrob/internal/services"
)

// ErrSessionActive is returned when Run is called while a session is in flight.
var ErrSessionActive = errors.New("render session already running")

// ErrCancelled marks the outcome of a job stopped by Cancel or context
// cancellation.
var ErrCancelled = errors.New("render cancelled")

// MissingExecutableError reports an unset or unusable renderer executable.
// Every active job of the session reports it.
type MissingExecutableError struct {
	Path string
	Err  error
}

func (e *MissingExecutableError) Error() string {
	if e.Path == "" {
		return "blender executable is not configured"
	}
	if e.Err != nil {
		return fmt.Sprintf("blender executable %s unusable: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("blender executable %s unusable", e.Path)
}

func (e *MissingExecutableError) Unwrap() []error {
	if e.Err == nil {
		return []error{services.ErrConfiguration}
	}
	return []error{services.ErrConfiguration, e.Err}
}

// SourceFileMissingError reports a job whose blend file does not exist.
type SourceFileMissingError struct {
	Path string
	Err  error
}

func (e *SourceFileMissingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("source file %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("source file %s does not exist", e.Path)
}

func (e *SourceFileMissingError) Unwrap() []error {
	if e.Err == nil {
		return []error{services.ErrNotFound}
	}
	return []error{services.ErrNotFound, e.Err}
}

// UnclassifiedExitCodeError reports a renderer exit code outside the known
// set. It halts the session.
type UnclassifiedExitCodeError struct {
	Code     int
	JobIndex int
}

func (e *UnclassifiedExitCodeError) Error() string {
	return fmt.Sprintf("job %d: unrecognized blender exit code %d", e.JobIndex, e.Code)
}

func (e *UnclassifiedExitCodeError) Unwrap() error { return services.ErrExternalTool }
