package shotpath

import (
	"fmt"

	"renderrob/internal/services"
)

// FilesystemProbeError reports a stat or read failure while scanning for
// existing versions. Missing paths are not errors; permission and I/O
// failures are.
type FilesystemProbeError struct {
	Path string
	Err  error
}

func (e *FilesystemProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Path, e.Err)
}

func (e *FilesystemProbeError) Unwrap() error { return e.Err }

// Is lets callers treat probe failures as transient and decide whether to retry.
func (e *FilesystemProbeError) Is(target error) bool { return target == services.ErrTransient }
