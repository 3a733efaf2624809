package job

import (
	"fmt"

	"renderrob/internal/services"
)

// InvalidFrameRangeError reports a frame range that cannot be classified as a
// still or an animation. It is raised before any output path is resolved.
type InvalidFrameRangeError struct {
	Start *int
	End   *int
}

func (e *InvalidFrameRangeError) Error() string {
	switch {
	case e.Start == nil && e.End != nil:
		return fmt.Sprintf("invalid frame range: end frame %d set without a start frame", *e.End)
	case e.Start != nil && e.End != nil:
		return fmt.Sprintf("invalid frame range: end frame %d before start frame %d", *e.End, *e.Start)
	default:
		return "invalid frame range"
	}
}

func (e *InvalidFrameRangeError) Unwrap() error { return services.ErrValidation }
