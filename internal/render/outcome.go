package render

import (
	"time"

	"renderrob/internal/job"
	"renderrob/internal/services/blender"
)

// Exit codes produced by Blender and the in-Blender settings module.
const (
	ExitSuccess      = 0
	ExitSuccessAlt   = 1
	ExitWarning      = 987
	ExitError        = 62097
	ExitSegfault     = 11
	ExitSkipSentinel = 664

	// POSIX truncates exit statuses to 8 bits.
	ExitWarning8Bit = ExitWarning & 0xff
	ExitError8Bit   = ExitError & 0xff
)

// Status is the classification of one job run.
type Status int

const (
	StatusGreen Status = iota
	StatusYellow
	StatusRed
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusGreen:
		return "green"
	case StatusYellow:
		return "yellow"
	case StatusRed:
		return "red"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(s string) (Status, bool) {
	for _, st := range []Status{StatusGreen, StatusYellow, StatusRed, StatusSkipped} {
		if st.String() == s {
			return st, true
		}
	}
	return 0, false
}

// Classify maps a process exit to a status. ok is false for exit codes
// outside the known set, which must halt the session. ExitSkipSentinel is
// only ever recorded for inactive jobs and is not accepted from a process.
func Classify(exit blender.Exit) (status Status, ok bool) {
	if exit.Signaled {
		return StatusRed, true
	}
	switch exit.Code {
	case ExitSuccess, ExitSuccessAlt:
		return StatusGreen, true
	case ExitWarning, ExitWarning8Bit:
		return StatusYellow, true
	case ExitError, ExitError8Bit, ExitSegfault:
		return StatusRed, true
	default:
		return StatusRed, false
	}
}

// Outcome is the recorded result of one job in a session.
type Outcome struct {
	Index     int
	Key       string
	Job       job.Record
	Status    Status
	ExitCode  int
	Exited    bool
	ShotName  string
	FramePath string
	Err       error
	Started   time.Time
	Finished  time.Time
}

// Duration is how long the job's process ran.
func (o Outcome) Duration() time.Duration {
	if o.Started.IsZero() || o.Finished.IsZero() {
		return 0
	}
	return o.Finished.Sub(o.Started)
}

// Color is the display color of a job row.
type Color int

const (
	ColorNone Color = iota
	ColorNeutral
	ColorGreen
	ColorYellow
	ColorRed
)

func (c Color) String() string {
	switch c {
	case ColorNeutral:
		return "neutral"
	case ColorGreen:
		return "green"
	case ColorYellow:
		return "yellow"
	case ColorRed:
		return "red"
	default:
		return "none"
	}
}

// Colors derives a display color for each record from the outcomes recorded
// for its identity key. Inactive records are always neutral. Records with no
// recorded run get ColorNone.
func Colors(records []job.Record, outcomes []Outcome) []Color {
	byKey := make(map[string][]Status, len(outcomes))
	for _, o := range outcomes {
		byKey[o.Key] = append(byKey[o.Key], o.Status)
	}
	colors := make([]Color, len(records))
	for i, rec := range records {
		if !rec.Active {
			colors[i] = ColorNeutral
			continue
		}
		colors[i] = colorFor(byKey[rec.Key()])
	}
	return colors
}

func colorFor(statuses []Status) Color {
	var green, yellow, red bool
	for _, st := range statuses {
		switch st {
		case StatusRed:
			red = true
		case StatusYellow:
			yellow = true
		case StatusGreen:
			green = true
		}
	}
	switch {
	case red:
		return ColorRed
	case yellow:
		return ColorYellow
	case green:
		return ColorGreen
	default:
		return ColorNone
	}
}
