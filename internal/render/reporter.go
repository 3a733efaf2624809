package render

import (
	"time"

	"renderrob/internal/job"
	"renderrob/internal/services/blender"
)

// SessionInfo describes a session as it starts.
type SessionInfo struct {
	ID      string
	Jobs    int
	Active  int
	Started time.Time
}

// Dispatch describes a job handed to the renderer.
type Dispatch struct {
	Index     int
	Key       string
	Job       job.Record
	ShotName  string
	FramePath string
	Binary    string
	Args      []string
	PID       int
}

// Reporter receives session events. Calls arrive on the controller's
// goroutine in order; implementations must not block for long.
type Reporter interface {
	SessionStarted(SessionInfo)
	JobDispatched(Dispatch)
	JobOutput(index int, line blender.Line)
	JobFinished(Outcome)
	Progress(percent int)
	SessionFinished(Summary)
}

// NopReporter ignores all events.
type NopReporter struct{}

func (NopReporter) SessionStarted(SessionInfo) {}
func (NopReporter) JobDispatched(Dispatch) {}
func (NopReporter) JobOutput(int, blender.Line) {}
func (NopReporter) JobFinished(Outcome) {}
func (NopReporter) Progress(int) {}
func (NopReporter) SessionFinished(Summary) {}

// MultiReporter fans events out to several reporters in order.
type MultiReporter []Reporter

func (m MultiReporter) SessionStarted(info SessionInfo) {
	for _, r := range m {
		r.SessionStarted(info)
	}
}

func (m MultiReporter) JobDispatched(d Dispatch) {
	for _, r := range m {
		r.JobDispatched(d)
	}
}

func (m MultiReporter) JobOutput(index int, line blender.Line) {
	for _, r := range m {
		r.JobOutput(index, line)
	}
}

func (m MultiReporter) JobFinished(o Outcome) {
	for _, r := range m {
		r.JobFinished(o)
	}
}

func (m MultiReporter) Progress(percent int) {
	for _, r := range m {
		r.Progress(percent)
	}
}

func (m MultiReporter) SessionFinished(s Summary) {
	for _, r := range m {
		r.SessionFinished(s)
	}
}
