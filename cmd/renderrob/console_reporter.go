package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"renderrob/internal/render"
	"renderrob/internal/services/blender"
)

// consoleReporter prints live session progress.
type consoleReporter struct {
	mu       sync.Mutex
	out      io.Writer
	colorize bool
	verbose  bool

	total        int
	lastProgress int
}

func newConsoleReporter(out io.Writer, colorize, verbose bool) *consoleReporter {
	return &consoleReporter{out: out, colorize: colorize, verbose: verbose, lastProgress: -1}
}

func (r *consoleReporter) SessionStarted(info render.SessionInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total = info.Jobs
	r.lastProgress = -1
	fmt.Fprintf(r.out, "Session %s: %d jobs, %d active\n", shortID(info.ID), info.Jobs, info.Active)
}

func (r *consoleReporter) JobDispatched(d render.Dispatch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "[%d/%d] %s -> %s\n", d.Index+1, r.total, d.Job.Label(), d.FramePath)
}

func (r *consoleReporter) JobOutput(_ int, line blender.Line) {
	if !r.verbose && line.Severity < blender.SeverityWarning {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	text := "    " + line.Text
	if r.colorize {
		switch line.Severity {
		case blender.SeverityError:
			text = ansiRed + text + ansiReset
		case blender.SeverityWarning:
			text = ansiYellow + text + ansiReset
		}
	}
	fmt.Fprintln(r.out, text)
}

func (r *consoleReporter) JobFinished(o render.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	label := fmt.Sprintf("[%d/%d] %s", o.Index+1, r.total, o.Job.Label())
	fmt.Fprintln(r.out, renderStatusLine(label, statusKindFor(o.Status), outcomeDetail(o), r.colorize))
}

func (r *consoleReporter) Progress(percent int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if percent == r.lastProgress {
		return
	}
	r.lastProgress = percent
	fmt.Fprintf(r.out, "Progress: %d%%\n", percent)
}

func (r *consoleReporter) SessionFinished(render.Summary) {}

func outcomeDetail(o render.Outcome) string {
	parts := []string{o.Status.String()}
	if o.Exited || o.Status == render.StatusSkipped {
		parts = append(parts, fmt.Sprintf("exit %d", o.ExitCode))
	}
	if d := o.Duration(); d > 0 && o.Status != render.StatusSkipped {
		parts = append(parts, formatDuration(d))
	}
	if o.Err != nil {
		parts = append(parts, o.Err.Error())
	}
	return strings.Join(parts, ", ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
