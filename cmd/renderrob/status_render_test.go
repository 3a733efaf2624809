package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"renderrob/internal/job"
	"renderrob/internal/preflight"
	"renderrob/internal/render"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Blender executable", statusError, "command not configured", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Blender executable:", "[ERROR] command not configured")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Job 1", statusOK, "green", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestPreflightLines(t *testing.T) {
	results := []preflight.Result{
		{Name: "Output root", Passed: true, Detail: "ok"},
		{Name: "Duplicate jobs", Advisory: true, Detail: "jobs 1, 2"},
		{Name: "Job 3", Detail: "missing"},
	}
	lines := preflightLines(results, false)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, want := range []string{"[OK] ok", "[WARN] jobs 1, 2", "[ERROR] missing"} {
		if !strings.Contains(lines[i], want) {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want)
		}
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestRenderSummary(t *testing.T) {
	records := []job.Record{
		{Active: true, SourceFile: "a.blend", StartFrame: job.Int(1), EndFrame: job.Int(2)},
		{Active: false, SourceFile: "b.blend", StartFrame: job.Int(1)},
		{Active: true, SourceFile: "c.blend", StartFrame: job.Int(1)},
		{Active: true, SourceFile: "d.blend", StartFrame: job.Int(1)},
	}
	start := time.Now()
	summary := render.Summary{
		SessionID: "0123456789abcdef",
		Outcomes: []render.Outcome{
			{Index: 0, Key: records[0].Key(), Status: render.StatusGreen, Exited: true, ShotName: "a-pv-v01", FramePath: "/r/a-pv-v01/a-pv-v01-f####.png", Started: start, Finished: start.Add(3 * time.Second)},
			{Index: 1, Key: records[1].Key(), Status: render.StatusSkipped, ExitCode: render.ExitSkipSentinel},
			{Index: 2, Key: records[2].Key(), Status: render.StatusRed, Err: errors.New("source file missing")},
		},
		Remaining: []int{3},
		Progress:  66,
		Err:       errors.New("halted"),
	}

	table := renderSummary(records, summary, false)
	for _, want := range []string{"a-pv-v01", "3s", "664", "source file missing", "not run"} {
		requireContains(t, table, want)
	}

	footer := summaryFooter(summary, "/logs/session-x.log")
	for _, want := range []string{"Session 01234567 halted (66%)", "1 green", "1 red", "1 skipped", "1 not run", "/logs/session-x.log"} {
		requireContains(t, footer, want)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, ""},
		{250 * time.Millisecond, "250ms"},
		{90*time.Second + 400*time.Millisecond, "1m30s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Fatalf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
