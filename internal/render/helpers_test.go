package render

import (
	"context"
	"sync"
	"testing"
	"time"

	"renderrob/internal/config"
	"renderrob/internal/job"
	"renderrob/internal/services/blender"
	"renderrob/internal/testsupport"
)

type recordingReporter struct {
	mu         sync.Mutex
	events     []string
	dispatches []Dispatch
	lines      []blender.Line
	progress   []int
	finished   []Outcome
	summary    *Summary
}

func (r *recordingReporter) SessionStarted(SessionInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "started")
}

func (r *recordingReporter) JobDispatched(d Dispatch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "dispatch")
	r.dispatches = append(r.dispatches, d)
}

func (r *recordingReporter) JobOutput(_ int, line blender.Line) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

func (r *recordingReporter) JobFinished(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "finished:"+o.Status.String())
	r.finished = append(r.finished, o)
}

func (r *recordingReporter) Progress(p int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, p)
}

func (r *recordingReporter) SessionFinished(s Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "session_finished")
	r.summary = &s
}

func (r *recordingReporter) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Blender.Executable = "blender"
	return cfg
}

func newTestController(cfg *config.Config, launcher blender.Launcher, rep Reporter, opts ...Option) *Controller {
	base := []Option{
		WithReporter(rep),
		WithExecutableCheck(func(string) error { return nil }),
	}
	return NewController(cfg, launcher, append(base, opts...)...)
}

func blendJob(t *testing.T, cfg *config.Config, name string, active bool) job.Record {
	t.Helper()
	testsupport.WriteBlend(t, cfg.Paths.BlendFilesDir, name+".blend")
	return job.Record{
		Active:     active,
		SourceFile: name + ".blend",
		StartFrame: job.Int(1),
		EndFrame:   job.Int(2),
		FileFormat: job.FormatPNG,
		Engine:     job.EngineCycles,
		Device:     job.DeviceGPU,
	}
}

type runResult struct {
	summary Summary
	err     error
}

func runAsync(ctx context.Context, c *Controller, records []job.Record) <-chan runResult {
	out := make(chan runResult, 1)
	go func() {
		s, err := c.Run(ctx, records)
		out <- runResult{summary: s, err: err}
	}()
	return out
}

func waitResult(t *testing.T, ch <-chan runResult) runResult {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for session to finish")
		return runResult{}
	}
}

func waitStarted(t *testing.T, l *testsupport.FakeLauncher) *testsupport.FakeProcess {
	t.Helper()
	select {
	case p := <-l.Started():
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for process launch")
		return nil
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func argValue(args []string, flag string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}
