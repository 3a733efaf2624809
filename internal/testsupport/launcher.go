package testsupport

import (
	"context"
	"sync"

	"renderrob/internal/services/blender"
)

// ProcessScript describes how one fake launch behaves.
type ProcessScript struct {
	// Lines are emitted before the process exits.
	Lines []string
	// Exit is reported when the process finishes on its own.
	Exit blender.Exit
	// Hold keeps the process running until Kill or Release is called.
	Hold bool
	// LaunchErr makes Launch fail instead of starting a process.
	LaunchErr error
}

// LaunchCall records one Launch invocation.
type LaunchCall struct {
	Binary string
	Args   []string
}

// FakeLauncher is a scripted blender.Launcher. Scripts are consumed in launch
// order; launches beyond the scripts exit 0.
type FakeLauncher struct {
	mu      sync.Mutex
	scripts []ProcessScript
	calls   []LaunchCall
	procs   []*FakeProcess
	started chan *FakeProcess
}

// NewFakeLauncher returns a launcher that plays scripts in order.
func NewFakeLauncher(scripts ...ProcessScript) *FakeLauncher {
	return &FakeLauncher{scripts: scripts, started: make(chan *FakeProcess, 64)}
}

// Launch implements blender.Launcher.
func (f *FakeLauncher) Launch(_ context.Context, binary string, args []string) (blender.Process, error) {
	f.mu.Lock()
	f.calls = append(f.calls, LaunchCall{Binary: binary, Args: append([]string(nil), args...)})
	var script ProcessScript
	if len(f.scripts) > 0 {
		script = f.scripts[0]
		f.scripts = f.scripts[1:]
	}
	if script.LaunchErr != nil {
		f.mu.Unlock()
		return nil, script.LaunchErr
	}
	proc := newFakeProcess(len(f.procs)+1000, script)
	f.procs = append(f.procs, proc)
	f.mu.Unlock()

	select {
	case f.started <- proc:
	default:
	}
	return proc, nil
}

// Calls returns the launches seen so far.
func (f *FakeLauncher) Calls() []LaunchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]LaunchCall(nil), f.calls...)
}

// Processes returns every process started so far.
func (f *FakeLauncher) Processes() []*FakeProcess {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeProcess(nil), f.procs...)
}

// Started delivers each process as it is launched.
func (f *FakeLauncher) Started() <-chan *FakeProcess {
	return f.started
}

// FakeProcess is a scripted blender.Process.
type FakeProcess struct {
	pid      int
	lines    chan blender.Line
	done     chan blender.Exit
	killed   chan struct{}
	release  chan blender.Exit
	killOnce sync.Once
	mu       sync.Mutex
	wasKill  bool
}

func newFakeProcess(pid int, script ProcessScript) *FakeProcess {
	p := &FakeProcess{
		pid:     pid,
		lines:   make(chan blender.Line, len(script.Lines)+1),
		done:    make(chan blender.Exit, 1),
		killed:  make(chan struct{}),
		release: make(chan blender.Exit, 1),
	}
	for _, raw := range script.Lines {
		p.lines <- blender.ParseLine(raw)
	}
	if !script.Hold {
		p.finish(script.Exit)
		return p
	}
	go func() {
		select {
		case <-p.killed:
			p.finish(blender.Exit{Code: -1, Signaled: true})
		case exit := <-p.release:
			p.finish(exit)
		}
	}()
	return p
}

func (p *FakeProcess) finish(exit blender.Exit) {
	close(p.lines)
	p.done <- exit
	close(p.done)
}

// Output implements blender.Process.
func (p *FakeProcess) Output() <-chan blender.Line { return p.lines }

// Done implements blender.Process.
func (p *FakeProcess) Done() <-chan blender.Exit { return p.done }

// PID implements blender.Process.
func (p *FakeProcess) PID() int { return p.pid }

// Kill implements blender.Process.
func (p *FakeProcess) Kill() error {
	p.killOnce.Do(func() {
		p.mu.Lock()
		p.wasKill = true
		p.mu.Unlock()
		close(p.killed)
	})
	return nil
}

// Killed reports whether Kill was called.
func (p *FakeProcess) Killed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wasKill
}

// Release lets a held process exit with exit.
func (p *FakeProcess) Release(exit blender.Exit) {
	select {
	case p.release <- exit:
	default:
	}
}
