package blender

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
)

const maxLineBytes = 1 << 20

// Exit describes how a process terminated. Code is -1 when the process was
// killed by a signal.
type Exit struct {
	Code     int
	Signaled bool
	Err      error
}

// Process is a running renderer. Output is closed once both output streams
// reach EOF; Done then delivers exactly one Exit.
type Process interface {
	Output() <-chan Line
	Done() <-chan Exit
	Kill() error
	PID() int
}

// Launcher starts renderer processes.
type Launcher interface {
	Launch(ctx context.Context, binary string, args []string) (Process, error)
}

// ExecLauncher starts real child processes.
type ExecLauncher struct {
	// Env is appended to the parent environment.
	Env []string
}

// NewExecLauncher returns a launcher that runs Blender with unbuffered Python
// output so script messages interleave with render progress.
func NewExecLauncher() *ExecLauncher {
	return &ExecLauncher{Env: []string{"PYTHONUNBUFFERED=1"}}
}

// Launch starts binary and begins streaming its merged output.
func (l *ExecLauncher) Launch(ctx context.Context, binary string, args []string) (Process, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Env = append(os.Environ(), l.Env...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start command: %w", err)
	}

	p := &execProcess{
		cmd:   cmd,
		lines: make(chan Line, 256),
		done:  make(chan Exit, 1),
	}
	go p.wait(stdout, stderr)
	return p, nil
}

type execProcess struct {
	cmd   *exec.Cmd
	lines chan Line
	done  chan Exit
}

func (p *execProcess) Output() <-chan Line { return p.lines }
func (p *execProcess) Done() <-chan Exit { return p.done }
func (p *execProcess) PID() int { return p.cmd.Process.Pid }

func (p *execProcess) Kill() error {
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

func (p *execProcess) wait(stdout, stderr io.Reader) {
	var (
		wg      sync.WaitGroup
		once    sync.Once
		scanErr error
	)
	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
		for scanner.Scan() {
			p.lines <- ParseLine(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
			// Keep the pipe drained so the child never blocks on a full buffer.
			_, _ = io.Copy(io.Discard, r)
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)
	wg.Wait()
	close(p.lines)

	exit := exitFromWait(p.cmd.Wait())
	if scanErr != nil && exit.Err == nil {
		exit.Err = fmt.Errorf("scan output: %w", scanErr)
	}
	p.done <- exit
	close(p.done)
}

func exitFromWait(err error) Exit {
	if err == nil {
		return Exit{Code: 0}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		return Exit{Code: code, Signaled: code == -1}
	}
	return Exit{Code: -1, Err: fmt.Errorf("wait command: %w", err)}
}
