package blender

import (
	"context"
	"os/exec"
	"runtime"
	"sort"
	"testing"
	"time"
)

func requireShell(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return sh
}

func collect(t *testing.T, p Process) ([]Line, Exit) {
	t.Helper()
	var lines []Line
	timeout := time.After(10 * time.Second)
	for {
		select {
		case line, ok := <-p.Output():
			if !ok {
				select {
				case exit := <-p.Done():
					return lines, exit
				case <-timeout:
					t.Fatal("timed out waiting for exit")
				}
			}
			lines = append(lines, line)
		case <-timeout:
			t.Fatal("timed out waiting for output")
		}
	}
}

func TestExecLauncherMergesOutputAndReportsExitCode(t *testing.T) {
	sh := requireShell(t)
	script := `echo "$PYTHONUNBUFFERED"; printf '\033[43m[WARNING]\033[0m careful\n' >&2; exit 3`
	p, err := NewExecLauncher().Launch(context.Background(), sh, []string{"-c", script})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if p.PID() <= 0 {
		t.Fatalf("pid = %d", p.PID())
	}
	lines, exit := collect(t, p)

	if exit.Code != 3 || exit.Signaled || exit.Err != nil {
		t.Fatalf("exit = %+v, want code 3", exit)
	}
	texts := make([]string, 0, len(lines))
	for _, l := range lines {
		texts = append(texts, l.Text)
	}
	sort.Strings(texts)
	if len(texts) != 2 || texts[0] != "1" || texts[1] != "[WARNING] careful" {
		t.Fatalf("lines = %q", texts)
	}
}

func TestExecLauncherKill(t *testing.T) {
	sh := requireShell(t)
	p, err := NewExecLauncher().Launch(context.Background(), sh, []string{"-c", "exec sleep 30"})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if err := p.Kill(); err != nil {
		t.Fatalf("Kill: %v", err)
	}
	_, exit := collect(t, p)
	if !exit.Signaled || exit.Code != -1 {
		t.Fatalf("exit = %+v, want signaled", exit)
	}
}

func TestExecLauncherMissingBinary(t *testing.T) {
	_, err := NewExecLauncher().Launch(context.Background(), "/nonexistent/blender", nil)
	if err == nil {
		t.Fatal("expected start error")
	}
}
