package render

import (
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"renderrob/internal/config"
	"renderrob/internal/logging"
	"renderrob/internal/services/blender"
	"renderrob/internal/shotpath"
)

// Controller runs render sessions one job at a time.
type Controller struct {
	cfg      *config.Config
	launcher blender.Launcher
	resolver *shotpath.Resolver
	logger   *slog.Logger
	reporter Reporter
	checkExe func(path string) error
	now      func() time.Time
	newID    func() string

	cancelCh chan struct{}

	mu       sync.RWMutex
	state    State
	progress int
	outcomes []Outcome
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithReporter sets the session event sink.
func WithReporter(r Reporter) Option {
	return func(c *Controller) {
		if r != nil {
			c.reporter = r
		}
	}
}

// WithResolver overrides the output path resolver.
func WithResolver(r *shotpath.Resolver) Option {
	return func(c *Controller) {
		if r != nil {
			c.resolver = r
		}
	}
}

// WithExecutableCheck overrides the renderer executable check run before
// the first dispatch (primarily for tests).
func WithExecutableCheck(check func(path string) error) Option {
	return func(c *Controller) {
		if check != nil {
			c.checkExe = check
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSessionIDs overrides session ID generation.
func WithSessionIDs(next func() string) Option {
	return func(c *Controller) {
		if next != nil {
			c.newID = next
		}
	}
}

// NewController constructs a controller that renders with launcher using the
// paths, executable and preview settings in cfg.
func NewController(cfg *config.Config, launcher blender.Launcher, opts ...Option) *Controller {
	c := &Controller{
		cfg:      cfg,
		launcher: launcher,
		resolver: shotpath.NewResolver(),
		logger:   logging.NewNop(),
		reporter: NopReporter{},
		checkExe: CheckExecutable,
		now:      time.Now,
		newID:    uuid.NewString,
		cancelCh: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cfg == nil {
		defaults := config.Default()
		c.cfg = &defaults
	}
	c.logger = logging.NewComponentLogger(c.logger, "controller")
	return c
}

// CheckExecutable verifies that path names a runnable file.
func CheckExecutable(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return &MissingExecutableError{}
	}
	if _, err := exec.LookPath(path); err != nil {
		return &MissingExecutableError{Path: path, Err: err}
	}
	return nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Progress returns the current session progress in percent.
func (c *Controller) Progress() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.progress
}

// Outcomes returns a copy of the outcomes recorded so far in the current or
// most recent session.
func (c *Controller) Outcomes() []Outcome {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Outcome(nil), c.outcomes...)
}

// Cancel stops the in-flight render: the process is killed, its job is
// recorded red and the rest of the queue is dropped. It returns false, doing
// nothing, when no process is running.
func (c *Controller) Cancel() bool {
	if c.State() != StateRunning {
		return false
	}
	select {
	case c.cancelCh <- struct{}{}:
	default:
	}
	return true
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) drainCancel() {
	for {
		select {
		case <-c.cancelCh:
		default:
			return
		}
	}
}

func (c *Controller) cancelRequested() bool {
	select {
	case <-c.cancelCh:
		return true
	default:
		return false
	}
}
