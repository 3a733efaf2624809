package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"renderrob/internal/fileutil"
	"renderrob/internal/job"
	"renderrob/internal/logging"
	"renderrob/internal/services"
	"renderrob/internal/services/blender"
	"renderrob/internal/shotpath"
)

type prepared struct {
	rec    job.Record
	result shotpath.Result
	args   []string
}

// Run executes one session over a snapshot of records. Jobs run strictly in
// order; inactive jobs are recorded as skipped without spawning anything.
// A user Cancel ends the session with a nil error and Summary.Cancelled set.
// Context cancellation behaves the same but returns the context's error.
// Unrecognized exit codes and filesystem probe failures halt the session and
// are returned after the offending job's outcome has been recorded.
func (c *Controller) Run(ctx context.Context, records []job.Record) (Summary, error) {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return Summary{}, ErrSessionActive
	}
	sess := newSession(c.newID(), records, c.now())
	c.state = StateDispatching
	c.progress = 0
	c.outcomes = nil
	c.mu.Unlock()
	c.drainCancel()

	ctx = services.WithSessionID(ctx, sess.id)
	logger := logging.WithContext(ctx, c.logger)
	logger.Info("render session started",
		logging.Int("jobs", sess.total),
		logging.Int("active_jobs", sess.activeCount),
		logging.String(logging.FieldEventType, "session_start"),
	)
	c.reporter.SessionStarted(SessionInfo{ID: sess.id, Jobs: sess.total, Active: sess.activeCount, Started: sess.started})

	var dropped []int
	err := c.dispatch(ctx, sess, logger)
	if err != nil {
		dropped = sess.remaining()
		sess.clear()
	}
	return c.finish(sess, dropped, err, logger)
}

func (c *Controller) dispatch(ctx context.Context, sess *session, logger *slog.Logger) error {
	if sess.activeCount == 0 {
		return nil
	}
	exeErr := c.checkExe(c.cfg.Blender.Executable)
	if exeErr != nil {
		logging.WarnWithContext(logger, "blender executable unusable; active jobs will fail", "executable_missing",
			logging.Error(exeErr),
			logging.String(logging.FieldErrorHint, services.Hint(exeErr)),
			logging.String(logging.FieldImpact, "no job in this session renders"),
		)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.cancelRequested() && sess.pending() {
			return ErrCancelled
		}
		item, ok := sess.pop()
		if !ok {
			return nil
		}
		key := item.rec.Key()
		jobCtx := services.WithJob(ctx, key, item.index)
		jobLogger := logging.WithContext(jobCtx, c.logger)

		if !item.rec.Active {
			c.record(sess, Outcome{
				Index:    item.index,
				Key:      key,
				Job:      item.rec,
				Status:   StatusSkipped,
				ExitCode: ExitSkipSentinel,
			}, jobLogger)
			continue
		}
		if exeErr != nil {
			c.record(sess, c.failed(item, key, exeErr), jobLogger)
			continue
		}

		prep, err := c.prepare(item)
		if err != nil {
			c.record(sess, c.failed(item, key, err), jobLogger)
			var probeErr *shotpath.FilesystemProbeError
			if errors.As(err, &probeErr) {
				return err
			}
			continue
		}

		proc, err := c.launcher.Launch(jobCtx, c.cfg.Blender.Executable, prep.args)
		if err != nil {
			launchErr := services.Wrap(services.ErrExternalTool, "blender", "launch", prep.result.ShotName, err)
			outcome := c.failed(item, key, launchErr)
			outcome.ShotName = prep.result.ShotName
			outcome.FramePath = prep.result.FramePathTemplate
			c.record(sess, outcome, jobLogger)
			continue
		}

		c.setState(StateRunning)
		jobLogger.Info("job dispatched",
			logging.String("shot", prep.result.ShotName),
			logging.String("frame_path", prep.result.FramePathTemplate),
			logging.Int("pid", proc.PID()),
			logging.String(logging.FieldEventType, "job_dispatched"),
		)
		c.reporter.JobDispatched(Dispatch{
			Index:     item.index,
			Key:       key,
			Job:       item.rec,
			ShotName:  prep.result.ShotName,
			FramePath: prep.result.FramePathTemplate,
			Binary:    c.cfg.Blender.Executable,
			Args:      prep.args,
			PID:       proc.PID(),
		})

		outcome, runErr := c.supervise(jobCtx, sess, item, key, prep, proc, jobLogger)
		if runErr == nil {
			c.setState(StateDispatching)
		}
		c.record(sess, outcome, jobLogger)
		if runErr != nil {
			return runErr
		}
	}
}

// prepare resolves everything a job needs before a process can be spawned.
func (c *Controller) prepare(item queuedJob) (prepared, error) {
	rec := item.rec
	if _, err := rec.Classify(); err != nil {
		return prepared{}, err
	}
	src := rec.ResolveSourcePath(c.cfg.Paths.BlendFilesDir)
	ok, err := fileutil.IsFile(src)
	if err != nil || !ok {
		return prepared{}, &SourceFileMissingError{Path: src, Err: err}
	}
	rec.SourceFile = src

	res, err := c.resolver.Resolve(rec, c.cfg.Paths.OutputRoot, false)
	if err != nil {
		return prepared{}, err
	}
	script := blender.SettingsScript(rec, c.cfg.Preview, c.cfg.Blender.SettingsModuleDir)
	args, err := blender.Args(rec, src, res.FramePathTemplate, script)
	if err != nil {
		return prepared{}, err
	}
	return prepared{rec: rec, result: res, args: args}, nil
}

// supervise consumes process events until the process exits or the session
// is cancelled.
func (c *Controller) supervise(ctx context.Context, sess *session, item queuedJob, key string, prep prepared, proc blender.Process, logger *slog.Logger) (Outcome, error) {
	outcome := Outcome{
		Index:     item.index,
		Key:       key,
		Job:       item.rec,
		ShotName:  prep.result.ShotName,
		FramePath: prep.result.FramePathTemplate,
		Started:   c.now(),
	}
	blenderLogger := logging.NewComponentLogger(logger, "blender")
	output := proc.Output()

	for {
		select {
		case line, ok := <-output:
			if !ok {
				output = nil
				continue
			}
			c.handleLine(sess, item.index, line, blenderLogger)
		case exit, ok := <-proc.Done():
			if !ok {
				exit = blender.Exit{Code: -1, Err: errors.New("process exited without status")}
			}
			c.drainOutput(sess, item.index, output, blenderLogger)
			outcome.Finished = c.now()
			return classifyOutcome(outcome, exit)
		case <-c.cancelCh:
			return c.abort(outcome, proc, output, ErrCancelled, logger)
		case <-ctx.Done():
			return c.abort(outcome, proc, output, ctx.Err(), logger)
		}
	}
}

func (c *Controller) handleLine(sess *session, index int, line blender.Line, logger *slog.Logger) {
	c.reporter.JobOutput(index, line)
	switch line.Severity {
	case blender.SeverityError:
		logger.Error(line.Text, logging.String(logging.FieldEventType, "blender_output"))
	case blender.SeverityWarning:
		logger.Warn(line.Text, logging.String(logging.FieldEventType, "blender_output"))
	default:
		logger.Debug(line.Text)
	}
	if line.IsQuit() && !sess.quitCredit {
		sess.quitCredit = true
		c.publishProgress(sess)
	}
}

func (c *Controller) drainOutput(sess *session, index int, output <-chan blender.Line, logger *slog.Logger) {
	if output == nil {
		return
	}
	for line := range output {
		c.handleLine(sess, index, line, logger)
	}
}

// abort kills the process and waits for it to be reaped so no child outlives
// the session. The in-flight job is always recorded red.
func (c *Controller) abort(outcome Outcome, proc blender.Process, output <-chan blender.Line, cause error, logger *slog.Logger) (Outcome, error) {
	c.setState(StateCancelling)
	if err := proc.Kill(); err != nil {
		logging.WarnWithContext(logger, "failed to kill blender process", "kill_failed",
			logging.Error(err),
			logging.Int("pid", proc.PID()),
			logging.String(logging.FieldImpact, "waiting for the renderer to exit on its own"),
		)
	}
	if output != nil {
		for range output {
		}
	}
	exit := <-proc.Done()
	outcome.Finished = c.now()
	outcome.Status = StatusRed
	outcome.ExitCode = exit.Code
	outcome.Exited = true
	outcome.Err = cause
	logger.Info("render cancelled", logging.Int("exit_code", exit.Code), logging.String(logging.FieldEventType, "job_cancelled"))
	return outcome, cause
}

func classifyOutcome(outcome Outcome, exit blender.Exit) (Outcome, error) {
	outcome.ExitCode = exit.Code
	outcome.Exited = true
	status, ok := Classify(exit)
	outcome.Status = status
	if !ok {
		err := &UnclassifiedExitCodeError{Code: exit.Code, JobIndex: outcome.Index}
		outcome.Err = err
		return outcome, err
	}
	switch {
	case exit.Err != nil:
		outcome.Err = exit.Err
	case status == StatusRed && exit.Signaled:
		outcome.Err = services.Wrap(services.ErrExternalTool, "blender", "render", "killed by signal", nil)
	case status == StatusRed:
		outcome.Err = services.Wrap(services.ErrExternalTool, "blender", "render", fmt.Sprintf("exit code %d", exit.Code), nil)
	}
	return outcome, nil
}

func (c *Controller) failed(item queuedJob, key string, err error) Outcome {
	now := c.now()
	return Outcome{
		Index:    item.index,
		Key:      key,
		Job:      item.rec,
		Status:   StatusRed,
		Err:      err,
		Started:  now,
		Finished: now,
	}
}

func (c *Controller) record(sess *session, o Outcome, logger *slog.Logger) {
	sess.record(o)
	c.mu.Lock()
	c.outcomes = append(c.outcomes, o)
	c.progress = sess.progress()
	pct := c.progress
	c.mu.Unlock()

	attrs := []logging.Attr{
		logging.String("status", o.Status.String()),
		logging.String(logging.FieldEventType, "job_finished"),
	}
	if o.Exited || o.Status == StatusSkipped {
		attrs = append(attrs, logging.Int("exit_code", o.ExitCode))
	}
	if o.ShotName != "" {
		attrs = append(attrs, logging.String("shot", o.ShotName))
	}
	switch o.Status {
	case StatusRed:
		attrs = append(attrs, logging.Error(o.Err), logging.String(logging.FieldErrorHint, services.Hint(o.Err)))
		logging.ErrorWithContext(logger, "job failed", "job_failed", attrs...)
	case StatusYellow:
		logging.WarnWithContext(logger, "job finished with warnings", "job_warning",
			append(attrs, logging.String(logging.FieldImpact, "output rendered; check the renderer warnings"))...)
	case StatusSkipped:
		logger.Debug("job skipped", logging.Args(attrs...)...)
	default:
		attrs = append(attrs, logging.Duration("duration", o.Duration()))
		logger.Info("job finished", logging.Args(attrs...)...)
	}

	c.reporter.JobFinished(o)
	c.reporter.Progress(pct)
}

func (c *Controller) publishProgress(sess *session) {
	c.mu.Lock()
	c.progress = sess.progress()
	pct := c.progress
	c.mu.Unlock()
	c.reporter.Progress(pct)
}

func (c *Controller) finish(sess *session, dropped []int, err error, logger *slog.Logger) (Summary, error) {
	cancelled := errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)

	c.mu.Lock()
	switch {
	case cancelled:
		c.progress = 0
	case err == nil:
		c.progress = 100
	}
	pct := c.progress
	outcomes := append([]Outcome(nil), c.outcomes...)
	c.state = StateIdle
	c.mu.Unlock()

	if errors.Is(err, ErrCancelled) {
		err = nil
	}
	summary := Summary{
		SessionID: sess.id,
		Started:   sess.started,
		Finished:  c.now(),
		Jobs:      sess.total,
		Active:    sess.activeCount,
		Outcomes:  outcomes,
		Remaining: dropped,
		Cancelled: cancelled,
		Progress:  pct,
		Err:       err,
	}

	counts := summary.Counts()
	attrs := []logging.Attr{
		logging.Int("green", counts[StatusGreen]),
		logging.Int("yellow", counts[StatusYellow]),
		logging.Int("red", counts[StatusRed]),
		logging.Int("skipped", counts[StatusSkipped]),
		logging.Int("dropped", len(dropped)),
		logging.Duration("duration", summary.Finished.Sub(summary.Started)),
		logging.String(logging.FieldEventType, "session_finished"),
	}
	switch {
	case err != nil && !cancelled:
		attrs = append(attrs, logging.Error(err), logging.String(logging.FieldErrorHint, services.Hint(err)))
		logging.ErrorWithContext(logger, "render session halted", "session_halted", attrs...)
	case cancelled:
		logger.Info("render session cancelled", logging.Args(attrs...)...)
	default:
		logger.Info("render session complete", logging.Args(attrs...)...)
	}

	c.reporter.Progress(pct)
	c.reporter.SessionFinished(summary)
	return summary, err
}
