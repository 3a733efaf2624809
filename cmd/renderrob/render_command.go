package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"renderrob/internal/config"
	"renderrob/internal/history"
	"renderrob/internal/job"
	"renderrob/internal/logging"
	"renderrob/internal/notifications"
	"renderrob/internal/preflight"
	"renderrob/internal/render"
	"renderrob/internal/services"
	"renderrob/internal/services/blender"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "render <jobs.toml>",
		Short: "Render every active job in a job file",
		Long: `Render every active job in the job file, one at a time.

Ctrl+C cancels the job in flight and stops the session. A second Ctrl+C
between jobs aborts immediately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			records, err := loadJobs(args[0])
			if err != nil {
				return err
			}
			opts := renderOptions{
				jobFile:  args[0],
				verbose:  verbose,
				launcher: blender.NewExecLauncher(),
				logger:   ctx.newLogger(cmd.ErrOrStderr()),
			}
			return runRender(cmd.Context(), cmd.OutOrStdout(), cfg, records, opts)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print every Blender output line")
	return cmd
}

type renderOptions struct {
	jobFile  string
	verbose  bool
	launcher blender.Launcher
	logger   *slog.Logger
	signals  <-chan os.Signal
}

func runRender(parent context.Context, out io.Writer, cfg *config.Config, records []job.Record, opts renderOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	logger := opts.logger
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "render", "lock", "acquire session lock", err)
	}
	if !locked {
		return fmt.Errorf("another render session is already running (lock %s)", cfg.LockPath())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release session lock", logging.Error(err))
		}
	}()

	colorize := shouldColorize(out)
	results := preflight.RunAll(cfg, records)
	for _, line := range preflightLines(notPassed(results), colorize) {
		fmt.Fprintln(out, line)
	}

	sessionID := uuid.NewString()
	sessionLog := logging.SessionLogPath(cfg.Paths.LogDir, sessionID)
	if handler, closer, err := logging.NewFileHandler(sessionLog, "debug"); err != nil {
		logging.WarnWithContext(logger, "session log unavailable", "session_log_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.log_dir permissions"),
			logging.String(logging.FieldImpact, "Blender output for this session is not kept on disk"),
		)
	} else {
		defer closer.Close()
		logger = logging.Tee(logger, handler)
	}
	logging.CleanupOldLogs(logger, cfg.Paths.LogDir, logging.SessionLogPattern, cfg.Logging.RetentionDays, sessionLog)

	reporters := render.MultiReporter{newConsoleReporter(out, colorize, opts.verbose)}
	if store, err := history.Open(cfg); err != nil {
		logging.WarnWithContext(logger, "history unavailable", "history_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.state_dir or delete the history database"),
			logging.String(logging.FieldImpact, "this session is not recorded in history"),
		)
	} else {
		defer store.Close()
		reporters = append(reporters, history.NewRecorder(store, opts.jobFile, logger))
	}
	notifier := notifications.NewReporter(parent, notifications.NewService(cfg), opts.jobFile, cfg.Notifications.JobFailures, logger)
	defer notifier.Close()
	reporters = append(reporters, notifier)

	ctrl := render.NewController(cfg, opts.launcher,
		render.WithLogger(logger),
		render.WithReporter(reporters),
		render.WithSessionIDs(func() string { return sessionID }),
	)

	runCtx, stop := context.WithCancel(parent)
	defer stop()

	signals := opts.signals
	if signals == nil {
		ch := make(chan os.Signal, 2)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(ch)
		signals = ch
	}
	go func() {
		for {
			select {
			case <-signals:
				if !ctrl.Cancel() {
					stop()
				}
			case <-runCtx.Done():
				return
			}
		}
	}()

	summary, runErr := ctrl.Run(runCtx, records)
	fmt.Fprintln(out, renderSummary(records, summary, colorize))
	fmt.Fprintln(out, summaryFooter(summary, sessionLog))
	if errors.Is(runErr, context.Canceled) && parent.Err() == nil {
		// A signal between jobs cancels runCtx; treat it like Cancel.
		return nil
	}
	return runErr
}

func notPassed(results []preflight.Result) []preflight.Result {
	var out []preflight.Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
