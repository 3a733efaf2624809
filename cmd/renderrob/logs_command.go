package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"renderrob/internal/history"
	"renderrob/internal/logging"
	"renderrob/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var rendererOnly bool

	cmd := &cobra.Command{
		Use:   "logs [session]",
		Short: "Show the log of a render session (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			var prefix string
			if len(args) == 1 {
				prefix = args[0]
			}
			sess, err := findSession(cmd.Context(), store, prefix)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(commandCtx(cmd), os.Interrupt)
			defer stop()

			path := logging.SessionLogPath(cfg.Paths.LogDir, sess.ID)
			finished := func() bool {
				current, err := store.GetSession(runCtx, sess.ID)
				return err != nil || current == nil || current.Finished()
			}
			err = streamSessionLog(runCtx, cmd.OutOrStdout(), path, lines, follow, rendererOnly, finished)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until the session finishes")
	cmd.Flags().BoolVar(&rendererOnly, "blender", false, "Show only Blender output")
	return cmd
}

func commandCtx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// findSession resolves a session ID prefix, or the most recent session when
// prefix is empty.
func findSession(ctx context.Context, store *history.Store, prefix string) (*history.Session, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if prefix != "" {
		sess, err := store.GetSession(ctx, prefix)
		if err != nil {
			return nil, err
		}
		if sess == nil {
			return nil, fmt.Errorf("no session matches %q", prefix)
		}
		return sess, nil
	}
	recent, err := store.RecentSessions(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(recent) == 0 {
		return nil, errors.New("no sessions recorded")
	}
	return &recent[0], nil
}

// streamSessionLog prints the last lines of path, then, when following,
// polls for new lines until finished reports true or ctx ends.
func streamSessionLog(ctx context.Context, out io.Writer, path string, limit int, follow, rendererOnly bool, finished func() bool) error {
	result, err := logs.Tail(ctx, path, logs.TailOptions{Offset: -1, Limit: limit})
	if err != nil {
		return err
	}
	printLogLines(out, result.Lines, rendererOnly)
	if !follow {
		return nil
	}

	offset := result.Offset
	for {
		if finished() {
			// One last read picks up lines written just before the session ended.
			final, err := logs.Tail(ctx, path, logs.TailOptions{Offset: offset})
			if err != nil {
				return err
			}
			printLogLines(out, final.Lines, rendererOnly)
			return nil
		}
		next, err := logs.Tail(ctx, path, logs.TailOptions{Offset: offset, Follow: true, Wait: time.Second})
		if err != nil {
			return err
		}
		printLogLines(out, next.Lines, rendererOnly)
		offset = next.Offset
	}
}

func printLogLines(out io.Writer, lines []string, rendererOnly bool) {
	for _, line := range lines {
		entry, ok := logs.ParseEntry(line)
		if !ok {
			if !rendererOnly {
				fmt.Fprintln(out, line)
			}
			continue
		}
		if rendererOnly {
			if entry.IsRendererOutput() {
				fmt.Fprintln(out, entry.Message)
			}
			continue
		}
		fmt.Fprintln(out, entry.Format())
	}
}
