package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"renderrob/internal/history"
	"renderrob/internal/render"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [session]",
		Short: "List recent render sessions, or the jobs of one session",
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

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if len(args) == 1 {
				sess, err := store.GetSession(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if sess == nil {
					return fmt.Errorf("no session matches %q", args[0])
				}
				outcomes, err := store.Outcomes(cmd.Context(), sess.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, sessionHeadline(*sess))
				fmt.Fprintln(out, renderOutcomeTable(outcomes, colorize))
				return nil
			}

			sessions, err := store.RecentSessions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No sessions recorded")
				return nil
			}
			fmt.Fprintln(out, renderSessionTable(sessions, colorize))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of sessions to show (0 for all)")
	return cmd
}

func sessionState(s history.Session) string {
	switch {
	case !s.Finished():
		return "interrupted"
	case s.Cancelled:
		return "cancelled"
	case s.Error != "":
		return "halted"
	default:
		return "complete"
	}
}

func sessionHeadline(s history.Session) string {
	line := fmt.Sprintf("Session %s (%s) started %s, %s, %d%%",
		s.ID, s.JobFile, s.StartedAt.Local().Format(time.DateTime), sessionState(s), s.Progress)
	if s.Error != "" {
		line += "\nError: " + s.Error
	}
	return line
}

func renderSessionTable(sessions []history.Session, colorize bool) string {
	rows := make([][]string, 0, len(sessions))
	tints := make([]text.Colors, 0, len(sessions))
	for _, s := range sessions {
		var elapsed string
		if s.FinishedAt != nil {
			elapsed = formatDuration(s.FinishedAt.Sub(s.StartedAt))
		}
		rows = append(rows, []string{
			shortID(s.ID),
			s.StartedAt.Local().Format(time.DateTime),
			elapsed,
			s.JobFile,
			fmt.Sprintf("%d/%d", s.Active, s.Jobs),
			strconv.Itoa(s.Green),
			strconv.Itoa(s.Yellow),
			strconv.Itoa(s.Red),
			sessionState(s),
		})
		tints = append(tints, sessionTint(s))
	}
	return renderTable(tableData{
		headers:   []string{"Session", "Started", "Time", "Job file", "Active", "Green", "Yellow", "Red", "State"},
		rows:      rows,
		aligns:    []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight},
		rowColors: tints,
		colorize:  colorize,
	})
}

func sessionTint(s history.Session) text.Colors {
	switch {
	case s.Red > 0 || s.Error != "":
		return jobColors(render.ColorRed)
	case s.Yellow > 0:
		return jobColors(render.ColorYellow)
	case s.Green > 0:
		return jobColors(render.ColorGreen)
	default:
		return nil
	}
}

func renderOutcomeTable(outcomes []history.Outcome, colorize bool) string {
	rows := make([][]string, 0, len(outcomes))
	tints := make([]text.Colors, 0, len(outcomes))
	for _, o := range outcomes {
		exit := ""
		if o.ExitCode != nil {
			exit = strconv.Itoa(*o.ExitCode)
		}
		detail := o.FramePath
		if o.Error != "" {
			detail = o.Error
		}
		rows = append(rows, []string{
			strconv.Itoa(o.Index + 1),
			o.Label,
			o.ShotName,
			o.Status,
			exit,
			formatDuration(o.FinishedAt.Sub(o.StartedAt)),
			detail,
		})
		var tint text.Colors
		if st, ok := render.ParseStatus(o.Status); ok {
			tint = jobColors(statusColor(st))
		}
		tints = append(tints, tint)
	}
	return renderTable(tableData{
		headers:   []string{"#", "Job", "Shot", "Status", "Exit", "Time", "Output"},
		rows:      rows,
		aligns:    []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
		rowColors: tints,
		colorize:  colorize,
	})
}

func statusColor(s render.Status) render.Color {
	switch s {
	case render.StatusGreen:
		return render.ColorGreen
	case render.StatusYellow:
		return render.ColorYellow
	case render.StatusRed:
		return render.ColorRed
	default:
		return render.ColorNeutral
	}
}
