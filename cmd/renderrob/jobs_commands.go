package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"renderrob/internal/config"
	"renderrob/internal/history"
	"renderrob/internal/job"
	"renderrob/internal/preflight"
	"renderrob/internal/render"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and edit job files",
	}

	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsCheckCommand(ctx))
	jobsCmd.AddCommand(newJobsInitCommand())
	jobsCmd.AddCommand(newJobsImportCommand(ctx))
	jobsCmd.AddCommand(newJobsOpenCommand(ctx))
	jobsCmd.AddCommand(newJobsToggleCommand(true))
	jobsCmd.AddCommand(newJobsToggleCommand(false))

	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <jobs.toml>",
		Short: "List jobs with their last recorded status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			records, err := loadJobs(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No jobs defined")
				return nil
			}
			outcomes := lastOutcomes(cmd.Context(), cfg, records)
			fmt.Fprintln(out, renderJobsTable(records, outcomes, shouldColorize(out)))
			return nil
		},
	}
}

// lastOutcomes loads the most recent recorded status of each job from
// history. Missing history yields no outcomes.
func lastOutcomes(ctx context.Context, cfg *config.Config, records []job.Record) []render.Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := history.Open(cfg)
	if err != nil {
		return nil
	}
	defer store.Close()

	keys := make([]string, len(records))
	for i, rec := range records {
		keys[i] = rec.Key()
	}
	statuses, err := store.LatestStatuses(ctx, keys)
	if err != nil {
		return nil
	}
	outcomes := make([]render.Outcome, 0, len(statuses))
	for key, raw := range statuses {
		if st, ok := render.ParseStatus(raw); ok {
			outcomes = append(outcomes, render.Outcome{Key: key, Status: st})
		}
	}
	return outcomes
}

func renderJobsTable(records []job.Record, outcomes []render.Outcome, colorize bool) string {
	colors := render.Colors(records, outcomes)
	rows := make([][]string, 0, len(records))
	tints := make([]text.Colors, 0, len(records))
	for i, rec := range records {
		kind := "invalid"
		if k, err := rec.Classify(); err == nil {
			kind = k.String()
		}
		last := colors[i].String()
		if colors[i] == render.ColorNone {
			last = "-"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			yesNo(rec.Active),
			rec.SourceFile,
			kind,
			optionalInt(rec.StartFrame),
			optionalInt(rec.EndFrame),
			string(rec.FileFormat),
			string(rec.Engine) + "/" + string(rec.Device),
			yesNo(rec.HighQuality),
			last,
			rec.Comments,
		})
		tints = append(tints, jobColors(colors[i]))
	}
	return renderTable(tableData{
		headers:   []string{"#", "Active", "Source", "Kind", "Start", "End", "Format", "Engine", "HQ", "Last", "Comments"},
		rows:      rows,
		aligns:    []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
		rowColors: tints,
		colorize:  colorize,
	})
}

func newJobsCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check <jobs.toml>",
		Short: "Run preflight checks against a job file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			records, err := loadJobs(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			envResults := preflight.CheckEnvironment(cfg)
			fmt.Fprintln(out, "Environment")
			for _, line := range preflightLines(envResults, colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, "Jobs")
			jobResults := preflight.CheckJobs(cfg, records)
			if len(jobResults) == 0 {
				fmt.Fprintln(out, renderStatusLine("Jobs", statusInfo, "no active jobs", colorize))
			}
			for _, line := range preflightLines(jobResults, colorize) {
				fmt.Fprintln(out, line)
			}
			if preflight.AnyFailed(envResults) || preflight.AnyFailed(jobResults) {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}
}

func newJobsInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "init <jobs.toml>",
		Short:       "Write a sample job file",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := config.ExpandPath(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve job file path: %w", err)
			}
			if err := job.WriteSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample job file to %s\n", target)
			return nil
		},
	}
}

// newJobsToggleCommand builds "jobs enable" or "jobs disable", which flip the
// active flag of the listed jobs and rewrite the file.
func newJobsToggleCommand(active bool) *cobra.Command {
	use, short := "disable", "Mark jobs inactive"
	if active {
		use, short = "enable", "Mark jobs active"
	}
	return &cobra.Command{
		Use:         use + " <jobs.toml> <N>...",
		Short:       short,
		Args:        cobra.MinimumNArgs(2),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve job file path: %w", err)
			}
			records, err := job.LoadFile(path)
			if err != nil {
				return err
			}
			for _, raw := range args[1:] {
				n, err := strconv.Atoi(raw)
				if err != nil {
					return fmt.Errorf("invalid job number %q", raw)
				}
				if _, err := selectJob(records, n); err != nil {
					return err
				}
				records[n-1].Active = active
			}
			if err := job.SaveFile(path, records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d job(s) in %s\n", len(args)-1, path)
			return nil
		},
	}
}
