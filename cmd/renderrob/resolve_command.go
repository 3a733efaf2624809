package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"renderrob/internal/config"
	"renderrob/internal/job"
	"renderrob/internal/shotpath"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var jobNumber int
	var replay bool

	cmd := &cobra.Command{
		Use:   "resolve <jobs.toml>",
		Short: "Show the shot name and output path each job renders to",
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
			indexes := make([]int, 0, len(records))
			if jobNumber > 0 {
				if _, err := selectJob(records, jobNumber); err != nil {
					return err
				}
				indexes = append(indexes, jobNumber-1)
			} else {
				for i := range records {
					indexes = append(indexes, i)
				}
			}

			rows := make([][]string, 0, len(indexes))
			for _, i := range indexes {
				rec := records[i]
				row := []string{strconv.Itoa(i + 1), rec.Label(), yesNo(rec.Active), "", "", "", ""}
				res, err := resolveJob(cfg, rec, replay)
				if err != nil {
					row[6] = err.Error()
				} else {
					row[3] = res.Kind.String()
					row[4] = res.ShotName
					row[5] = shotpath.VersionLabel(res.Version)
					row[6] = res.FramePathTemplate
				}
				rows = append(rows, row)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(tableData{
				headers: []string{"#", "Job", "Active", "Kind", "Shot", "Version", "Output"},
				rows:    rows,
				aligns:  []columnAlignment{alignRight},
			}))
			return nil
		},
	}

	cmd.Flags().IntVarP(&jobNumber, "job", "j", 0, "Resolve only job N (1-based)")
	cmd.Flags().BoolVar(&replay, "replay", false, "Resolve the latest existing version instead of the next one")
	return cmd
}

// resolveJob resolves rec the way a render session would, with bare source
// names looked up in the blend files directory.
func resolveJob(cfg *config.Config, rec job.Record, replay bool) (shotpath.Result, error) {
	rec.SourceFile = rec.ResolveSourcePath(cfg.Paths.BlendFilesDir)
	return shotpath.Resolve(rec, cfg.Paths.OutputRoot, replay)
}
