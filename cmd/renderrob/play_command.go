package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"renderrob/internal/config"
	"renderrob/internal/fileutil"
	"renderrob/internal/job"
	"renderrob/internal/services"
	"renderrob/internal/services/blender"
	"renderrob/internal/shotpath"
)

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var jobNumber int
	var folder bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "play <jobs.toml>",
		Short: "Show the latest render of a job",
		Long: `Show the latest rendered version of a job.

Stills open with the system viewer. Animations play in the Blender player at
the configured fps. --folder opens the output folder instead.`,
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
			rec, err := selectJob(records, jobNumber)
			if err != nil {
				return err
			}
			binary, cmdArgs, err := playCommand(cfg, rec, folder)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", binary, strings.Join(cmdArgs, " "))
			if dryRun {
				return nil
			}
			viewer := exec.Command(binary, cmdArgs...)
			if err := viewer.Start(); err != nil {
				return services.Wrap(services.ErrExternalTool, "play", "start viewer", binary, err)
			}
			return viewer.Process.Release()
		},
	}

	cmd.Flags().IntVarP(&jobNumber, "job", "j", 1, "Job number to play (1-based)")
	cmd.Flags().BoolVar(&folder, "folder", false, "Open the output folder instead of the render")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the viewer command without running it")
	return cmd
}

// playCommand resolves the latest version of rec and returns the command that
// shows it. It fails when nothing has been rendered yet.
func playCommand(cfg *config.Config, rec job.Record, folder bool) (string, []string, error) {
	res, err := resolveJob(cfg, rec, true)
	if err != nil {
		return "", nil, err
	}
	dir := filepath.FromSlash(res.Dir)

	if folder || rec.FileFormat.IsMovie() {
		ok, err := fileutil.IsNonEmptyDir(dir)
		if err != nil {
			return "", nil, err
		}
		if !ok {
			return "", nil, notRendered(res)
		}
		bin, args := blender.OpenCommand(dir)
		return bin, args, nil
	}

	if res.Kind == job.KindStill {
		path := filepath.FromSlash(res.FramePath(*rec.StartFrame))
		ok, err := fileutil.IsFile(path)
		if err != nil {
			return "", nil, err
		}
		if !ok {
			return "", nil, notRendered(res)
		}
		bin, args := blender.OpenCommand(path)
		return bin, args, nil
	}

	first, err := firstFrame(dir, rec.FileFormat.Extension())
	if err != nil {
		return "", nil, err
	}
	if first == "" {
		return "", nil, notRendered(res)
	}
	if strings.TrimSpace(cfg.Blender.Executable) == "" {
		return "", nil, services.Wrap(services.ErrConfiguration, "play", "player", "blender executable not configured", nil)
	}
	step := 1
	if !rec.HighQuality && cfg.Preview.FrameStepEnabled {
		step = cfg.Preview.FrameStep
	}
	return cfg.Blender.Executable, blender.PlayerArgs(first, cfg.Playback.FPS, step), nil
}

// firstFrame returns the lexically first frame file in dir with extension
// ext, or "" when there is none.
func firstFrame(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("list %s: %w", dir, err)
	}
	var frames []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), "."+ext) {
			frames = append(frames, e.Name())
		}
	}
	if len(frames) == 0 {
		return "", nil
	}
	sort.Strings(frames)
	return filepath.Join(dir, frames[0]), nil
}

func notRendered(res shotpath.Result) error {
	return services.Wrap(services.ErrNotFound, "play", "locate output",
		fmt.Sprintf("no rendered output for %s in %s", res.ShotName, res.Dir), nil)
}
