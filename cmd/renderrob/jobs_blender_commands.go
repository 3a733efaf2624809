package main

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"renderrob/internal/config"
	"renderrob/internal/fileutil"
	"renderrob/internal/job"
	"renderrob/internal/render"
	"renderrob/internal/services"
	"renderrob/internal/services/blender"
)

func newJobsImportCommand(ctx *commandContext) *cobra.Command {
	var replace int

	cmd := &cobra.Command{
		Use:   "import <jobs.toml> [file.blend]",
		Short: "Add a job from the settings saved in a blend file",
		Long: `Read camera, frame range, resolution, samples, engine, device, view layers
and output format from a blend file and store them as a job.

The job is appended unless --replace names an existing job. With --replace and
no blend file, the settings are reloaded from that job's own source file. A
job file that does not exist yet is created.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve job file path: %w", err)
			}
			records, err := job.LoadFile(path)
			if err != nil && !errors.Is(err, services.ErrNotFound) {
				return err
			}
			blendArg := ""
			if len(args) == 2 {
				blendArg = args[1]
			}

			records, index, err := importJob(cmd.Context(), cfg, blender.NewExecLauncher(), records, blendArg, replace)
			if err != nil {
				return err
			}
			if err := job.SaveFile(path, records); err != nil {
				return err
			}
			verb := "Added"
			if replace > 0 {
				verb = "Replaced"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s job %d (%s) in %s\n", verb, index+1, records[index].Label(), path)
			return nil
		},
	}

	cmd.Flags().IntVarP(&replace, "replace", "r", 0, "Job number to overwrite with the loaded settings (1-based)")
	return cmd
}

// importJob loads render settings from a blend file and stores them in
// records, either replacing the 1-based job replace or appending. The job's
// source path keeps the spelling it was given, and a replaced job keeps its
// comments and overwrite flag. It returns the updated records and the index
// of the imported job.
func importJob(ctx context.Context, cfg *config.Config, launcher blender.Launcher, records []job.Record, blendArg string, replace int) ([]job.Record, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := render.CheckExecutable(cfg.Blender.Executable); err != nil {
		return records, -1, err
	}

	var previous job.Record
	if replace != 0 {
		rec, err := selectJob(records, replace)
		if err != nil {
			return records, -1, err
		}
		previous = rec
	}

	spelling := strings.TrimSpace(blendArg)
	if spelling == "" {
		if replace == 0 {
			return records, -1, errors.New("a blend file is required unless --replace is given")
		}
		spelling = previous.SourceFile
	}
	source, err := locateSource(spelling, cfg.Paths.BlendFilesDir)
	if err != nil {
		return records, -1, err
	}

	loaded, err := blender.LoadSettings(ctx, launcher, cfg.Blender.Executable, source)
	if err != nil {
		return records, -1, err
	}
	loaded.SourceFile = spelling

	if replace != 0 {
		loaded.Comments = previous.Comments
		loaded.Overwrite = previous.Overwrite
		records[replace-1] = loaded
		return records, replace - 1, nil
	}
	records = append(records, loaded)
	return records, len(records) - 1, nil
}

// locateSource resolves a blend file named on the command line or in a job.
// A name that exists relative to the working directory wins over the blend
// files directory.
func locateSource(spelling, blendDir string) (string, error) {
	expanded, err := config.ExpandPath(spelling)
	if err != nil {
		return "", fmt.Errorf("resolve blend file path: %w", err)
	}
	candidates := []string{expanded}
	if resolved := (job.Record{SourceFile: expanded}).ResolveSourcePath(blendDir); resolved != expanded {
		candidates = append(candidates, resolved)
	}
	for _, candidate := range candidates {
		ok, err := fileutil.IsFile(candidate)
		if err != nil {
			return "", &render.SourceFileMissingError{Path: candidate, Err: err}
		}
		if ok {
			abs, err := filepath.Abs(candidate)
			if err != nil {
				return candidate, nil
			}
			return abs, nil
		}
	}
	return "", &render.SourceFileMissingError{Path: candidates[len(candidates)-1]}
}

func newJobsOpenCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "open <jobs.toml> <N>",
		Short: "Open a job's blend file in Blender",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			records, err := loadJobs(args[0])
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid job number %q", args[1])
			}
			rec, err := selectJob(records, n)
			if err != nil {
				return err
			}
			binary, cmdArgs, err := openInBlender(cfg, rec)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", binary, strings.Join(cmdArgs, " "))
			if dryRun {
				return nil
			}
			editor := exec.Command(binary, cmdArgs...)
			if err := editor.Start(); err != nil {
				return services.Wrap(services.ErrExternalTool, "jobs", "open", binary, err)
			}
			return editor.Process.Release()
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the Blender command without running it")
	return cmd
}

// openInBlender returns the command that opens rec's source file in the
// Blender UI. The executable and the source file must both exist.
func openInBlender(cfg *config.Config, rec job.Record) (string, []string, error) {
	if err := render.CheckExecutable(cfg.Blender.Executable); err != nil {
		return "", nil, err
	}
	source := rec.ResolveSourcePath(cfg.Paths.BlendFilesDir)
	ok, err := fileutil.IsFile(source)
	if err != nil {
		return "", nil, &render.SourceFileMissingError{Path: source, Err: err}
	}
	if !ok {
		return "", nil, &render.SourceFileMissingError{Path: source}
	}
	return cfg.Blender.Executable, blender.OpenArgs(source), nil
}
