package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"renderrob/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newTestNotifyCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", filepath.Dir(target), err)
			}
			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set paths.output_root and blender.executable (or export BLENDER_PATH) before rendering.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and show resolved values",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if _, statErr := os.Stat(ctx.configPath); statErr != nil {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			rows := [][]string{
				{"paths.output_root", valueOrUnset(cfg.Paths.OutputRoot)},
				{"paths.blend_files_dir", valueOrUnset(cfg.Paths.BlendFilesDir)},
				{"paths.log_dir", cfg.Paths.LogDir},
				{"paths.state_dir", cfg.Paths.StateDir},
				{"blender.executable", valueOrUnset(cfg.Blender.Executable)},
				{"blender.settings_module_dir", cfg.Blender.SettingsModuleDir},
				{"preview.samples", previewValue(cfg.Preview.SamplesEnabled, cfg.Preview.Samples)},
				{"preview.frame_step", previewValue(cfg.Preview.FrameStepEnabled, cfg.Preview.FrameStep)},
				{"preview.resolution", previewValue(cfg.Preview.ResolutionEnabled, cfg.Preview.Resolution)},
				{"playback.fps", fmt.Sprintf("%d", cfg.Playback.FPS)},
				{"notifications", valueOrUnset(cfg.Notifications.NtfyTopic)},
				{"logging", fmt.Sprintf("%s/%s, keep %d days", cfg.Logging.Format, cfg.Logging.Level, cfg.Logging.RetentionDays)},
			}
			fmt.Fprintln(out, renderTable(tableData{headers: []string{"Setting", "Value"}, rows: rows}))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func valueOrUnset(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(unset)"
	}
	return v
}

func previewValue(enabled bool, v int) string {
	if !enabled {
		return fmt.Sprintf("%d (off)", v)
	}
	return fmt.Sprintf("%d", v)
}
