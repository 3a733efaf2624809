package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"renderrob/internal/config"
	"renderrob/internal/job"
	"renderrob/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// newLogger builds the application logger for commands that log. Console
// output goes to errOut. Failure to open the log file falls back to errOut
// only.
func (c *commandContext) newLogger(errOut io.Writer) *slog.Logger {
	logger, err := logging.NewFromConfig(c.configValue(), errOut)
	if err != nil {
		fallback, _ := logging.New(logging.Options{Level: "info", Format: "console", OutputPaths: []string{"stderr"}, Stderr: errOut})
		logging.WarnWithContext(fallback, "log file unavailable", "log_file_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.log_dir permissions"),
			logging.String(logging.FieldImpact, "logs are written to stderr only"),
		)
		return fallback
	}
	return logger
}

// loadJobs reads the job file named on the command line. Relative source
// paths are anchored at the job file's directory.
func loadJobs(path string) ([]job.Record, error) {
	expanded, err := config.ExpandPath(strings.TrimSpace(path))
	if err != nil {
		return nil, fmt.Errorf("resolve job file path: %w", err)
	}
	return job.LoadFile(expanded)
}

// selectJob returns the 1-based job number n from records.
func selectJob(records []job.Record, n int) (job.Record, error) {
	if n < 1 || n > len(records) {
		return job.Record{}, fmt.Errorf("job %d out of range (job file has %d jobs)", n, len(records))
	}
	return records[n-1], nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
