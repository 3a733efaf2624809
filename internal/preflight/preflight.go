package preflight

import (
	"renderrob/internal/config"
	"renderrob/internal/job"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Advisory bool
	Detail   string
}

// Failed reports whether the result should block a run.
func (r Result) Failed() bool { return !r.Passed && !r.Advisory }

// RunAll executes the environment checks followed by the per-job checks.
func RunAll(cfg *config.Config, records []job.Record) []Result {
	if cfg == nil {
		return nil
	}
	results := CheckEnvironment(cfg)
	return append(results, CheckJobs(cfg, records)...)
}

// CheckEnvironment checks the executable and directories named by cfg.
func CheckEnvironment(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckExecutable("Blender executable", cfg.Blender.Executable),
		CheckSettingsModule(cfg.Blender.SettingsModuleDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}
	if cfg.Paths.OutputRoot != "" {
		results = append(results, CheckDirectoryAccess("Output root", cfg.Paths.OutputRoot))
	} else {
		results = append(results, Result{Name: "Output root", Passed: true, Detail: "unset (renders next to each blend file)"})
	}
	if cfg.Paths.BlendFilesDir != "" {
		results = append(results, CheckDirectoryReadable("Blend files directory", cfg.Paths.BlendFilesDir))
	}
	return results
}

// AnyFailed reports whether any blocking check failed.
func AnyFailed(results []Result) bool {
	for _, r := range results {
		if r.Failed() {
			return true
		}
	}
	return false
}
