package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"renderrob/internal/config"
	"renderrob/internal/testsupport"
)

const testJobs = `[[job]]
active = true
source_file = "shot010.blend"
start_frame = 1
end_frame = 2

[[job]]
active = false
source_file = "shot020.blend"
start_frame = 5
high_quality = true
`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	jobsPath   string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	cfg.Logging.Level = "error"
	base := testsupport.BaseDir(cfg)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	testsupport.WriteBlend(t, cfg.Paths.BlendFilesDir, "shot010.blend")
	testsupport.WriteBlend(t, cfg.Paths.BlendFilesDir, "shot020.blend")
	jobsPath := filepath.Join(base, "jobs.toml")
	testsupport.WriteFile(t, jobsPath, testJobs)

	return &cliTestEnv{cfg: cfg, configPath: configPath, jobsPath: jobsPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n%s", needle, haystack)
	}
}
