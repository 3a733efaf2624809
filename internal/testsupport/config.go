package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"renderrob/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The Blender executable is left unset; use WithStubbedBlender for a runnable
// stand-in.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputRoot = filepath.Join(base, "renders")
	cfgVal.Paths.BlendFilesDir = filepath.Join(base, "blends")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Blender.Executable = ""
	cfgVal.Blender.SettingsModuleDir = filepath.Join(base, "scripts")
	cfgVal.Logging.Format = "json"
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithPreview sets preview overrides on the test config.
func WithPreview(preview config.Preview) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Preview = preview
	}
}

// WithOutputRoot overrides the render output root. An empty root makes jobs
// render next to their blend file.
func WithOutputRoot(root string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.OutputRoot = root
	}
}

// WithNtfyTopic points notifications at topic.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// WithStubbedBlender writes an executable shell script standing in for
// Blender and points the config at it. The stub exits with exitCode.
func WithStubbedBlender(exitCode int) ConfigOption {
	return WithStubbedBlenderOutput(exitCode, "Blender quit")
}

// WithStubbedBlenderOutput is WithStubbedBlender with a stub that prints
// lines to stdout before exiting.
func WithStubbedBlenderOutput(exitCode int, lines ...string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		var script strings.Builder
		script.WriteString("#!/bin/sh\n")
		for _, line := range lines {
			quoted := "'" + strings.ReplaceAll(line, "'", `'\''`) + "'"
			fmt.Fprintf(&script, "printf '%%s\\n' %s\n", quoted)
		}
		fmt.Fprintf(&script, "exit %d\n", exitCode)
		target := filepath.Join(binDir, "blender")
		if err := os.WriteFile(target, []byte(script.String()), 0o755); err != nil {
			b.t.Fatalf("write blender stub: %v", err)
		}
		b.cfg.Blender.Executable = target
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
