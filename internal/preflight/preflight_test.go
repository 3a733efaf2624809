package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"renderrob/internal/job"
	"renderrob/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDirectoryReadable(t *testing.T) {
	if got := CheckDirectoryReadable("blends", t.TempDir()); !got.Passed {
		t.Fatalf("expected pass, got: %s", got.Detail)
	}
}

func TestCheckExecutable(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBlender(0))

	tests := []struct {
		name    string
		command string
		passed  bool
	}{
		{name: "stub", command: cfg.Blender.Executable, passed: true},
		{name: "unset", command: "  ", passed: false},
		{name: "missing", command: "clearly-not-present-blender", passed: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckExecutable("Blender", tt.command)
			if got.Passed != tt.passed {
				t.Fatalf("Passed = %v, want %v (%s)", got.Passed, tt.passed, got.Detail)
			}
			if got.Detail == "" {
				t.Fatal("expected detail")
			}
		})
	}
}

func TestCheckExecutable_NotExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blender")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := CheckExecutable("Blender", path); got.Passed {
		t.Fatalf("expected failure for non-executable file")
	}
}

func TestCheckSettingsModuleIsAdvisory(t *testing.T) {
	dir := t.TempDir()
	missing := CheckSettingsModule(dir)
	if missing.Passed || !missing.Advisory || missing.Failed() {
		t.Fatalf("expected advisory miss, got %+v", missing)
	}

	testsupport.WriteFile(t, filepath.Join(dir, "render_settings_setter.py"), "class RenderSettingsSetter: pass\n")
	if got := CheckSettingsModule(dir); !got.Passed {
		t.Fatalf("expected pass, got %+v", got)
	}
}

func TestCheckEnvironment(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBlender(0))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(cfg.Paths.BlendFilesDir, 0o755); err != nil {
		t.Fatal(err)
	}

	results := CheckEnvironment(cfg)
	if AnyFailed(results) {
		t.Fatalf("unexpected failure: %+v", results)
	}

	cfg.Paths.OutputRoot = ""
	results = CheckEnvironment(cfg)
	var found bool
	for _, r := range results {
		if r.Name == "Output root" {
			found = true
			if !r.Passed || !strings.Contains(r.Detail, "next to each blend file") {
				t.Fatalf("unexpected output root result: %+v", r)
			}
		}
	}
	if !found {
		t.Fatal("missing output root result")
	}

	cfg.Blender.Executable = ""
	if !AnyFailed(CheckEnvironment(cfg)) {
		t.Fatal("expected failure without an executable")
	}
}

func TestCheckJobs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteBlend(t, cfg.Paths.BlendFilesDir, "shot010.blend")

	good := job.Record{Active: true, SourceFile: "shot010.blend", StartFrame: job.Int(1), EndFrame: job.Int(10)}
	records := []job.Record{
		good,
		{Active: true, SourceFile: "missing.blend"},
		{Active: true, SourceFile: "shot010.blend", EndFrame: job.Int(5)},
		{Active: false, SourceFile: "ignored.blend"},
		good,
	}

	results := CheckJobs(cfg, records)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d: %+v", len(results), results)
	}
	if !results[0].Passed {
		t.Fatalf("expected job 1 to pass: %+v", results[0])
	}
	if results[1].Passed || !strings.Contains(results[1].Detail, "source file missing") {
		t.Fatalf("expected missing source failure: %+v", results[1])
	}
	if results[2].Passed || !results[2].Failed() {
		t.Fatalf("expected invalid range failure: %+v", results[2])
	}
	if !results[3].Passed || !strings.HasPrefix(results[3].Name, "Job 5") {
		t.Fatalf("expected job 5 to pass: %+v", results[3])
	}
	dup := results[4]
	if !dup.Advisory || dup.Failed() || !strings.Contains(dup.Detail, "jobs 1, 5") {
		t.Fatalf("unexpected duplicate result: %+v", dup)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if got := RunAll(nil, nil); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}
