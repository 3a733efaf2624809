package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"renderrob/internal/job"
	"renderrob/internal/services"
	"renderrob/internal/services/blender"
	"renderrob/internal/testsupport"
)

const importedSettings = `{"file": "/elsewhere/shot030.blend", "camera": "CamB", "start_frame": 101, "end_frame": 148, ` +
	`"x_res": 2048, "y_res": 858, "samples": 256, "engine": "cycles", "device": "gpu", "motion_blur": true, ` +
	`"high_quality": true, "denoise": false, "scene": "Main", "view_layers": ["View Layer"], "file_format": "open_exr"}`

func TestJobsImportAppendsJob(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBlenderOutput(0,
		"Blender 4.2.0",
		blender.SettingsMarker+importedSettings,
		"Blender quit",
	))

	out, _, err := runCLI(t, []string{"jobs", "import", env.jobsPath, "shot010.blend"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs import: %v", err)
	}
	requireContains(t, out, "Added job 3")

	records, err := job.LoadFile(env.jobsPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(records))
	}
	got := records[2]
	if got.SourceFile != "shot010.blend" || got.Camera != "CamB" || *got.StartFrame != 101 || *got.EndFrame != 148 {
		t.Fatalf("imported job = %+v", got)
	}
	if got.FileFormat != job.FormatEXRSingle || *got.Samples != 256 || !got.Active {
		t.Fatalf("imported job = %+v", got)
	}
}

func TestJobsImportReplaceKeepsComments(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBlenderOutput(0, blender.SettingsMarker+importedSettings))
	records, err := job.LoadFile(env.jobsPath)
	if err != nil {
		t.Fatal(err)
	}
	records[1].Comments = "client notes"
	records[1].Overwrite = true
	if err := job.SaveFile(env.jobsPath, records); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"jobs", "import", env.jobsPath, "--replace", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs import --replace: %v", err)
	}
	requireContains(t, out, "Replaced job 2")

	records, err = job.LoadFile(env.jobsPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(records))
	}
	got := records[1]
	if got.SourceFile != "shot020.blend" || got.Camera != "CamB" || got.Comments != "client notes" || !got.Overwrite {
		t.Fatalf("replaced job = %+v", got)
	}
}

func TestJobsImportFailsWithoutSettings(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBlenderOutput(1, "Error: File format is not supported"))

	_, _, err := runCLI(t, []string{"jobs", "import", env.jobsPath, "shot010.blend"}, env.configPath)
	if err == nil {
		t.Fatal("expected import failure")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	records, err := job.LoadFile(env.jobsPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("job file changed after failed import: %d jobs", len(records))
	}
}

func TestImportJob(t *testing.T) {
	tests := []struct {
		name     string
		blendArg string
		replace  int
		missing  bool
		wantErr  error
		launches int
	}{
		{name: "append from blend dir", blendArg: "shot010.blend", launches: 1},
		{name: "reload replaced job", replace: 1, launches: 1},
		{name: "replace out of range", replace: 5},
		{name: "no blend file"},
		{name: "missing source", blendArg: "nowhere.blend", wantErr: services.ErrNotFound},
		{name: "missing executable", blendArg: "shot010.blend", missing: true, wantErr: services.ErrConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, testsupport.WithStubbedBlender(0))
			if tt.missing {
				cfg.Blender.Executable = filepath.Join(t.TempDir(), "blender")
			}
			testsupport.WriteBlend(t, cfg.Paths.BlendFilesDir, "shot010.blend")
			records := []job.Record{{Active: false, SourceFile: "shot010.blend", Comments: "keep", FileFormat: job.FormatPNG, Engine: job.EngineCycles, Device: job.DeviceGPU}}
			launcher := testsupport.NewFakeLauncher(testsupport.ProcessScript{
				Lines: []string{blender.SettingsMarker + importedSettings},
			})

			updated, index, err := importJob(context.Background(), cfg, launcher, records, tt.blendArg, tt.replace)
			if got := len(launcher.Calls()); got != tt.launches {
				t.Fatalf("expected %d launches, got %d", tt.launches, got)
			}
			if tt.launches == 0 {
				if err == nil {
					t.Fatal("expected error")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("importJob: %v", err)
			}
			want := filepath.Join(cfg.Paths.BlendFilesDir, "shot010.blend")
			if args := launcher.Calls()[0].Args; args[1] != want {
				t.Fatalf("loader opened %q, want %q", args[1], want)
			}
			rec := updated[index]
			if rec.SourceFile != "shot010.blend" || rec.Camera != "CamB" || !rec.Active {
				t.Fatalf("imported job = %+v", rec)
			}
			if tt.replace != 0 && (len(updated) != 1 || rec.Comments != "keep") {
				t.Fatalf("replace lost job fields: %+v", updated)
			}
			if tt.replace == 0 && len(updated) != 2 {
				t.Fatalf("expected appended job, got %d jobs", len(updated))
			}
		})
	}
}

func TestJobsOpen(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBlender(0))

	out, _, err := runCLI(t, []string{"jobs", "open", env.jobsPath, "1", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("jobs open: %v", err)
	}
	requireContains(t, out, env.cfg.Blender.Executable+" "+filepath.Join(env.cfg.Paths.BlendFilesDir, "shot010.blend"))

	records := []job.Record{{Active: true, SourceFile: "gone.blend", FileFormat: job.FormatPNG, Engine: job.EngineCycles, Device: job.DeviceGPU}}
	if err := job.SaveFile(env.jobsPath, records); err != nil {
		t.Fatal(err)
	}
	_, _, err = runCLI(t, []string{"jobs", "open", env.jobsPath, "1", "--dry-run"}, env.configPath)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected missing source error, got %v", err)
	}

	if _, _, err := runCLI(t, []string{"jobs", "open", env.jobsPath, "2", "--dry-run"}, env.configPath); err == nil {
		t.Fatal("expected out of range error")
	}
}
