package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"renderrob/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("BLENDER_PATH", "/opt/blender/blender")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogs := filepath.Join(tempHome, ".local", "share", "renderrob", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if cfg.Paths.OutputRoot != "" {
		t.Fatalf("expected empty output root by default, got %q", cfg.Paths.OutputRoot)
	}
	if cfg.Blender.Executable != "/opt/blender/blender" {
		t.Fatalf("expected executable from BLENDER_PATH, got %q", cfg.Blender.Executable)
	}
	if cfg.Playback.FPS != config.Default().Playback.FPS {
		t.Fatalf("unexpected fps: %d", cfg.Playback.FPS)
	}
	if cfg.Preview.SamplesEnabled || cfg.Preview.FrameStepEnabled || cfg.Preview.ResolutionEnabled {
		t.Fatal("expected preview overrides disabled by default")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.StateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if filepath.Dir(cfg.HistoryPath()) != cfg.Paths.StateDir {
		t.Fatalf("history db should live in state dir, got %q", cfg.HistoryPath())
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "renderrob.toml")

	type payload struct {
		Paths struct {
			OutputRoot string `toml:"output_root"`
		} `toml:"paths"`
		Blender struct {
			Executable string `toml:"executable"`
		} `toml:"blender"`
		Preview struct {
			Samples        int  `toml:"samples"`
			SamplesEnabled bool `toml:"samples_enabled"`
		} `toml:"preview"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.OutputRoot = filepath.Join(tempDir, "renders")
	custom.Blender.Executable = filepath.Join(tempDir, "bin", "blender")
	custom.Preview.Samples = 8
	custom.Preview.SamplesEnabled = true
	custom.Logging.Format = "JSON"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got resolved=%q exists=%v", resolved, exists)
	}
	if cfg.Paths.OutputRoot != custom.Paths.OutputRoot {
		t.Fatalf("unexpected output root: %q", cfg.Paths.OutputRoot)
	}
	if cfg.Blender.Executable != custom.Blender.Executable {
		t.Fatalf("unexpected executable: %q", cfg.Blender.Executable)
	}
	if !cfg.Preview.SamplesEnabled || cfg.Preview.Samples != 8 {
		t.Fatalf("unexpected preview samples: %+v", cfg.Preview)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized json log format, got %q", cfg.Logging.Format)
	}
}

func TestValidateRejectsBadSettings(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name: "samples",
			mutate: func(c *config.Config) {
				c.Preview.SamplesEnabled = true
				c.Preview.Samples = 0
			},
			want: "preview.samples",
		},
		{
			name: "frame step",
			mutate: func(c *config.Config) {
				c.Preview.FrameStepEnabled = true
				c.Preview.FrameStep = -1
			},
			want: "preview.frame_step",
		},
		{
			name: "resolution",
			mutate: func(c *config.Config) {
				c.Preview.ResolutionEnabled = true
				c.Preview.Resolution = 150
			},
			want: "preview.resolution",
		},
		{
			name: "fps",
			mutate: func(c *config.Config) {
				c.Playback.FPS = 0
			},
			want: "playback.fps",
		},
		{
			name: "ntfy topic",
			mutate: func(c *config.Config) {
				c.Notifications.NtfyTopic = "my-renders"
			},
			want: "notifications.ntfy_topic",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestValidateIgnoresDisabledOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.Preview.Samples = 0
	cfg.Preview.Resolution = 500
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled overrides should not be validated: %v", err)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if !strings.HasSuffix(cfg.Paths.OutputRoot, "renders") {
		t.Fatalf("unexpected sample output root: %q", cfg.Paths.OutputRoot)
	}
}

func TestLoadRejectsInvalidFileValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{name: "negative fps", content: "[playback]\nfps = -1\n", want: "playback.fps"},
		{name: "unknown log format", content: "[logging]\nformat = \"xml\"\n", want: "logging.format"},
		{name: "unknown log level", content: "[logging]\nlevel = \"verbose\"\n", want: "logging.level"},
		{name: "negative ntfy timeout", content: "[notifications]\nrequest_timeout = -5\n", want: "notifications.request_timeout"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected load to fail")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadFillsUnsetValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[playback]\nfps = 0\n[logging]\nformat = \"JSON\"\n[notifications]\nrequest_timeout = 0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Playback.FPS != 24 {
		t.Fatalf("fps = %d, want 24", cfg.Playback.FPS)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("format = %q, want json", cfg.Logging.Format)
	}
	if cfg.Notifications.RequestTimeout != 10 {
		t.Fatalf("request_timeout = %d, want 10", cfg.Notifications.RequestTimeout)
	}
}
