package config

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeBlender(); err != nil {
		return err
	}
	c.normalizePlayback()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputRoot, err = expandPath(strings.TrimSpace(c.Paths.OutputRoot)); err != nil {
		return fmt.Errorf("paths.output_root: %w", err)
	}
	if c.Paths.BlendFilesDir, err = expandPath(strings.TrimSpace(c.Paths.BlendFilesDir)); err != nil {
		return fmt.Errorf("paths.blend_files_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeBlender() error {
	c.Blender.Executable = strings.TrimSpace(c.Blender.Executable)
	if c.Blender.Executable == "" {
		if value, ok := os.LookupEnv("BLENDER_PATH"); ok {
			c.Blender.Executable = strings.TrimSpace(value)
		}
	}
	if c.Blender.Executable == "" {
		c.Blender.Executable = discoverBlender()
	}
	if c.Blender.Executable != "" && strings.ContainsAny(c.Blender.Executable, `/\~`) {
		expanded, err := expandPath(c.Blender.Executable)
		if err != nil {
			return fmt.Errorf("blender.executable: %w", err)
		}
		c.Blender.Executable = expanded
	}
	if strings.TrimSpace(c.Blender.SettingsModuleDir) == "" {
		c.Blender.SettingsModuleDir = defaultSettingsModuleDir
	}
	var err error
	if c.Blender.SettingsModuleDir, err = expandPath(c.Blender.SettingsModuleDir); err != nil {
		return fmt.Errorf("blender.settings_module_dir: %w", err)
	}
	return nil
}

// discoverBlender returns the first well-known Blender install that exists,
// then falls back to a PATH lookup. An empty result leaves the executable
// unset so render sessions report it per job.
func discoverBlender() string {
	for _, candidate := range blenderCandidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	if path, err := exec.LookPath("blender"); err == nil {
		return path
	}
	return ""
}

func (c *Config) normalizePlayback() {
	if c.Playback.FPS == 0 {
		c.Playback.FPS = defaultPlaybackFPS
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout == 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
