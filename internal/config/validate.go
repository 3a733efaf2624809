package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
//
// A missing Blender executable is deliberately not a validation failure:
// render sessions surface it per job so the rest of the CLI keeps working.
func (c *Config) Validate() error {
	if err := c.validatePreview(); err != nil {
		return err
	}
	if err := c.validatePlayback(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateNotifications()
}

func (c *Config) validatePreview() error {
	if c.Preview.SamplesEnabled && c.Preview.Samples <= 0 {
		return errors.New("preview.samples must be positive when preview.samples_enabled is true")
	}
	if c.Preview.FrameStepEnabled && c.Preview.FrameStep <= 0 {
		return errors.New("preview.frame_step must be positive when preview.frame_step_enabled is true")
	}
	if c.Preview.ResolutionEnabled && (c.Preview.Resolution <= 0 || c.Preview.Resolution > 100) {
		return fmt.Errorf("preview.resolution must be between 1 and 100 percent, got %d", c.Preview.Resolution)
	}
	return nil
}

func (c *Config) validatePlayback() error {
	if c.Playback.FPS <= 0 {
		return errors.New("playback.fps must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout < 0 {
		return fmt.Errorf("notifications.request_timeout must not be negative, got %d", c.Notifications.RequestTimeout)
	}
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	u, err := url.Parse(topic)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic must be an http(s) URL, got %q", topic)
	}
	return nil
}
