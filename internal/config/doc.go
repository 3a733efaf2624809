// Package config loads, normalizes, and validates RenderRob configuration.
//
// Settings live in a TOML file (by default ~/.config/renderrob/config.toml)
// and cover the render output root, the Blender executable, preview
// overrides applied to non high-quality jobs, playback fps, and logging.
// Load applies repository defaults, expands user-relative paths, and falls
// back to environment variables where documented so the render controller and
// CLI can rely on a fully populated Config.
package config
