package config

const (
	defaultConfigPath        = "~/.config/renderrob/config.toml"
	defaultLogDir            = "~/.local/share/renderrob/logs"
	defaultStateDir          = "~/.local/share/renderrob/state"
	defaultSettingsModuleDir = "~/.local/share/renderrob/scripts"
	defaultPreviewSamples    = 16
	defaultPreviewFrameStep  = 2
	defaultPreviewResolution = 50
	defaultPlaybackFPS       = 24
	defaultNtfyTimeout       = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogRetentionDays  = 30
)

// blenderCandidates lists well-known install locations probed when no
// executable is configured.
var blenderCandidates = []string{
	"C:/Program Files (x86)/Steam/steamapps/common/Blender/blender.exe",
	"C:/Program Files/Blender Foundation/Blender/blender.exe",
	"/Applications/Blender.app/Contents/MacOS/Blender",
	"/Applications/blender/blender.app/Contents/MacOS/blender",
	"/usr/bin/blender",
	"/usr/local/bin/blender",
	"/snap/bin/blender",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Blender: Blender{
			SettingsModuleDir: defaultSettingsModuleDir,
		},
		Preview: Preview{
			Samples:    defaultPreviewSamples,
			FrameStep:  defaultPreviewFrameStep,
			Resolution: defaultPreviewResolution,
		},
		Playback: Playback{
			FPS: defaultPlaybackFPS,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
			JobFailures:    true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
