package blender

import (
	"runtime"
	"strconv"
)

// PlayerArgs returns the arguments that open Blender's animation player on a
// rendered frame sequence starting at firstFrame.
func PlayerArgs(firstFrame string, fps, frameStep int) []string {
	if fps <= 0 {
		fps = 24
	}
	if frameStep <= 0 {
		frameStep = 1
	}
	return []string{"-a", "-f", strconv.Itoa(fps), "1", "-j", strconv.Itoa(frameStep), firstFrame}
}

// OpenCommand returns the platform command that opens path with the default
// application or file browser.
func OpenCommand(path string) (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "explorer", []string{path}
	default:
		return "xdg-open", []string{path}
	}
}
