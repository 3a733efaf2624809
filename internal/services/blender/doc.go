// Package blender builds Blender command lines and runs Blender as a child
// process.
//
// Args assembles the background render invocation for a job, SettingsScript
// produces the inline Python passed through --python-expr, and Launcher
// starts the process and streams its merged stdout/stderr as tagged lines.
// The render controller depends only on the Launcher and Process interfaces,
// so tests substitute scripted fakes for the real executable.
package blender
