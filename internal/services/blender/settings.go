package blender

import (
	"fmt"
	"strconv"
	"strings"

	"renderrob/internal/config"
	"renderrob/internal/job"
)

// SettingsModule is the Python module imported by the inline settings script.
const SettingsModule = "render_settings_setter"

// Effective holds the quality values a job renders with once preview
// overrides are applied. Nil Samples means "keep the file's value".
type Effective struct {
	Samples    *int
	FrameStep  int
	Resolution int
}

// EffectiveSettings applies preview overrides to non-high-quality jobs.
func EffectiveSettings(rec job.Record, preview config.Preview) Effective {
	eff := Effective{Samples: rec.Samples, FrameStep: 1, Resolution: 100}
	if rec.HighQuality {
		return eff
	}
	if preview.ResolutionEnabled {
		eff.Resolution = preview.Resolution
	}
	if preview.FrameStepEnabled {
		eff.FrameStep = preview.FrameStep
	}
	if preview.SamplesEnabled {
		eff.Samples = &preview.Samples
	}
	return eff
}

// SettingsScript builds the --python-expr payload that configures the scene
// inside Blender before rendering. moduleDir is appended to sys.path so the
// settings module can be imported.
func SettingsScript(rec job.Record, preview config.Preview, moduleDir string) string {
	eff := EffectiveSettings(rec, preview)
	statements := []string{
		"import sys",
		fmt.Sprintf("sys.path.append(%s)", pyString(moduleDir)),
		"import " + SettingsModule,
		fmt.Sprintf("rss = %s.RenderSettingsSetter(%s, %s)", SettingsModule, pyString(rec.Scene), pyList(rec.ViewLayers)),
		fmt.Sprintf("rss.set_camera(%s)", pyString(rec.Camera)),
		fmt.Sprintf("rss.set_render_settings(render_device=%s, border=%s, samples=%s, motion_blur=%s, engine=%s)",
			pyString(rec.Device.SceneValue()),
			pyBool(!rec.HighQuality),
			pyOptional(eff.Samples),
			pyBool(rec.MotionBlur),
			pyString(rec.Engine.SceneValue()),
		),
		fmt.Sprintf("rss.set_denoising_settings(denoise=%s)", pyBool(rec.Denoise)),
		fmt.Sprintf("rss.set_output_settings(frame_step=%d, xres=%s, yres=%s, percres=%d, high_quality=%s)",
			eff.FrameStep,
			pyOptional(rec.XRes),
			pyOptional(rec.YRes),
			eff.Resolution,
			pyBool(rec.HighQuality),
		),
		"rss.custom_commands()",
	}
	return strings.Join(statements, " ; ")
}

func pyString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`)
	return "'" + r.Replace(s) + "'"
}

func pyList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = pyString(item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// pyOptional renders unset values as an empty string literal, which the
// settings module treats as "leave unchanged".
func pyOptional(v *int) string {
	if v == nil {
		return `""`
	}
	return strconv.Itoa(*v)
}
