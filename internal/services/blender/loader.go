package blender

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"renderrob/internal/job"
	"renderrob/internal/services"
)

//go:embed settings_loader.py
var loaderScript string

// SettingsMarker prefixes the JSON line the loader script prints.
const SettingsMarker = "RENDERROB_SETTINGS "

// LoaderArgs returns the arguments that open sourcePath in the background and
// print its render settings. Factory startup keeps user add-ons from
// changing what is read.
func LoaderArgs(sourcePath string) []string {
	return []string{"-b", sourcePath, "-y", "--factory-startup", "--python-expr", loaderScript}
}

// OpenArgs returns the arguments that open sourcePath in the Blender UI.
func OpenArgs(sourcePath string) []string {
	return []string{sourcePath}
}

type loadedSettings struct {
	File        string   `json:"file"`
	Camera      string   `json:"camera"`
	StartFrame  *int     `json:"start_frame"`
	EndFrame    *int     `json:"end_frame"`
	XRes        *int     `json:"x_res"`
	YRes        *int     `json:"y_res"`
	Samples     *int     `json:"samples"`
	Engine      string   `json:"engine"`
	Device      string   `json:"device"`
	MotionBlur  bool     `json:"motion_blur"`
	HighQuality bool     `json:"high_quality"`
	Denoise     bool     `json:"denoise"`
	Scene       string   `json:"scene"`
	ViewLayers  []string `json:"view_layers"`
	FileFormat  string   `json:"file_format"`
}

// LoadSettings runs the loader script against sourcePath and returns an
// active job record carrying the file's camera, frame range, resolution,
// samples, engine, device, view layers and output format.
func LoadSettings(ctx context.Context, launcher Launcher, binary, sourcePath string) (job.Record, error) {
	proc, err := launcher.Launch(ctx, binary, LoaderArgs(sourcePath))
	if err != nil {
		return job.Record{}, services.Wrap(services.ErrExternalTool, "blender", "load settings", sourcePath, err)
	}

	var payload, lastError string
	for line := range proc.Output() {
		text := strings.TrimSpace(line.Text)
		if rest, ok := strings.CutPrefix(text, SettingsMarker); ok {
			payload = rest
			continue
		}
		if line.Severity == SeverityError || strings.HasPrefix(text, "Error") || strings.HasPrefix(text, "Traceback") {
			lastError = text
		}
	}
	exit := <-proc.Done()

	if payload == "" {
		detail := fmt.Sprintf("no settings reported for %s (exit %d)", sourcePath, exit.Code)
		if lastError != "" {
			detail += ": " + lastError
		}
		cause := exit.Err
		if cause == nil {
			cause = errors.New("settings line missing from output")
		}
		return job.Record{}, services.Wrap(services.ErrExternalTool, "blender", "load settings", detail, cause)
	}
	return DecodeSettings(payload, sourcePath)
}

// DecodeSettings converts the loader script's JSON into a job record. source
// stands in for the file path when Blender reports none.
func DecodeSettings(payload, source string) (job.Record, error) {
	var loaded loadedSettings
	if err := json.Unmarshal([]byte(payload), &loaded); err != nil {
		return job.Record{}, services.Wrap(services.ErrValidation, "blender", "load settings", "decode settings", err)
	}

	format, err := job.ParseFileFormat(loaded.FileFormat)
	if err != nil {
		return job.Record{}, services.Wrap(services.ErrValidation, "blender", "load settings", "file format", err)
	}
	engine, err := job.ParseEngine(loaded.Engine)
	if err != nil {
		return job.Record{}, services.Wrap(services.ErrValidation, "blender", "load settings", "engine", err)
	}
	device, err := job.ParseDevice(loaded.Device)
	if err != nil {
		return job.Record{}, services.Wrap(services.ErrValidation, "blender", "load settings", "device", err)
	}

	if strings.TrimSpace(loaded.File) == "" {
		loaded.File = source
	}
	rec := job.Record{
		Active:      true,
		SourceFile:  loaded.File,
		Camera:      loaded.Camera,
		StartFrame:  loaded.StartFrame,
		EndFrame:    loaded.EndFrame,
		XRes:        loaded.XRes,
		YRes:        loaded.YRes,
		Samples:     loaded.Samples,
		FileFormat:  format,
		Engine:      engine,
		Device:      device,
		MotionBlur:  loaded.MotionBlur,
		HighQuality: loaded.HighQuality,
		Denoise:     loaded.Denoise,
		Scene:       loaded.Scene,
		ViewLayers:  loaded.ViewLayers,
	}
	if err := rec.Validate(); err != nil {
		return job.Record{}, services.Wrap(services.ErrValidation, "blender", "load settings", "loaded settings", err)
	}
	return rec, nil
}
