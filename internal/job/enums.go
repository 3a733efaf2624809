package job

import (
	"fmt"
	"strings"
)

// FileFormat is the image or movie format a job renders to.
type FileFormat string

const (
	FormatEXRSingle FileFormat = "exr_single"
	FormatEXRMulti  FileFormat = "exr_multi"
	FormatJPEG      FileFormat = "jpeg"
	FormatPNG       FileFormat = "png"
	FormatTIFF      FileFormat = "tiff"
	FormatFFmpeg    FileFormat = "ffmpeg"
)

var fileFormats = []struct {
	format    FileFormat
	code      string
	extension string
}{
	{FormatEXRSingle, "OPEN_EXR", "exr"},
	{FormatEXRMulti, "OPEN_EXR_MULTILAYER", "exr"},
	{FormatJPEG, "JPEG", "jpg"},
	{FormatPNG, "PNG", "png"},
	{FormatTIFF, "TIFF", "tiff"},
	{FormatFFmpeg, "FFMPEG", "ffmpeg"},
}

// FileFormats lists every supported format in display order.
func FileFormats() []FileFormat {
	out := make([]FileFormat, 0, len(fileFormats))
	for _, f := range fileFormats {
		out = append(out, f.format)
	}
	return out
}

// ParseFileFormat accepts either the format name or the renderer's format
// code, case-insensitively.
func ParseFileFormat(value string) (FileFormat, error) {
	v := strings.TrimSpace(value)
	for _, f := range fileFormats {
		if strings.EqualFold(v, string(f.format)) || strings.EqualFold(v, f.code) {
			return f.format, nil
		}
	}
	return "", fmt.Errorf("unknown file format %q", value)
}

// CommandCode returns the identifier passed to the renderer's -F flag.
func (f FileFormat) CommandCode() string {
	for _, entry := range fileFormats {
		if entry.format == f {
			return entry.code
		}
	}
	return ""
}

// Extension returns the filename extension used in frame templates.
func (f FileFormat) Extension() string {
	for _, entry := range fileFormats {
		if entry.format == f {
			return entry.extension
		}
	}
	return ""
}

// IsMovie reports whether the format writes a single movie file.
func (f FileFormat) IsMovie() bool { return f == FormatFFmpeg }

func (f *FileFormat) UnmarshalText(text []byte) error {
	parsed, err := ParseFileFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Engine is the render engine a job uses.
type Engine string

const (
	EngineCycles Engine = "cycles"
	EngineEevee  Engine = "eevee"
)

// ParseEngine parses an engine name case-insensitively.
func ParseEngine(value string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "cycles":
		return EngineCycles, nil
	case "eevee", "blender_eevee", "blender_eevee_next":
		return EngineEevee, nil
	default:
		return "", fmt.Errorf("unknown render engine %q", value)
	}
}

// SceneValue returns the renderer's scene.render.engine identifier.
func (e Engine) SceneValue() string {
	switch e {
	case EngineEevee:
		return "BLENDER_EEVEE"
	default:
		return "CYCLES"
	}
}

func (e *Engine) UnmarshalText(text []byte) error {
	parsed, err := ParseEngine(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Device selects GPU or CPU rendering.
type Device string

const (
	DeviceGPU Device = "gpu"
	DeviceCPU Device = "cpu"
)

// ParseDevice parses a device name case-insensitively.
func ParseDevice(value string) (Device, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "gpu":
		return DeviceGPU, nil
	case "cpu":
		return DeviceCPU, nil
	default:
		return "", fmt.Errorf("unknown render device %q", value)
	}
}

// SceneValue returns the renderer's cycles device identifier.
func (d Device) SceneValue() string {
	if d == DeviceCPU {
		return "CPU"
	}
	return "GPU"
}

func (d *Device) UnmarshalText(text []byte) error {
	parsed, err := ParseDevice(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Kind distinguishes single-frame jobs from frame-range jobs.
type Kind int

const (
	KindAnimation Kind = iota
	KindStill
)

func (k Kind) String() string {
	if k == KindStill {
		return "still"
	}
	return "animation"
}
