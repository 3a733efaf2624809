package job

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultCamera    = "Camera"
	DefaultScene     = "Scene"
	DefaultViewLayer = "View Layer"
)

// keyNamespace seeds the name-based UUIDs returned by Record.Key.
var keyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("renderrob:job"))

// Record is one row of render work.
type Record struct {
	Active      bool       `toml:"active"`
	SourceFile  string     `toml:"source_file"`
	Camera      string     `toml:"camera,omitempty"`
	StartFrame  *int       `toml:"start_frame,omitempty"`
	EndFrame    *int       `toml:"end_frame,omitempty"`
	XRes        *int       `toml:"x_res,omitempty"`
	YRes        *int       `toml:"y_res,omitempty"`
	Samples     *int       `toml:"samples,omitempty"`
	FileFormat  FileFormat `toml:"file_format"`
	Engine      Engine     `toml:"engine"`
	Device      Device     `toml:"device"`
	MotionBlur  bool       `toml:"motion_blur"`
	Overwrite   bool       `toml:"overwrite"`
	HighQuality bool       `toml:"high_quality"`
	Denoise     bool       `toml:"denoise"`
	Scene       string     `toml:"scene,omitempty"`
	ViewLayers  []string   `toml:"view_layers,omitempty"`
	Comments    string     `toml:"comments,omitempty"`
}

// Int returns a pointer to v, for building records with optional fields.
func Int(v int) *int { return &v }

// Classify reports whether the record is a still or an animation job.
// An end frame without a start frame, or an end frame before the start
// frame, is rejected.
func (r Record) Classify() (Kind, error) {
	switch {
	case r.StartFrame == nil && r.EndFrame != nil:
		return 0, &InvalidFrameRangeError{Start: r.StartFrame, End: r.EndFrame}
	case r.StartFrame != nil && r.EndFrame == nil:
		return KindStill, nil
	case r.StartFrame != nil && r.EndFrame != nil && *r.EndFrame < *r.StartFrame:
		return 0, &InvalidFrameRangeError{Start: r.StartFrame, End: r.EndFrame}
	default:
		return KindAnimation, nil
	}
}

// Validate checks field-level constraints: a source file, known enum values,
// positive optional numbers and a coherent frame range.
func (r Record) Validate() error {
	var errs []error
	if strings.TrimSpace(r.SourceFile) == "" {
		errs = append(errs, errors.New("source_file is required"))
	}
	if r.FileFormat.CommandCode() == "" {
		errs = append(errs, fmt.Errorf("unknown file format %q", r.FileFormat))
	}
	if _, err := ParseEngine(string(r.Engine)); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseDevice(string(r.Device)); err != nil {
		errs = append(errs, err)
	}
	for _, field := range []struct {
		name  string
		value *int
	}{{"x_res", r.XRes}, {"y_res", r.YRes}, {"samples", r.Samples}} {
		if field.value != nil && *field.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", field.name, *field.value))
		}
	}
	if _, err := r.Classify(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Key returns a deterministic identity for the record. Records that would
// render the same output share a key; the active flag and comments are not
// part of the identity.
func (r Record) Key() string {
	return uuid.NewSHA1(keyNamespace, []byte(r.canonical())).String()
}

func (r Record) canonical() string {
	fields := []string{
		r.SourceFile,
		r.Camera,
		optional(r.StartFrame),
		optional(r.EndFrame),
		optional(r.XRes),
		optional(r.YRes),
		optional(r.Samples),
		string(r.FileFormat),
		string(r.Engine),
		string(r.Device),
		strconv.FormatBool(r.MotionBlur),
		strconv.FormatBool(r.Overwrite),
		strconv.FormatBool(r.HighQuality),
		strconv.FormatBool(r.Denoise),
		r.Scene,
		strings.Join(r.ViewLayers, "\x1f"),
	}
	return strings.Join(fields, "\x00")
}

func optional(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

// ResolveSourcePath returns the absolute-or-relative path of the source file.
// A bare file name is looked up in blendDir when one is configured.
func (r Record) ResolveSourcePath(blendDir string) string {
	src := strings.TrimSpace(r.SourceFile)
	if src == "" || blendDir == "" {
		return src
	}
	if filepath.Base(src) == src {
		return filepath.Join(blendDir, src)
	}
	return src
}

// Label is a short human description used in tables and log lines.
func (r Record) Label() string {
	name := filepath.Base(r.SourceFile)
	if r.Camera != "" {
		name += " [" + r.Camera + "]"
	}
	switch {
	case r.StartFrame != nil && r.EndFrame != nil:
		name += fmt.Sprintf(" %d-%d", *r.StartFrame, *r.EndFrame)
	case r.StartFrame != nil:
		name += fmt.Sprintf(" f%d", *r.StartFrame)
	}
	return name
}

// ActiveCount returns how many records are marked active.
func ActiveCount(records []Record) int {
	n := 0
	for _, r := range records {
		if r.Active {
			n++
		}
	}
	return n
}

// Duplicates groups record indexes sharing the same identity key. Only keys
// shared by two or more records are returned.
func Duplicates(records []Record) map[string][]int {
	byKey := make(map[string][]int)
	for i, r := range records {
		key := r.Key()
		byKey[key] = append(byKey[key], i)
	}
	for key, idx := range byKey {
		if len(idx) < 2 {
			delete(byKey, key)
		}
	}
	return byKey
}
