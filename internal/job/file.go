package job

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"renderrob/internal/fileutil"
	"renderrob/internal/services"
)

//go:embed sample_jobs.toml
var sampleJobs string

// File is the on-disk shape of a job list.
type File struct {
	Jobs []Record `toml:"job"`
}

// LoadFile reads a TOML job list. Unknown keys and unknown enum values are
// rejected; frame ranges are left for the resolver to judge per job. Source
// paths with a directory component are made relative to the job file.
func LoadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "job", "load", fmt.Sprintf("job file %s", path), err)
		}
		return nil, fmt.Errorf("read job file: %w", err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse decodes a TOML job list. baseDir anchors relative source paths that
// contain a directory component; bare file names are left untouched.
func Parse(data []byte, baseDir string) ([]Record, error) {
	var file File
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&file); err != nil {
		return nil, services.Wrap(services.ErrValidation, "job", "parse", "decode job file", err)
	}
	for i := range file.Jobs {
		normalize(&file.Jobs[i], baseDir)
		if err := checkFields(file.Jobs[i]); err != nil {
			return nil, services.Wrap(services.ErrValidation, "job", "parse", fmt.Sprintf("job %d", i), err)
		}
	}
	return file.Jobs, nil
}

// SaveFile writes records as a TOML job list.
func SaveFile(path string, records []Record) error {
	data, err := toml.Marshal(File{Jobs: records})
	if err != nil {
		return fmt.Errorf("encode job file: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write job file: %w", err)
	}
	return nil
}

// WriteSample writes an annotated example job file. Existing files are not
// overwritten.
func WriteSample(path string) error {
	exists, err := fileutil.Exists(path)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", path, err)
	}
	if exists {
		return fmt.Errorf("%s already exists", path)
	}
	return fileutil.WriteFileAtomic(path, []byte(sampleJobs), 0o644)
}

func normalize(r *Record, baseDir string) {
	r.SourceFile = strings.TrimSpace(r.SourceFile)
	if r.SourceFile != "" && baseDir != "" && !filepath.IsAbs(r.SourceFile) && filepath.Base(r.SourceFile) != r.SourceFile {
		r.SourceFile = filepath.Join(baseDir, r.SourceFile)
	}
	if r.FileFormat == "" {
		r.FileFormat = FormatPNG
	}
	if r.Engine == "" {
		r.Engine = EngineCycles
	}
	if r.Device == "" {
		r.Device = DeviceGPU
	}
	r.Camera = strings.TrimSpace(r.Camera)
	r.Scene = strings.TrimSpace(r.Scene)
	layers := r.ViewLayers[:0]
	for _, layer := range r.ViewLayers {
		if trimmed := strings.TrimSpace(layer); trimmed != "" {
			layers = append(layers, trimmed)
		}
	}
	r.ViewLayers = layers
}

// checkFields validates everything except the frame range.
func checkFields(r Record) error {
	err := r.Validate()
	if err == nil {
		return nil
	}
	var errs []error
	for _, e := range unjoin(err) {
		var rangeErr *InvalidFrameRangeError
		if errors.As(e, &rangeErr) {
			continue
		}
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

func unjoin(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
