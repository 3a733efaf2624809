package shotpath

import (
	"fmt"
	"path/filepath"
	"strings"

	"renderrob/internal/fileutil"
	"renderrob/internal/job"
)

// MaxVersion bounds the version scan. Versions above it are never probed, so
// a shot with more renders than this keeps resolving to MaxVersion+1.
const MaxVersion = 1000

// Result is a resolved output location.
type Result struct {
	ShotName string
	// FramePathTemplate uses forward slashes and contains FramePlaceholder
	// where the frame number goes.
	FramePathTemplate string
	// Dir is the folder the frames land in: the version folder for
	// animations, the shared stills folder for stills.
	Dir     string
	Version int
	Kind    job.Kind
}

// FramePath substitutes a frame number into the template.
func (r Result) FramePath(frame int) string {
	return strings.Replace(r.FramePathTemplate, FramePlaceholder, fmt.Sprintf("%04d", frame), 1)
}

// Prober answers the two filesystem questions the version scan asks.
type Prober interface {
	Exists(path string) (bool, error)
	IsNonEmptyDir(path string) (bool, error)
}

type osProber struct{}

func (osProber) Exists(path string) (bool, error) { return fileutil.Exists(path) }
func (osProber) IsNonEmptyDir(path string) (bool, error) { return fileutil.IsNonEmptyDir(path) }

// Resolver resolves output paths against a filesystem.
type Resolver struct {
	probe Prober
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithProber overrides the filesystem prober.
func WithProber(p Prober) Option {
	return func(r *Resolver) {
		if p != nil {
			r.probe = p
		}
	}
}

// NewResolver constructs a resolver probing the local filesystem.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{probe: osProber{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve resolves a job against the local filesystem.
func Resolve(rec job.Record, outputRoot string, replay bool) (Result, error) {
	return NewResolver().Resolve(rec, outputRoot, replay)
}

// Resolve computes the shot name and frame path template for rec under
// outputRoot. An empty outputRoot renders next to the source file. When
// replay is set, or the job overwrites, the latest existing version is
// targeted instead of a new one.
func (r *Resolver) Resolve(rec job.Record, outputRoot string, replay bool) (Result, error) {
	kind, err := rec.Classify()
	if err != nil {
		return Result{}, err
	}

	root := strings.TrimSpace(outputRoot)
	if root == "" {
		root = filepath.Dir(rec.SourceFile)
	}

	shot := Name(rec)
	var dir string
	if kind == job.KindStill {
		dir = filepath.Join(root, "stills")
	} else {
		dir = filepath.Join(root, shot)
	}

	probeFrame := FramePlaceholder
	if kind == job.KindStill {
		probeFrame = fmt.Sprintf("%04d", startFrame(rec))
	}
	file := fmt.Sprintf("%s-f%s.%s", shot, probeFrame, rec.FileFormat.Extension())
	candidate := filepath.Join(dir, file)

	next, err := r.nextVersion(kind, dir, candidate)
	if err != nil {
		return Result{}, err
	}
	version := next
	if version > 1 && (replay || rec.Overwrite) {
		version--
	}

	tag := VersionLabel(version)
	resolvedFile := strings.ReplaceAll(candidate, VersionPlaceholder, tag)
	if kind == job.KindStill {
		resolvedFile = restoreFramePlaceholder(resolvedFile, probeFrame, rec.FileFormat.Extension())
	}
	return Result{
		ShotName:          strings.ReplaceAll(shot, VersionPlaceholder, tag),
		FramePathTemplate: filepath.ToSlash(resolvedFile),
		Dir:               filepath.ToSlash(strings.ReplaceAll(dir, VersionPlaceholder, tag)),
		Version:           version,
		Kind:              kind,
	}, nil
}

// nextVersion returns one past the highest version with existing output, or
// 1 when none exists.
func (r *Resolver) nextVersion(kind job.Kind, dir, candidate string) (int, error) {
	for v := MaxVersion; v >= 0; v-- {
		tag := VersionLabel(v)
		var (
			found bool
			err   error
			probe string
		)
		if kind == job.KindStill {
			probe = strings.ReplaceAll(candidate, VersionPlaceholder, tag)
			found, err = r.probe.Exists(probe)
		} else {
			probe = strings.ReplaceAll(dir, VersionPlaceholder, tag)
			found, err = r.probe.IsNonEmptyDir(probe)
		}
		if err != nil {
			return 0, &FilesystemProbeError{Path: probe, Err: err}
		}
		if found {
			return v + 1, nil
		}
	}
	return 1, nil
}

// VersionLabel formats a version number the way it appears in shot names.
func VersionLabel(v int) string {
	return fmt.Sprintf("v%02d", v)
}

func startFrame(rec job.Record) int {
	if rec.StartFrame != nil {
		return *rec.StartFrame
	}
	return 1
}

// restoreFramePlaceholder swaps the probed frame number in the file suffix
// back to FramePlaceholder.
func restoreFramePlaceholder(path, frame, ext string) string {
	suffix := "-f" + frame + "." + ext
	if !strings.HasSuffix(path, suffix) {
		return path
	}
	return strings.TrimSuffix(path, suffix) + "-f" + FramePlaceholder + "." + ext
}
