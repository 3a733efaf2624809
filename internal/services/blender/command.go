package blender

import (
	"errors"
	"strconv"

	"renderrob/internal/job"
)

// Args returns the background render arguments for rec. sourcePath is the
// resolved blend file and framePath the output template from the resolver.
func Args(rec job.Record, sourcePath, framePath, script string) ([]string, error) {
	if sourcePath == "" {
		return nil, errors.New("blender args: source path is empty")
	}
	code := rec.FileFormat.CommandCode()
	if code == "" {
		return nil, errors.New("blender args: unknown file format " + strconv.Quote(string(rec.FileFormat)))
	}

	args := []string{"-b", sourcePath}
	if rec.Scene != "" {
		args = append(args, "-S", rec.Scene)
	}
	args = append(args, "-o", framePath, "-y", "-F", code)
	if script != "" {
		args = append(args, "--python-expr", script)
	}
	frames, err := FrameFlags(rec)
	if err != nil {
		return nil, err
	}
	return append(args, frames...), nil
}

// FrameFlags returns the trailing frame selection flags. They must come last
// since Blender renders as soon as it parses them.
func FrameFlags(rec job.Record) ([]string, error) {
	kind, err := rec.Classify()
	if err != nil {
		return nil, err
	}
	switch {
	case kind == job.KindStill && rec.StartFrame != nil:
		return []string{"-f", strconv.Itoa(*rec.StartFrame)}, nil
	case kind == job.KindAnimation && rec.StartFrame != nil && rec.EndFrame != nil:
		return []string{"-s", strconv.Itoa(*rec.StartFrame), "-e", strconv.Itoa(*rec.EndFrame), "-a"}, nil
	default:
		return []string{"-a"}, nil
	}
}
