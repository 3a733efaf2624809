package shotpath

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"renderrob/internal/job"
	"renderrob/internal/services"
)

func animationJob() job.Record {
	return job.Record{
		SourceFile:  "/blends/shot010.blend",
		Camera:      "Camera",
		StartFrame:  job.Int(1),
		EndFrame:    job.Int(24),
		FileFormat:  job.FormatPNG,
		HighQuality: true,
	}
}

func stillJob() job.Record {
	return job.Record{
		SourceFile: "/blends/shot010.blend",
		StartFrame: job.Int(42),
		FileFormat: job.FormatEXRSingle,
	}
}

func writeFrame(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("frame"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveFirstVersionInEmptyRoot(t *testing.T) {
	root := t.TempDir()
	res, err := Resolve(animationJob(), root, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Version != 1 || res.ShotName != "shot010-hq-v01" {
		t.Fatalf("got version %d shot %q", res.Version, res.ShotName)
	}
	want := filepath.ToSlash(filepath.Join(root, "shot010-hq-v01", "shot010-hq-v01-f####.png"))
	if res.FramePathTemplate != want {
		t.Fatalf("template = %q, want %q", res.FramePathTemplate, want)
	}
	if res.Kind != job.KindAnimation {
		t.Fatalf("kind = %v", res.Kind)
	}
}

func TestResolveIncrementsAfterExistingOutput(t *testing.T) {
	root := t.TempDir()
	first, err := Resolve(animationJob(), root, false)
	if err != nil {
		t.Fatal(err)
	}
	writeFrame(t, first.FramePath(1))

	second, err := Resolve(animationJob(), root, false)
	if err != nil {
		t.Fatal(err)
	}
	if second.Version != 2 || !strings.Contains(second.FramePathTemplate, "shot010-hq-v02/shot010-hq-v02-f####.png") {
		t.Fatalf("expected v02, got %+v", second)
	}
}

func TestResolveReplayAndOverwriteTargetLatest(t *testing.T) {
	root := t.TempDir()
	for _, v := range []string{"v01", "v02"} {
		writeFrame(t, filepath.Join(root, "shot010-hq-"+v, "shot010-hq-"+v+"-f0001.png"))
	}

	replay, err := Resolve(animationJob(), root, true)
	if err != nil {
		t.Fatal(err)
	}
	if replay.Version != 2 {
		t.Fatalf("replay version = %d, want 2", replay.Version)
	}

	rec := animationJob()
	rec.Overwrite = true
	overwrite, err := Resolve(rec, root, false)
	if err != nil {
		t.Fatal(err)
	}
	if overwrite.Version != 2 || overwrite.FramePathTemplate != replay.FramePathTemplate {
		t.Fatalf("overwrite = %+v, want same as replay %+v", overwrite, replay)
	}

	fresh, err := Resolve(animationJob(), root, false)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Version != 3 {
		t.Fatalf("fresh version = %d, want 3", fresh.Version)
	}
}

func TestResolveReplayWithNoOutputStaysAtOne(t *testing.T) {
	res, err := Resolve(animationJob(), t.TempDir(), true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Version != 1 {
		t.Fatalf("version = %d, want 1", res.Version)
	}
}

func TestResolveIgnoresEmptyVersionDirectory(t *testing.T) {
	root := t.TempDir()
	writeFrame(t, filepath.Join(root, "shot010-hq-v01", "shot010-hq-v01-f0001.png"))
	if err := os.MkdirAll(filepath.Join(root, "shot010-hq-v02"), 0o755); err != nil {
		t.Fatal(err)
	}

	res, err := Resolve(animationJob(), root, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Version != 2 {
		t.Fatalf("empty v02 should be reused, got v%02d", res.Version)
	}
}

func TestResolveStill(t *testing.T) {
	root := t.TempDir()
	res, err := Resolve(stillJob(), root, false)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.ToSlash(filepath.Join(root, "stills", "shot010-pv-v01-f####.exr"))
	if res.FramePathTemplate != want {
		t.Fatalf("template = %q, want %q", res.FramePathTemplate, want)
	}
	if res.Kind != job.KindStill {
		t.Fatalf("kind = %v", res.Kind)
	}

	writeFrame(t, filepath.Join(root, "stills", "shot010-pv-v01-f0042.exr"))
	next, err := Resolve(stillJob(), root, false)
	if err != nil {
		t.Fatal(err)
	}
	if next.Version != 2 || !strings.HasSuffix(next.FramePathTemplate, "stills/shot010-pv-v02-f####.exr") {
		t.Fatalf("next still = %+v", next)
	}

	// A different frame of the same shot does not collide.
	other := stillJob()
	other.StartFrame = job.Int(43)
	res43, err := Resolve(other, root, false)
	if err != nil {
		t.Fatal(err)
	}
	if res43.Version != 1 {
		t.Fatalf("frame 43 version = %d, want 1", res43.Version)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeFrame(t, filepath.Join(root, "shot010-hq-v01", "x.png"))
	a, err := Resolve(animationJob(), root, false)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Resolve(animationJob(), root, false)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("results differ: %+v vs %+v", a, b)
	}
}

func TestResolveRejectsInvalidRange(t *testing.T) {
	rec := animationJob()
	rec.StartFrame = nil
	rec.EndFrame = job.Int(5)
	_, err := Resolve(rec, t.TempDir(), false)
	var rangeErr *job.InvalidFrameRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected InvalidFrameRangeError, got %v", err)
	}
}

func TestResolveEmptyRootUsesSourceDir(t *testing.T) {
	blendDir := t.TempDir()
	rec := animationJob()
	rec.SourceFile = filepath.Join(blendDir, "shot010.blend")
	res, err := Resolve(rec, "", false)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(res.FramePathTemplate, filepath.ToSlash(blendDir)+"/shot010-hq-v01/") {
		t.Fatalf("template %q not under source dir", res.FramePathTemplate)
	}
}

type failingProber struct{ err error }

func (p failingProber) Exists(string) (bool, error) { return false, p.err }
func (p failingProber) IsNonEmptyDir(string) (bool, error) { return false, p.err }

func TestResolvePropagatesProbeErrors(t *testing.T) {
	cause := os.ErrPermission
	r := NewResolver(WithProber(failingProber{err: cause}))
	_, err := r.Resolve(animationJob(), "/renders", false)
	var probeErr *FilesystemProbeError
	if !errors.As(err, &probeErr) {
		t.Fatalf("expected FilesystemProbeError, got %v", err)
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(probeErr.Path, "v1000") {
		t.Fatalf("scan should start at the top version, probed %q", probeErr.Path)
	}
}

type recordingProber struct {
	existing map[string]bool
	probed   []string
}

func (p *recordingProber) Exists(path string) (bool, error) {
	p.probed = append(p.probed, path)
	return p.existing[path], nil
}

func (p *recordingProber) IsNonEmptyDir(path string) (bool, error) {
	p.probed = append(p.probed, path)
	return p.existing[path], nil
}

func TestResolveScansDownwardAndStopsAtHighest(t *testing.T) {
	root := filepath.Join("/renders")
	probe := &recordingProber{existing: map[string]bool{
		filepath.Join(root, "shot010-hq-v07"): true,
		filepath.Join(root, "shot010-hq-v03"): true,
	}}
	res, err := NewResolver(WithProber(probe)).Resolve(animationJob(), root, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Version != 8 {
		t.Fatalf("version = %d, want 8", res.Version)
	}
	if got := len(probe.probed); got != MaxVersion-7+1 {
		t.Fatalf("probed %d paths, want %d", got, MaxVersion-7+1)
	}
}
