package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path, and its parent directories, with the given content.
func WriteFile(t testing.TB, path string, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteBlend creates a placeholder blend file named name in dir and returns
// its path.
func WriteBlend(t testing.TB, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	WriteFile(t, path, "BLENDER-v420")
	return path
}

// WriteFrames creates placeholder rendered frames inside dir.
func WriteFrames(t testing.TB, dir string, names ...string) {
	t.Helper()

	for _, name := range names {
		WriteFile(t, filepath.Join(dir, name), "frame")
	}
}
