package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "scene.blend")
	if err := os.WriteFile(file, []byte("blend"), 0o644); err != nil {
		t.Fatal(err)
	}

	ok, err := Exists(file)
	if err != nil || !ok {
		t.Fatalf("Exists(file) = %v, %v", ok, err)
	}
	ok, err = Exists(filepath.Join(dir, "missing"))
	if err != nil || ok {
		t.Fatalf("Exists(missing) = %v, %v", ok, err)
	}
}

func TestIsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.blend")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, err := IsFile(file); err != nil || !ok {
		t.Fatalf("IsFile(file) = %v, %v", ok, err)
	}
	if ok, err := IsFile(dir); err != nil || ok {
		t.Fatalf("IsFile(dir) = %v, %v", ok, err)
	}
	if ok, err := IsFile(filepath.Join(dir, "nope")); err != nil || ok {
		t.Fatalf("IsFile(missing) = %v, %v", ok, err)
	}
}

func TestIsNonEmptyDir(t *testing.T) {
	root := t.TempDir()
	empty := filepath.Join(root, "empty")
	full := filepath.Join(root, "full")
	for _, dir := range []string{empty, full} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(full, "frame_0001.png"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(root, "plain.txt")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		path string
		want bool
	}{
		{"empty", empty, false},
		{"full", full, true},
		{"missing", filepath.Join(root, "missing"), false},
		{"file", file, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := IsNonEmptyDir(tc.path)
			if err != nil {
				t.Fatalf("IsNonEmptyDir: %v", err)
			}
			if got != tc.want {
				t.Fatalf("IsNonEmptyDir(%s) = %v, want %v", tc.path, got, tc.want)
			}
		})
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "jobs.toml")

	if err := WriteFileAtomic(path, []byte("first"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("second"), 0o600); err != nil {
		t.Fatalf("second write: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Fatalf("content = %q, want second", got)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files cleaned up, found %d entries", len(entries))
	}
}
