package shotpath

import (
	"testing"

	"renderrob/internal/job"
)

func TestNameOmitsDefaults(t *testing.T) {
	rec := job.Record{
		SourceFile:  "/blends/shot010.blend",
		Camera:      "Camera",
		Scene:       "Scene",
		ViewLayers:  []string{"View Layer"},
		HighQuality: true,
	}
	if got := Name(rec); got != "shot010-hq-v$$" {
		t.Fatalf("Name = %q, want shot010-hq-v$$", got)
	}
}

func TestNameIncludesNonDefaults(t *testing.T) {
	rec := job.Record{
		SourceFile: "shot010.blend",
		Camera:     "Camera.001",
		Scene:      "Scene.001",
		ViewLayers: []string{"View Layer", "View Layer.001"},
	}
	want := "shot010-Cam.001-Sc.001-Vl+Vl.001-pv-v$$"
	if got := Name(rec); got != want {
		t.Fatalf("Name = %q, want %q", got, want)
	}
}

func TestNameCases(t *testing.T) {
	cases := []struct {
		name string
		rec  job.Record
		want string
	}{
		{
			name: "empty identity fields dropped",
			rec:  job.Record{SourceFile: "a.blend"},
			want: "a-pv-v$$",
		},
		{
			name: "default camera is case-insensitive",
			rec:  job.Record{SourceFile: "a.blend", Camera: "CAMERA"},
			want: "a-pv-v$$",
		},
		{
			name: "custom names lower-cased",
			rec:  job.Record{SourceFile: "a.blend", Camera: "Closeup", Scene: "Main"},
			want: "a-closeup-main-pv-v$$",
		},
		{
			name: "spaces become underscores",
			rec:  job.Record{SourceFile: "my shot.blend", Camera: "Wide Camera", ViewLayers: []string{"Back Ground"}},
			want: "my_shot-wide_Cam-back_ground-pv-v$$",
		},
		{
			name: "only extension stripped",
			rec:  job.Record{SourceFile: "shot.v2.blend", HighQuality: true},
			want: "shot.v2-hq-v$$",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Name(tc.rec); got != tc.want {
				t.Fatalf("Name = %q, want %q", got, tc.want)
			}
		})
	}
}
