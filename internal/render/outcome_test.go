package render

import (
	"testing"
	"time"

	"renderrob/internal/job"
	"renderrob/internal/services/blender"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		exit blender.Exit
		want Status
		ok   bool
	}{
		{blender.Exit{Code: 0}, StatusGreen, true},
		{blender.Exit{Code: 1}, StatusGreen, true},
		{blender.Exit{Code: 987}, StatusYellow, true},
		{blender.Exit{Code: 219}, StatusYellow, true},
		{blender.Exit{Code: 62097}, StatusRed, true},
		{blender.Exit{Code: 145}, StatusRed, true},
		{blender.Exit{Code: 11}, StatusRed, true},
		{blender.Exit{Code: -1, Signaled: true}, StatusRed, true},
		{blender.Exit{Code: 42}, StatusRed, false},
		{blender.Exit{Code: 664}, StatusRed, false},
	}
	for _, tc := range cases {
		got, ok := Classify(tc.exit)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("Classify(%+v) = %v/%v, want %v/%v", tc.exit, got, ok, tc.want, tc.ok)
		}
	}
}

func TestColors(t *testing.T) {
	a := job.Record{Active: true, SourceFile: "a.blend"}
	b := job.Record{Active: false, SourceFile: "b.blend"}
	c := job.Record{Active: true, SourceFile: "c.blend"}
	d := job.Record{Active: true, SourceFile: "d.blend"}
	e := job.Record{Active: true, SourceFile: "e.blend"}
	records := []job.Record{a, b, a, c, d, e}
	outcomes := []Outcome{
		{Key: a.Key(), Status: StatusGreen},
		{Key: b.Key(), Status: StatusRed},
		{Key: a.Key(), Status: StatusRed},
		{Key: c.Key(), Status: StatusGreen},
		{Key: d.Key(), Status: StatusYellow},
		{Key: d.Key(), Status: StatusGreen},
	}
	got := Colors(records, outcomes)
	want := []Color{ColorRed, ColorNeutral, ColorRed, ColorGreen, ColorYellow, ColorNone}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("color[%d] = %v, want %v (all %v)", i, got[i], want[i], got)
		}
	}
}

func TestSessionProgress(t *testing.T) {
	records := []job.Record{{Active: true}, {Active: true}, {Active: false}, {Active: true}, {Active: true}}
	s := newSession("id", records, time.Time{})
	if s.progress() != 0 {
		t.Fatalf("initial progress = %d", s.progress())
	}
	s.record(Outcome{Status: StatusGreen})
	s.record(Outcome{Status: StatusSkipped})
	s.record(Outcome{Status: StatusRed})
	if got := s.progress(); got != 50 {
		t.Fatalf("progress = %d, want 50", got)
	}
	s.quitCredit = true
	if got := s.progress(); got != 75 {
		t.Fatalf("progress with quit credit = %d, want 75", got)
	}
	s.record(Outcome{Status: StatusGreen})
	if got := s.progress(); got != 75 {
		t.Fatalf("quit credit must not double count, got %d", got)
	}
	if newSession("id", nil, time.Time{}).progress() != 100 {
		t.Fatal("zero active jobs must report 100")
	}
}

func TestParseStatusRoundTrip(t *testing.T) {
	for _, st := range []Status{StatusGreen, StatusYellow, StatusRed, StatusSkipped} {
		got, ok := ParseStatus(st.String())
		if !ok || got != st {
			t.Fatalf("ParseStatus(%q) = %v/%v", st.String(), got, ok)
		}
	}
	if _, ok := ParseStatus("purple"); ok {
		t.Fatal("unknown status parsed")
	}
}
