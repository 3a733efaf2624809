package services_test

import (
	"errors"
	"strings"
	"testing"

	"renderrob/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "blender", "launch", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"blender", "launch", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransientMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestHintMapping(t *testing.T) {
	cases := map[error]string{
		services.Wrap(services.ErrConfiguration, "config", "", "", nil): "config validate",
		services.Wrap(services.ErrValidation, "job", "", "", nil):       "job file",
		services.Wrap(services.ErrNotFound, "job", "", "", nil):         "exists",
		errors.New("plain"): "check logs",
	}
	for err, want := range cases {
		if got := services.Hint(err); !strings.Contains(got, want) {
			t.Fatalf("Hint(%v) = %q, want substring %q", err, got, want)
		}
	}
}
