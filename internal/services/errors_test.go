package services_test

import (
	"errors"
	"strings"
	"testing"

	"refbuild/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransfer, "fetch", "genome", "download failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransfer) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"fetch", "genome", "download failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrUnsupportedRelease, "", "", "", nil)
	if !errors.Is(err, services.ErrUnsupportedRelease) {
		t.Fatalf("expected marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestIsConfiguration(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{services.Wrap(services.ErrUnknownSpecies, "registry", "resolve", "", nil), true},
		{services.Wrap(services.ErrUnsupportedRelease, "resolver", "endpoint", "", nil), true},
		{services.Wrap(services.ErrConfiguration, "config", "", "", nil), true},
		{services.Wrap(services.ErrTransfer, "fetch", "", "", nil), false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := services.IsConfiguration(tc.err); got != tc.want {
			t.Errorf("IsConfiguration(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestKind(t *testing.T) {
	if got := services.Kind(services.Wrap(services.ErrMalformedReference, "split", "", "", nil)); got != "malformed_reference" {
		t.Fatalf("unexpected kind %q", got)
	}
	if got := services.Kind(services.Wrap(services.ErrFilesystem, "split", "rename sequence file", "1.fa", errors.New("no such file"))); got != "filesystem" {
		t.Fatalf("unexpected kind %q", got)
	}
	if got := services.Kind(errors.New("plain")); got != "external_tool" {
		t.Fatalf("unexpected kind for plain error %q", got)
	}
	if got := services.Kind(nil); got != "" {
		t.Fatalf("expected empty kind for nil, got %q", got)
	}
}
