package ensembl_test

import (
	"errors"
	"testing"

	"refbuild/internal/ensembl"
	"refbuild/internal/services"
)

func TestResolveEndpointKnownReleases(t *testing.T) {
	cases := map[int]string{
		67:  "may2012.archive.ensembl.org",
		82:  "sep2015.archive.ensembl.org",
		86:  "oct2016.archive.ensembl.org",
		110: "jul2023.archive.ensembl.org",
	}
	for release, want := range cases {
		got, err := ensembl.ResolveEndpoint(release)
		if err != nil {
			t.Fatalf("ResolveEndpoint(%d): %v", release, err)
		}
		if got != want {
			t.Errorf("ResolveEndpoint(%d) = %q, want %q", release, got, want)
		}
	}
}

func TestResolveEndpointUnsupported(t *testing.T) {
	for _, release := range []int{-1, 0, 54, 66, 111, 250} {
		host, err := ensembl.ResolveEndpoint(release)
		if err == nil {
			t.Fatalf("expected error for release %d, got host %q", release, host)
		}
		if !errors.Is(err, services.ErrUnsupportedRelease) {
			t.Fatalf("expected ErrUnsupportedRelease for %d, got %v", release, err)
		}
		if host != "" {
			t.Fatalf("expected empty host for %d", release)
		}
	}
}

func TestReleasesContiguous(t *testing.T) {
	releases := ensembl.Releases()
	first, last := ensembl.ReleaseRange()
	if first != 67 || last != 110 {
		t.Fatalf("unexpected range %d..%d", first, last)
	}
	if len(releases) != last-first+1 {
		t.Fatalf("expected contiguous releases, got %d entries", len(releases))
	}
	for i, release := range releases {
		if release != first+i {
			t.Fatalf("release gap at index %d: %d", i, release)
		}
	}
}
