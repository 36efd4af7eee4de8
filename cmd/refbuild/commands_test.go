package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"refbuild/internal/ledger"
	"refbuild/internal/services"
)

func TestSpeciesListsRegistry(t *testing.T) {
	out, _, err := runCLI(t, []string{"species"}, "")
	if err != nil {
		t.Fatalf("species: %v", err)
	}
	for _, want := range []string{"castaneus", "Castaneus", "Mus musculus casteij", "CAST_EiJ_v1", "toplevel", "mmcasteij", "86", "primary_assembly"} {
		requireContains(t, out, want)
	}
}

func TestReleasesListsHosts(t *testing.T) {
	out, _, err := runCLI(t, []string{"releases"}, "")
	if err != nil {
		t.Fatalf("releases: %v", err)
	}
	requireContains(t, out, "sep2015.archive.ensembl.org")
	requireContains(t, out, "may2012.archive.ensembl.org")
}

func TestPlanPrintsResolvedBundle(t *testing.T) {
	env := setupCLITestEnv(t, "")

	out, _, err := runCLI(t, []string{"plan", "--species", "mouse", "--release", "82", "--queries"}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "sep2015.archive.ensembl.org")
	requireContains(t, out, "GRCm38")
	requireContains(t, out, filepath.Join(env.outputRoot, "mouse", "release-82"))
	requireContains(t, out, "human_orthologs")
	requireContains(t, out, "query=")
}

func TestPlanShowsIndexerCommands(t *testing.T) {
	env := setupCLITestEnv(t, "", "bwa", "star")

	out, _, err := runCLI(t, []string{"plan", "--species", "mouse", "--release", "82"}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	bundle := filepath.Join(env.outputRoot, "mouse", "release-82")
	requireContains(t, out, "bwa index -p "+filepath.Join(bundle, "bwa", "GRCm38.82", "GRCm38")+" "+filepath.Join(bundle, "mouse_primary_assembly.fa"))
	requireContains(t, out, "STAR --runMode genomeGenerate")
	requireContains(t, out, filepath.Join(bundle, "primary_assembly", "*.fa"))
	if strings.Contains(out, "bowtie2-build") {
		t.Fatalf("disabled builder listed:\n%s", out)
	}
}

func TestPlanRejectsUnknownSpecies(t *testing.T) {
	env := setupCLITestEnv(t, "")

	_, _, err := runCLI(t, []string{"plan", "--species", "unicorn", "--release", "82"}, env.configPath)
	if !errors.Is(err, services.ErrUnknownSpecies) {
		t.Fatalf("expected ErrUnknownSpecies, got %v", err)
	}
	_, _, err = runCLI(t, []string{"plan", "--species", "mouse", "--release", "12"}, env.configPath)
	if !errors.Is(err, services.ErrUnsupportedRelease) {
		t.Fatalf("expected ErrUnsupportedRelease, got %v", err)
	}
}

func requireAbsent(t *testing.T, paths ...string) {
	t.Helper()
	for _, path := range paths {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("expected %s to be absent, stat err=%v", path, err)
		}
	}
}

func TestBuildResolutionFailureLeavesNoDirectories(t *testing.T) {
	cases := []struct {
		name   string
		args   []string
		marker error
	}{
		{"unknown species", []string{"build", "--species", "nope", "--release", "82"}, services.ErrUnknownSpecies},
		{"unsupported release", []string{"build", "--species", "mouse", "--release", "12"}, services.ErrUnsupportedRelease},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := setupCLITestEnv(t, "")
			_, _, err := runCLI(t, tc.args, env.configPath)
			if !errors.Is(err, tc.marker) {
				t.Fatalf("expected %v, got %v", tc.marker, err)
			}
			requireAbsent(t, env.outputRoot, env.stateDir)
		})
	}
}

func TestPlanDoesNotCreateDirectories(t *testing.T) {
	env := setupCLITestEnv(t, "")
	if _, _, err := runCLI(t, []string{"plan", "--species", "mouse", "--release", "82"}, env.configPath); err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireAbsent(t, env.outputRoot, env.stateDir)
}

func TestBuildRequiresSpeciesAndRelease(t *testing.T) {
	env := setupCLITestEnv(t, "")
	if _, _, err := runCLI(t, []string{"build", "--species", "mouse"}, env.configPath); err == nil {
		t.Fatal("expected missing --release to fail")
	}
}

func TestBuildRejectsNegativeThreads(t *testing.T) {
	env := setupCLITestEnv(t, "")
	_, _, err := runCLI(t, []string{"build", "--species", "mouse", "--release", "82", "--threads", "-2"}, env.configPath)
	if !services.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestHistoryEmptyAndWithRuns(t *testing.T) {
	env := setupCLITestEnv(t, "")

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded")

	store, err := ledger.Open(filepath.Join(env.stateDir, "ledger.db"))
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	ctx := context.Background()
	if _, err := store.StartRun(ctx, ledger.Run{ID: "run-1", Species: "mouse", Release: 82, GTFRelease: 82, Assembly: "GRCm38", AssemblyKind: "primary_assembly"}); err != nil {
		t.Fatalf("start run: %v", err)
	}
	if err := store.StageStarted(ctx, "run-1", "fetch", 0); err != nil {
		t.Fatalf("stage started: %v", err)
	}
	if err := store.StageFinished(ctx, "run-1", "fetch", ledger.StatusFailed, "gtf missing"); err != nil {
		t.Fatalf("stage finished: %v", err)
	}
	if err := store.FinishRun(ctx, "run-1", ledger.StatusFailed, errors.New("transfer failed")); err != nil {
		t.Fatalf("finish run: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close ledger: %v", err)
	}

	out, _, err = runCLI(t, []string{"history", "--species", "mouse"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "run-1")
	requireContains(t, out, "failed")

	out, _, err = runCLI(t, []string{"history", "run-1"}, env.configPath)
	if err != nil {
		t.Fatalf("history run-1: %v", err)
	}
	requireContains(t, out, "transfer failed")
	requireContains(t, out, "[ERROR] gtf missing")

	if _, _, err := runCLI(t, []string{"history", "missing"}, env.configPath); err == nil {
		t.Fatal("expected unknown run to fail")
	}
}

func TestCheckReportsMirrorAndPaths(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	env := setupCLITestEnv(t, srv.URL)
	t.Setenv("REFBUILD_TOKEN", "secret")

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "(reachable)")
	requireContains(t, out, "none enabled")
}

func TestCheckFailsWhenMirrorRejectsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()
	env := setupCLITestEnv(t, srv.URL)

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "1 check failed") {
		t.Fatalf("expected one failed check, got %v", err)
	}
	requireContains(t, out, "auth failed")

	if _, _, err := runCLI(t, []string{"check", "--offline"}, env.configPath); err != nil {
		t.Fatalf("offline check: %v", err)
	}
}
