package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"refbuild/internal/config"
)

func TestLoadDefaultConfigUsesEnvTokenAndExpandsPaths(t *testing.T) {
	t.Setenv("REFBUILD_TOKEN", " secret-token ")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if want := filepath.Join(tempHome, "references"); cfg.Paths.OutputRoot != want {
		t.Fatalf("unexpected output root: got %q want %q", cfg.Paths.OutputRoot, want)
	}
	if want := filepath.Join(tempHome, ".local", "share", "refbuild"); cfg.Paths.StateDir != want {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, want)
	}
	if cfg.Transfer.Token != "secret-token" {
		t.Fatalf("expected token from env, got %q", cfg.Transfer.Token)
	}
	if cfg.Transfer.FTPBaseURL != "https://ftp.ensembl.org/pub" {
		t.Fatalf("unexpected ftp base: %q", cfg.Transfer.FTPBaseURL)
	}
	if !reflect.DeepEqual(cfg.Indexers.Enabled, config.KnownIndexers()) {
		t.Fatalf("expected all indexers enabled by default, got %v", cfg.Indexers.Enabled)
	}
	if !reflect.DeepEqual(cfg.Orthologs.Partners, []string{"human", "mouse"}) {
		t.Fatalf("unexpected default partners %v", cfg.Orthologs.Partners)
	}
	if cfg.LedgerPath() != filepath.Join(cfg.Paths.StateDir, "ledger.db") {
		t.Fatalf("unexpected ledger path %q", cfg.LedgerPath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputRoot, cfg.Paths.StateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "refbuild.toml")

	type payload struct {
		Paths struct {
			OutputRoot string `toml:"output_root"`
		} `toml:"paths"`
		Transfer struct {
			Token      string `toml:"token"`
			FTPBaseURL string `toml:"ftp_base_url"`
		} `toml:"transfer"`
		Indexers struct {
			Enabled []string `toml:"enabled"`
			Threads int      `toml:"threads"`
		} `toml:"indexers"`
		Orthologs struct {
			Partners []string `toml:"partners"`
		} `toml:"orthologs"`
	}
	custom := payload{}
	custom.Paths.OutputRoot = filepath.Join(tempDir, "refs")
	custom.Transfer.Token = "abc123"
	custom.Transfer.FTPBaseURL = "http://mirror.example/pub/"
	custom.Indexers.Enabled = []string{"STAR", "bwa", "star"}
	custom.Indexers.Threads = 16
	custom.Orthologs.Partners = []string{" Rat "}
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Transfer.Token != "abc123" {
		t.Fatalf("expected token from file, got %q", cfg.Transfer.Token)
	}
	if cfg.Transfer.FTPBaseURL != "http://mirror.example/pub" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Transfer.FTPBaseURL)
	}
	if !reflect.DeepEqual(cfg.Indexers.Enabled, []string{"star", "bwa"}) {
		t.Fatalf("expected normalized indexer list, got %v", cfg.Indexers.Enabled)
	}
	if !cfg.IndexerEnabled("star") || cfg.IndexerEnabled("rsem") {
		t.Fatalf("unexpected IndexerEnabled results for %v", cfg.Indexers.Enabled)
	}
	if cfg.Indexers.Threads != 16 {
		t.Fatalf("expected threads override, got %d", cfg.Indexers.Threads)
	}
	if cfg.Indexers.Overhang != 100 {
		t.Fatalf("expected default overhang, got %d", cfg.Indexers.Overhang)
	}
	if !reflect.DeepEqual(cfg.Orthologs.Partners, []string{"rat"}) {
		t.Fatalf("unexpected partners %v", cfg.Orthologs.Partners)
	}
	if cfg.IndexerBinary("star") != "STAR" || cfg.IndexerBinary("unknown") != "" {
		t.Fatalf("unexpected indexer binaries")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"unknown indexer": "[indexers]\nenabled = [\"hisat2\"]\n",
		"zero threads":    "[indexers]\nthreads = 0\n",
		"bad scheme":      "[transfer]\nftp_base_url = \"ftp://ftp.ensembl.org/pub\"\n",
		"bad log format":  "[logging]\nformat = \"xml\"\n",
		"unknown field":   "[paths]\nlibrary_dir = \"/tmp\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "refbuild.toml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[indexers]") {
		t.Fatalf("sample missing indexers section")
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Indexers.Threads != 4 {
		t.Fatalf("unexpected threads from sample: %d", cfg.Indexers.Threads)
	}
}
