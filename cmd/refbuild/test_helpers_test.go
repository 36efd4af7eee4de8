package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	configPath string
	outputRoot string
	stateDir   string
}

// setupCLITestEnv writes a config that keeps every path under a temp dir.
// Only the listed index builders are enabled, none by default, so commands
// never reach for external tools unless a test asks for them.
func setupCLITestEnv(t *testing.T, mirror string, enabled ...string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("REFBUILD_TOKEN", "")

	if mirror == "" {
		mirror = "https://ftp.ensembl.org/pub"
	}
	env := &cliTestEnv{
		configPath: filepath.Join(home, ".config", "refbuild", "config.toml"),
		outputRoot: filepath.Join(base, "references"),
		stateDir:   filepath.Join(base, "state"),
	}
	content := fmt.Sprintf(`[paths]
output_root = %q
state_dir = %q
min_free_gb = 0

[transfer]
ftp_base_url = %q
progress = false

[indexers]
enabled = [%s]

[logging]
level = "error"
`, env.outputRoot, env.stateDir, mirror, tomlStrings(enabled))

	if err := os.MkdirAll(filepath.Dir(env.configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func tomlStrings(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, fmt.Sprintf("%q", v))
	}
	return strings.Join(quoted, ", ")
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\noutput:\n%s", needle, haystack)
	}
}
