package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// rsemCompanions are the helpers rsem-prepare-reference executes.
var rsemCompanions = []string{
	"rsem-extract-reference-transcripts",
	"rsem-synthesis-reference-transcripts",
	"rsem-preref",
}

// CheckRSEMCompanions reports the helper programs rsem-prepare-reference
// will execute.
//
// rsem-prepare-reference runs its helpers from its own directory and only
// falls back to PATH when they are absent there. The lookup mirrors that so
// check output matches what the build will do.
func CheckRSEMCompanions(rsemCommand string) []Status {
	dir := ""
	if binary := strings.TrimSpace(rsemCommand); binary != "" {
		if resolved, err := exec.LookPath(binary); err == nil {
			dir = filepath.Dir(resolved)
		}
	}

	results := make([]Status, 0, len(rsemCompanions))
	for _, name := range rsemCompanions {
		results = append(results, resolveCompanion(dir, name))
	}
	return results
}

func resolveCompanion(dir, name string) Status {
	result := Status{
		Name:        name,
		Description: "Invoked by rsem-prepare-reference",
	}
	if dir != "" {
		candidate := filepath.Join(dir, executableName(name))
		if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
			result.Command = candidate
			result.Available = true
			return result
		}
	}
	if resolved, err := exec.LookPath(name); err == nil {
		result.Command = resolved
		result.Available = true
		return result
	}
	result.Command = name
	result.Detail = fmt.Sprintf("binary %q not found", name)
	return result
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
