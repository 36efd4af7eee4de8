package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"refbuild/internal/config"
)

// Requirement defines an external dependency refbuild relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// IndexerRequirements lists the executables for every enabled index builder.
func IndexerRequirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		return nil
	}
	descriptions := map[string]string{
		config.IndexerBowtie2: "Builds the bowtie2 index",
		config.IndexerBWA:     "Builds the BWA index",
		config.IndexerSTAR:    "Generates the STAR genome directory",
		config.IndexerRSEM:    "Prepares the RSEM transcript reference",
	}
	requirements := make([]Requirement, 0, len(cfg.Indexers.Enabled))
	for _, name := range config.KnownIndexers() {
		if !cfg.IndexerEnabled(name) {
			continue
		}
		requirements = append(requirements, Requirement{
			Name:        name,
			Command:     cfg.IndexerBinary(name),
			Description: descriptions[name],
		})
	}
	return requirements
}

// Missing returns the required dependencies that are not available.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
