package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputRoot string `toml:"output_root"`
	StateDir   string `toml:"state_dir"`
	// MinFreeGB is the free space preflight requires on output_root; 0 disables the check.
	MinFreeGB  int    `toml:"min_free_gb"`
}

// Transfer contains configuration for the HTTPS file transfer collaborator.
type Transfer struct {
	Token          string `toml:"token"`
	FTPBaseURL     string `toml:"ftp_base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Progress       bool   `toml:"progress"`
	UserAgent      string `toml:"user_agent"`
}

// Indexers contains configuration for the external index builders.
type Indexers struct {
	Enabled       []string `toml:"enabled"`
	Threads       int      `toml:"threads"`
	Overhang      int      `toml:"overhang"`
	Bowtie2Binary string   `toml:"bowtie2_binary"`
	BWABinary     string   `toml:"bwa_binary"`
	STARBinary    string   `toml:"star_binary"`
	RSEMBinary    string   `toml:"rsem_binary"`
}

// Orthologs lists the partner species ortholog tables are produced for.
type Orthologs struct {
	Partners []string `toml:"partners"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for refbuild.
//
// Configuration sections by subsystem:
//   - Paths: bundle output root and state directory (ledger, logs)
//   - Transfer: download credentials, mirror and timeouts
//   - Indexers: enabled builders, thread count, STAR overhang, binaries
//   - Orthologs: partner species for ortholog tables
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Transfer  Transfer  `toml:"transfer"`
	Indexers  Indexers  `toml:"indexers"`
	Orthologs Orthologs `toml:"orthologs"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("refbuild.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output root and state directory.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputRoot, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LedgerPath returns the run ledger database location.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.StateDir, "ledger.db")
}

// LogPath returns the log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.StateDir, "refbuild.log")
}

// IndexerBinary returns the executable configured for the named builder.
func (c *Config) IndexerBinary(name string) string {
	switch name {
	case IndexerBowtie2:
		return c.Indexers.Bowtie2Binary
	case IndexerBWA:
		return c.Indexers.BWABinary
	case IndexerSTAR:
		return c.Indexers.STARBinary
	case IndexerRSEM:
		return c.Indexers.RSEMBinary
	default:
		return ""
	}
}

// IndexerEnabled reports whether the named builder should run.
func (c *Config) IndexerEnabled(name string) bool {
	for _, enabled := range c.Indexers.Enabled {
		if enabled == name {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
