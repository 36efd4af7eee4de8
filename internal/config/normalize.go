package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTransfer()
	c.normalizeIndexers()
	c.normalizeOrthologs()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputRoot) == "" {
		c.Paths.OutputRoot = defaultOutputRoot
	}
	if c.Paths.OutputRoot, err = expandPath(c.Paths.OutputRoot); err != nil {
		return fmt.Errorf("paths.output_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTransfer() {
	c.Transfer.Token = strings.TrimSpace(c.Transfer.Token)
	if c.Transfer.Token == "" {
		if value, ok := os.LookupEnv("REFBUILD_TOKEN"); ok {
			c.Transfer.Token = strings.TrimSpace(value)
		}
	}
	c.Transfer.FTPBaseURL = strings.TrimRight(strings.TrimSpace(c.Transfer.FTPBaseURL), "/")
	if c.Transfer.FTPBaseURL == "" {
		c.Transfer.FTPBaseURL = defaultFTPBaseURL
	}
	c.Transfer.UserAgent = strings.TrimSpace(c.Transfer.UserAgent)
	if c.Transfer.UserAgent == "" {
		c.Transfer.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeIndexers() {
	enabled := make([]string, 0, len(c.Indexers.Enabled))
	seen := make(map[string]struct{}, len(c.Indexers.Enabled))
	for _, name := range c.Indexers.Enabled {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		enabled = append(enabled, name)
	}
	c.Indexers.Enabled = enabled

	c.Indexers.Bowtie2Binary = defaultIfBlank(c.Indexers.Bowtie2Binary, defaultBowtie2Binary)
	c.Indexers.BWABinary = defaultIfBlank(c.Indexers.BWABinary, defaultBWABinary)
	c.Indexers.STARBinary = defaultIfBlank(c.Indexers.STARBinary, defaultSTARBinary)
	c.Indexers.RSEMBinary = defaultIfBlank(c.Indexers.RSEMBinary, defaultRSEMBinary)
}

func (c *Config) normalizeOrthologs() {
	partners := make([]string, 0, len(c.Orthologs.Partners))
	for _, key := range c.Orthologs.Partners {
		key = strings.ToLower(strings.TrimSpace(key))
		if key != "" {
			partners = append(partners, key)
		}
	}
	c.Orthologs.Partners = partners
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func defaultIfBlank(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
