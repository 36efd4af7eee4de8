package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Paths.MinFreeGB < 0 {
		return errors.New("paths.min_free_gb must not be negative")
	}
	if err := c.validateTransfer(); err != nil {
		return err
	}
	if err := c.validateIndexers(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTransfer() error {
	if c.Transfer.TimeoutSeconds <= 0 {
		return errors.New("transfer.timeout_seconds must be positive")
	}
	parsed, err := url.Parse(c.Transfer.FTPBaseURL)
	if err != nil {
		return fmt.Errorf("transfer.ftp_base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("transfer.ftp_base_url must use http or https, got %q", c.Transfer.FTPBaseURL)
	}
	return nil
}

func (c *Config) validateIndexers() error {
	if c.Indexers.Threads <= 0 {
		return errors.New("indexers.threads must be positive")
	}
	if c.Indexers.Overhang <= 0 {
		return errors.New("indexers.overhang must be positive")
	}
	known := make(map[string]struct{})
	for _, name := range KnownIndexers() {
		known[name] = struct{}{}
	}
	for _, name := range c.Indexers.Enabled {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("indexers.enabled: unsupported builder %q", name)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
