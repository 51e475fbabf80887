package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateConvert(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScan() error {
	if len(c.Scan.SourceExtensions) == 0 {
		return errors.New("scan.source_extensions must list at least one extension")
	}
	if strings.ContainsAny(c.Scan.OutputSubdir, `/\`) {
		return fmt.Errorf("scan.output_subdir must be a bare directory name, got %q", c.Scan.OutputSubdir)
	}
	return nil
}

func (c *Config) validateConvert() error {
	if c.Convert.Workers > 256 {
		return fmt.Errorf("convert.workers %d is unreasonably large", c.Convert.Workers)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
