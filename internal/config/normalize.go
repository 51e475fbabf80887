package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScan()
	c.normalizeConvert()
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeScan() {
	if len(c.Scan.SourceExtensions) == 0 {
		c.Scan.SourceExtensions = defaultSourceExtensions()
	}
	normalized := make([]string, 0, len(c.Scan.SourceExtensions))
	for _, ext := range c.Scan.SourceExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	c.Scan.SourceExtensions = normalized

	c.Scan.OutputSubdir = strings.TrimSpace(c.Scan.OutputSubdir)
	if c.Scan.OutputSubdir == "" {
		c.Scan.OutputSubdir = defaultOutputSubdir
	}
}

func (c *Config) normalizeConvert() {
	if c.Convert.Workers < 0 {
		c.Convert.Workers = 0
	}
	c.Convert.DefaultPreset = strings.ToLower(strings.TrimSpace(c.Convert.DefaultPreset))
	if c.Convert.DefaultPreset == "" {
		c.Convert.DefaultPreset = defaultPreset
	}
}

func (c *Config) normalizeTools() {
	c.Tools.DecoderBinary = strings.TrimSpace(c.Tools.DecoderBinary)
	if c.Tools.DecoderBinary == "" {
		c.Tools.DecoderBinary = defaultDecoderBinary
	}
	c.Tools.ExiftoolBinary = strings.TrimSpace(c.Tools.ExiftoolBinary)
	if c.Tools.ExiftoolBinary == "" {
		c.Tools.ExiftoolBinary = defaultExiftool
	}
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

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return filepath.Abs(trimmed)
}
