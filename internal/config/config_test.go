package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize default config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate default config: %v", err)
	}
	if cfg.Scan.OutputSubdir != "converted" {
		t.Fatalf("unexpected output subdir %q", cfg.Scan.OutputSubdir)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatalf("expected missing config file at %s", resolved)
	}
	if cfg.Convert.DefaultPreset != "standard" {
		t.Fatalf("expected default preset, got %q", cfg.Convert.DefaultPreset)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
state_dir = "` + filepath.Join(dir, "state") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"
api_bind = "127.0.0.1:0"

[scan]
source_extensions = ["ARW", ".dng"]
output_subdir = "jpeg"

[convert]
workers = 3
default_preset = "Vivid"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if got := cfg.Scan.SourceExtensions; len(got) != 2 || got[0] != ".arw" || got[1] != ".dng" {
		t.Fatalf("extensions not normalized: %v", got)
	}
	if cfg.Convert.Workers != 3 {
		t.Fatalf("workers = %d, want 3", cfg.Convert.Workers)
	}
	if cfg.Convert.DefaultPreset != "vivid" {
		t.Fatalf("preset not lowercased: %q", cfg.Convert.DefaultPreset)
	}
	if cfg.Scan.OutputSubdir != "jpeg" {
		t.Fatalf("output subdir = %q", cfg.Scan.OutputSubdir)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Scan.OutputSubdir = "a/b"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for slashed output_subdir")
	}

	cfg = Default()
	cfg.Logging.Format = "yaml"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected logging.format error, got %v", err)
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	got, err := expandPath("~/photos")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if got != filepath.Join(home, "photos") {
		t.Fatalf("expanded to %q", got)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected overwrite refusal")
	}
}
