// Package exiftool wraps the exiftool binary for cross-format metadata
// transfer. Copying all recognized tag groups from a RAW source onto the
// rendered JPEG keeps camera settings, timestamps, and GPS data with the
// output; a copy failure is always non-fatal to the conversion itself.
package exiftool

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"spectrum/internal/services"
)

var commandContext = exec.CommandContext

// Copier describes metadata transfer behaviour.
type Copier interface {
	Copy(ctx context.Context, sourcePath, destPath string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI invokes exiftool for each metadata copy.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "exiftool"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Copy transfers all writable tags from sourcePath to destPath.
//
// Flags: -all copies every writable tag with exiftool remapping groups for
// the destination format, -unsafe includes MakerNotes and proprietary tags,
// -m tolerates the minor warnings cross-format copies produce, and
// -overwrite_original avoids backup files next to the output.
func (c *CLI) Copy(ctx context.Context, sourcePath, destPath string) error {
	if strings.TrimSpace(sourcePath) == "" || strings.TrimSpace(destPath) == "" {
		return services.Wrap(services.ErrMetadata, "exiftool", "copy", "source and destination paths required", nil)
	}

	args := []string{
		"-TagsFromFile", sourcePath,
		"-all",
		"-unsafe",
		"-m",
		"-overwrite_original",
		destPath,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	stdoutText := strings.TrimSpace(stdout.String())
	stderrText := strings.TrimSpace(stderr.String())

	// exiftool exits 0 on success and 1 on warnings; warnings are expected
	// for RAW to JPEG copies and still update the file.
	if err != nil {
		var exitErr *exec.ExitError
		tolerable := errors.As(err, &exitErr) && exitErr.ExitCode() == 1
		if !tolerable {
			detail := stderrText
			if detail == "" {
				detail = stdoutText
			}
			if detail == "" {
				detail = "exiftool failed"
			}
			return services.Wrap(services.ErrMetadata, "exiftool", "copy", detail, err)
		}
	}

	if strings.Contains(stdoutText, "0 image files updated") {
		return services.Wrap(services.ErrMetadata, "exiftool", "copy", "no metadata was written", nil)
	}
	return nil
}

var _ Copier = (*CLI)(nil)
