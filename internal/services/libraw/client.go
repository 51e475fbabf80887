// Package libraw wraps LibRaw's dcraw_emu command-line decoder. The decoder
// renders a RAW source to a full-resolution TIFF honoring the camera's
// recorded white balance with automatic brightening disabled; preset tone
// parameters map onto explicit flags.
package libraw

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/tiff"

	"spectrum/internal/preset"
	"spectrum/internal/services"
)

var commandContext = exec.CommandContext

// Decoder describes RAW decode behaviour.
type Decoder interface {
	Decode(ctx context.Context, path string, p preset.Preset) (image.Image, error)
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

// WithScratchDir overrides where intermediate TIFFs are staged.
func WithScratchDir(dir string) Option {
	return func(c *CLI) {
		if dir != "" {
			c.scratchDir = dir
		}
	}
}

// CLI invokes dcraw_emu for each decode.
type CLI struct {
	binary     string
	scratchDir string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "dcraw_emu"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Decode renders the RAW file at path into a full-resolution image.
func (c *CLI) Decode(ctx context.Context, path string, p preset.Preset) (image.Image, error) {
	if strings.TrimSpace(path) == "" {
		return nil, services.Wrap(services.ErrDecode, "libraw", "decode", "source path required", nil)
	}
	if _, err := os.Stat(path); err != nil {
		marker := services.ErrDecode
		if errors.Is(err, os.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return nil, services.Wrap(marker, "libraw", "decode", "source unavailable", err)
	}

	scratch := c.scratchDir
	if scratch == "" {
		scratch = os.TempDir()
	}
	tiffPath := filepath.Join(scratch, ".spectrum-"+uuid.NewString()+".tiff")
	defer os.Remove(tiffPath)

	args := decodeArgs(p, tiffPath, path)
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = "decoder exited abnormally"
		}
		return nil, services.Wrap(services.ErrDecode, "libraw", "decode", detail, err)
	}

	file, err := os.Open(tiffPath)
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "libraw", "read decoder output", "decoder produced no output", err)
	}
	defer file.Close()

	img, err := tiff.Decode(file)
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "libraw", "parse decoder output", "invalid TIFF from decoder", err)
	}
	return img, nil
}

// decodeArgs builds the dcraw_emu invocation for a preset:
// -w uses camera white balance, -W disables automatic brightening,
// -T emits TIFF, -Z routes output to the staging path.
func decodeArgs(p preset.Preset, outputPath, sourcePath string) []string {
	args := []string{"-w", "-W", "-T"}
	if p.Brightness > 0 {
		args = append(args, "-b", strconv.FormatFloat(p.Brightness, 'f', 2, 64))
	}
	if p.DenoiseThreshold > 0 {
		args = append(args, "-n", strconv.Itoa(p.DenoiseThreshold))
	}
	args = append(args, "-Z", outputPath, sourcePath)
	return args
}

var _ Decoder = (*CLI)(nil)

// String identifies the client configuration in logs.
func (c *CLI) String() string {
	return fmt.Sprintf("libraw(%s)", c.binary)
}
