// Package deps reports availability of the external binaries the conversion
// pipeline shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"spectrum/internal/config"
)

// Requirement defines an external dependency spectrum relies on.
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

// Requirements lists the binaries for the configured toolchain. The decoder
// is required; exiftool is optional because metadata copy failures are
// non-fatal by design.
func Requirements(cfg *config.Config) []Requirement {
	decoder := "dcraw_emu"
	exiftool := "exiftool"
	if cfg != nil {
		decoder = cfg.Tools.DecoderBinary
		exiftool = cfg.Tools.ExiftoolBinary
	}
	return []Requirement{
		{Name: "LibRaw decoder", Command: decoder, Description: "RAW to raster decode"},
		{Name: "ExifTool", Command: exiftool, Description: "metadata transfer", Optional: true},
	}
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
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
