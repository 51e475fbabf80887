// Package preset defines the static registry of decode/render presets a
// conversion batch can select. Presets bundle tone parameters for the RAW
// decoder with a default JPEG quality; they are immutable values, chosen per
// batch rather than per file.
package preset

import (
	"fmt"
	"sort"
	"strings"

	"spectrum/internal/services"
)

// Preset names a bundle of decode parameters plus a JPEG quality default.
// Every preset keeps the camera's recorded white balance and disables
// automatic brightening; tone adjustments beyond that are explicit fields.
type Preset struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Quality     int    `json:"quality"`

	// Brightness multiplies linear output; 0 means decoder default.
	Brightness float64 `json:"brightness,omitempty"`
	// DenoiseThreshold enables wavelet denoising when > 0.
	DenoiseThreshold int `json:"denoise_threshold,omitempty"`
}

var registry = []Preset{
	{
		Name:        "standard",
		Description: "Balanced default rendering",
		Quality:     90,
	},
	{
		Name:        "neutral",
		Description: "Flat sRGB rendering for archival output",
		Quality:     92,
		Brightness:  1.0,
	},
	{
		Name:        "vivid",
		Description: "Slight brightness lift for punchier output",
		Quality:     90,
		Brightness:  1.1,
	},
	{
		Name:             "clean-iso",
		Description:      "Wavelet denoise for high-ISO sources",
		Quality:          88,
		DenoiseThreshold: 300,
	},
}

// Lookup returns the preset registered under name (case-insensitive).
func Lookup(name string) (Preset, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Preset{}, services.Wrap(services.ErrConfiguration, "preset", "lookup", "preset name required", nil)
	}
	for _, p := range registry {
		if p.Name == key {
			return p, nil
		}
	}
	return Preset{}, services.Wrap(services.ErrConfiguration, "preset", "lookup", fmt.Sprintf("unknown preset %q", name), nil)
}

// All returns the registered presets sorted by name.
func All() []Preset {
	out := make([]Preset, len(registry))
	copy(out, registry)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ClampQuality bounds a JPEG quality override to the encoder's valid range.
// Zero means "use the preset default".
func ClampQuality(p Preset, override int) int {
	quality := p.Quality
	if override > 0 {
		quality = override
	}
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	return quality
}
