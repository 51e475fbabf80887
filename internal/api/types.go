// Package api defines the request and response shapes shared by the HTTP
// server and the client. The heavier payloads (scan reports, outcomes,
// progress events) are the owning packages' types serialized directly; this
// package only adds the envelope types around them.
package api

import (
	"spectrum/internal/preset"
	"spectrum/internal/review"
)

// ScanRequest asks for a source tree walk.
type ScanRequest struct {
	Path      string `json:"path"`
	Recursive bool   `json:"recursive"`
}

// ConvertRequest submits a conversion batch. Quality zero means "use the
// preset's quality"; PreserveMetadata nil means "use the configured default".
type ConvertRequest struct {
	Files            []string `json:"files"`
	OutputDir        string   `json:"output_dir"`
	Preset           string   `json:"preset,omitempty"`
	Quality          int      `json:"quality,omitempty"`
	PreserveMetadata *bool    `json:"preserve_exif,omitempty"`
	SourcePath       string   `json:"source_path,omitempty"`
}

// RestoreRequest asks for a read-only reconstruction of converted pairs.
type RestoreRequest struct {
	SourcePath string `json:"sourcePath"`
	OutputDir  string `json:"outputDir"`
}

// PresetsResponse lists the available decode/render presets.
type PresetsResponse struct {
	Presets []preset.Preset `json:"presets"`
	Default string          `json:"default"`
}

// ReviewResponse wraps the optional review slot.
type ReviewResponse struct {
	Review *review.Record `json:"review"`
}

// BrowseEntry is one subdirectory offered by the folder picker.
type BrowseEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// BrowseResponse lists the subdirectories of a browsable path.
type BrowseResponse struct {
	Current     string        `json:"current"`
	Parent      string        `json:"parent,omitempty"`
	Directories []BrowseEntry `json:"directories"`
}

// HealthResponse reports daemon liveness.
type HealthResponse struct {
	Status string `json:"status"`
}

// InfoResponse describes the API at the root path.
type InfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
