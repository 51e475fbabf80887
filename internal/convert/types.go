package convert

import (
	"path/filepath"
	"strings"

	"spectrum/internal/preset"
)

// Job is the unit of work submitted to the engine for one file.
type Job struct {
	SourcePath       string
	OutputPath       string
	Preset           preset.Preset
	Quality          int
	PreserveMetadata bool
}

// Outcome is the per-file result of one conversion attempt. Exactly one
// Outcome is produced per submitted Job. Success implies ErrorMessage is
// empty; Skipped implies Success and that no new write occurred.
type Outcome struct {
	SourcePath     string `json:"src"`
	OutputPath     string `json:"dst"`
	Success        bool   `json:"success"`
	Skipped        bool   `json:"skipped"`
	ErrorMessage   string `json:"error,omitempty"`
	SizeBytes      int64  `json:"size_bytes,omitempty"`
	MetadataCopied bool   `json:"metadata_copied"`
	MetadataError  string `json:"metadata_error,omitempty"`
}

// BatchSummary reconciles a completed batch:
// Total == Successful + Failed + Skipped.
type BatchSummary struct {
	Total      int       `json:"total"`
	Successful int       `json:"successful"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	Results    []Outcome `json:"results"`
}

// MakeJobs builds one Job per source file, with outputs named after the
// source stem in outputDir.
func MakeJobs(files []string, outputDir string, p preset.Preset, quality int, preserveMetadata bool) []Job {
	jobs := make([]Job, 0, len(files))
	resolved := preset.ClampQuality(p, quality)
	for _, file := range files {
		base := filepath.Base(file)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		jobs = append(jobs, Job{
			SourcePath:       file,
			OutputPath:       filepath.Join(outputDir, stem+".jpg"),
			Preset:           p,
			Quality:          resolved,
			PreserveMetadata: preserveMetadata,
		})
	}
	return jobs
}

// Collect drains an outcome stream into a summary. Skipped, successful, and
// failed are disjoint buckets; a skipped outcome is not double-counted as a
// success even though it reports Success true.
func Collect(outcomes <-chan Outcome) BatchSummary {
	summary := BatchSummary{}
	for outcome := range outcomes {
		summary.Total++
		switch {
		case outcome.Skipped:
			summary.Skipped++
		case outcome.Success:
			summary.Successful++
		default:
			summary.Failed++
		}
		summary.Results = append(summary.Results, outcome)
	}
	return summary
}
