// Package convert runs the RAW to JPEG worker pool. Jobs are isolated: one
// corrupt source fails its own outcome and the batch continues. Outputs are
// written atomically (temp file beside the destination, then rename), so a
// crash mid-write leaves the prior state rather than a corrupt file.
package convert
