// Package scanner walks a source tree and classifies each convertible RAW
// file as pending or already converted. The idempotency probe is a single
// existence check against the conventional output subdirectory, so a scan is
// read-only and safe to repeat at any time.
package scanner
