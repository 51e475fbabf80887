// Package services defines the shared error taxonomy and hosts clients for
// the external tools the pipeline composes: the LibRaw decoder and exiftool.
package services
