// Package fileutil provides the file primitives the pipeline builds on,
// most importantly the write-to-temp-then-rename pattern that keeps a
// partially written JPEG from ever being visible at its final path.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// TempPrefix marks in-progress outputs. It begins with the platform hidden
// marker so scanners treat orphaned temp files as junk, never as sources or
// as evidence of a completed conversion.
const TempPrefix = ".tmp-spectrum-"

// CopyFile streams src to dst using io.Copy with default permissions (0o644).
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// TempPathFor returns a unique hidden temp path in the same directory as
// finalPath. Same-directory placement keeps the finishing rename atomic.
func TempPathFor(finalPath string) string {
	dir := filepath.Dir(finalPath)
	return filepath.Join(dir, TempPrefix+uuid.NewString()+filepath.Ext(finalPath))
}

// WriteAtomic streams from r into a hidden temp file beside finalPath and
// renames it into place, returning the bytes written. On any failure the temp
// file is removed and finalPath is left untouched.
func WriteAtomic(finalPath string, r io.Reader) (int64, error) {
	tempPath := TempPathFor(finalPath)

	out, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create temp output: %w", err)
	}

	written, err := io.Copy(out, r)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(tempPath)
		return 0, fmt.Errorf("write temp output: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tempPath)
		return 0, fmt.Errorf("close temp output: %w", err)
	}

	if err := os.Rename(tempPath, finalPath); err != nil {
		_ = os.Remove(tempPath)
		return 0, fmt.Errorf("finalize output: %w", err)
	}
	return written, nil
}

// IsTempArtifact reports whether name is one of our in-progress outputs.
func IsTempArtifact(name string) bool {
	return strings.HasPrefix(filepath.Base(name), TempPrefix)
}
