package scanner

import (
	"path/filepath"
	"strings"
)

// PathFilter classifies directory entries the scanner must never surface:
// platform artifact files and our own in-progress temp outputs. Both use the
// hidden-name marker, so one prefix check covers them.
type PathFilter struct{}

// SkipName reports whether a bare file name is a platform artifact.
func (PathFilter) SkipName(name string) bool {
	return strings.HasPrefix(name, ".")
}

// SkipPath reports whether any element of path is a platform artifact.
func (f PathFilter) SkipPath(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if f.SkipName(part) {
			return true
		}
	}
	return false
}
