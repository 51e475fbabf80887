package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classify failures across the pipeline. Scanner and engine
// code wraps concrete errors with one of these markers so callers can map a
// failure to behavior (exclude an entry, fail a job, abort a batch) without
// string matching.
var (
	ErrNotFound      = errors.New("not found")
	ErrAccess        = errors.New("access denied")
	ErrDecode        = errors.New("decode error")
	ErrWrite         = errors.New("write error")
	ErrMetadata      = errors.New("metadata error")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrWrite
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
