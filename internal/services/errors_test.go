package services

import (
	"errors"
	"os"
	"testing"
)

func TestWrapPreservesMarkerAndCause(t *testing.T) {
	cause := os.ErrPermission
	err := Wrap(ErrAccess, "scanner", "stat entry", "cannot read file", cause)

	if !errors.Is(err, ErrAccess) {
		t.Fatalf("expected ErrAccess marker in %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause in %v", err)
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := Wrap(ErrDecode, "convert", "decode raster", "unsupported file", nil)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode marker in %v", err)
	}
	want := "decode error: convert: decode raster: unsupported file"
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}

func TestWrapNilMarkerDefaultsToWrite(t *testing.T) {
	err := Wrap(nil, "", "", "", errors.New("boom"))
	if !errors.Is(err, ErrWrite) {
		t.Fatalf("expected ErrWrite fallback in %v", err)
	}
}
