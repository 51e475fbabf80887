package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"spectrum/internal/config"
	"spectrum/internal/services"
)

func newTestScanner(t *testing.T) *Scanner {
	t.Helper()
	cfg := config.Default()
	return New(&cfg, nil)
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestScanCountsAndIdempotency(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 10; i++ {
		writeFile(t, filepath.Join(dir, "shot"+string(rune('a'+i))+".arw"), 100)
	}
	// three with matching outputs in the conventional subdirectory
	for _, stem := range []string{"shota", "shotb", "shotc"} {
		writeFile(t, filepath.Join(dir, "converted", stem+".jpg"), 10)
	}

	report, err := newTestScanner(t).Scan(context.Background(), dir, true)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if report.TotalFiles != 10 || report.AlreadyConverted != 3 || report.PendingConversion != 7 {
		t.Fatalf("report = %+v", report)
	}
	if report.TotalFiles != report.AlreadyConverted+report.PendingConversion {
		t.Fatalf("count invariant violated: %+v", report)
	}
}

func TestScanSkipsPlatformArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "keep.arw"), 10)
	writeFile(t, filepath.Join(dir, "._junk.arw"), 10)
	writeFile(t, filepath.Join(dir, ".DS_Store"), 10)
	writeFile(t, filepath.Join(dir, ".hidden", "inside.arw"), 10)

	report, err := newTestScanner(t).Scan(context.Background(), dir, true)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if report.TotalFiles != 1 {
		t.Fatalf("expected 1 entry, got %+v", report)
	}
	if report.Entries[0].Path != filepath.Join(dir, "keep.arw") {
		t.Fatalf("unexpected entry %+v", report.Entries[0])
	}
}

func TestScanNonRecursiveIgnoresSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "top.arw"), 10)
	writeFile(t, filepath.Join(dir, "nested", "deep.arw"), 10)

	report, err := newTestScanner(t).Scan(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if report.TotalFiles != 1 {
		t.Fatalf("expected 1 file, got %d", report.TotalFiles)
	}

	report, err = newTestScanner(t).Scan(context.Background(), dir, true)
	if err != nil {
		t.Fatalf("recursive scan: %v", err)
	}
	if report.TotalFiles != 2 {
		t.Fatalf("expected 2 files recursively, got %d", report.TotalFiles)
	}
}

func TestScanMissingRoot(t *testing.T) {
	_, err := newTestScanner(t).Scan(context.Background(), filepath.Join(t.TempDir(), "nope"), true)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestScanRootIsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.arw")
	writeFile(t, path, 10)

	_, err := newTestScanner(t).Scan(context.Background(), path, true)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-directory, got %v", err)
	}
}

func TestScanSizeSumsPendingOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pending.arw"), 2*1024*1024)
	writeFile(t, filepath.Join(dir, "done.arw"), 4*1024*1024)
	writeFile(t, filepath.Join(dir, "converted", "done.jpg"), 1)

	report, err := newTestScanner(t).Scan(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if report.TotalSizeMB != 2.0 {
		t.Fatalf("TotalSizeMB = %v, want 2.0", report.TotalSizeMB)
	}
}

func TestScanIgnoresTempArtifactsInProbe(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "shot.arw"), 10)
	// an orphaned temp file must not count as a completed conversion
	writeFile(t, filepath.Join(dir, "converted", ".tmp-spectrum-abc.jpg"), 10)

	report, err := newTestScanner(t).Scan(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if report.PendingConversion != 1 {
		t.Fatalf("orphaned temp treated as output: %+v", report)
	}
}

func TestOutputProbePath(t *testing.T) {
	s := newTestScanner(t)
	got := s.OutputProbePath("/photos/trip/IMG_001.ARW")
	want := filepath.Join("/photos/trip", "converted", "IMG_001.jpg")
	if got != want {
		t.Fatalf("probe path = %q, want %q", got, want)
	}
}

func TestScanCancellation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.arw"), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestScanner(t).Scan(ctx, dir, true); err == nil {
		t.Fatal("expected context error")
	}
}
