package review

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"spectrum/internal/config"
	"spectrum/internal/services"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()
	return NewStore(&cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := testStore(t)

	record := NewRecord("/photos/shoot", "/photos/shoot/converted", "standard", Summary{
		Total:      7,
		Successful: 6,
		Failed:     1,
	})
	if err := store.Save(record); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a record")
	}
	if loaded.ID != record.ID {
		t.Fatalf("id mismatch: %q != %q", loaded.ID, record.ID)
	}
	if loaded.SourcePath != "/photos/shoot" || loaded.Preset != "standard" {
		t.Fatalf("unexpected record: %+v", loaded)
	}
	if loaded.Summary.Successful != 6 || loaded.Summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", loaded.Summary)
	}
	if loaded.PairCount != 6 {
		t.Fatalf("expected pair count 6, got %d", loaded.PairCount)
	}
}

func TestLoadEmptySlot(t *testing.T) {
	store := testStore(t)

	record, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if record != nil {
		t.Fatalf("expected empty slot, got %+v", record)
	}
}

func TestSaveOverwritesPreviousRecord(t *testing.T) {
	store := testStore(t)

	first := NewRecord("/photos/a", "/photos/a/converted", "standard", Summary{Total: 2, Successful: 2})
	second := NewRecord("/photos/b", "/photos/b/converted", "vivid", Summary{Total: 5, Successful: 5})
	if err := store.Save(first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := store.Save(second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ID != second.ID || loaded.SourcePath != "/photos/b" {
		t.Fatalf("expected second record, got %+v", loaded)
	}
}

func TestClear(t *testing.T) {
	store := testStore(t)

	if err := store.Clear(); err != nil {
		t.Fatalf("clear empty slot: %v", err)
	}

	record := NewRecord("/photos/shoot", "/photos/shoot/converted", "standard", Summary{Total: 1, Successful: 1})
	if err := store.Save(record); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected empty slot after clear, got %+v", loaded)
	}
}

func TestRecordIsPlainJSON(t *testing.T) {
	store := testStore(t)
	record := NewRecord("/photos/shoot", "/photos/shoot/converted", "neutral", Summary{Total: 3, Successful: 3})
	if err := store.Save(record); err != nil {
		t.Fatalf("save: %v", err)
	}

	payload, err := os.ReadFile(store.path)
	if err != nil {
		t.Fatalf("read slot file: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("slot file is not valid JSON: %v", err)
	}
	for _, key := range []string{"id", "timestamp", "sourcePath", "outputDir", "preset", "summary", "pairCount"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("slot file missing %q: %s", key, payload)
		}
	}
}

func TestRestorePairsByStem(t *testing.T) {
	store := testStore(t)

	sourceDir := t.TempDir()
	outputDir := filepath.Join(sourceDir, "converted")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"DSC001.ARW", "DSC002.ARW", "DSC003.ARW"} {
		if err := os.WriteFile(filepath.Join(sourceDir, name), []byte("raw"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// DSC003 has no output; stray.jpg has no source.
	for _, name := range []string{"DSC001.jpg", "DSC002.jpg", "stray.jpg"} {
		if err := os.WriteFile(filepath.Join(outputDir, name), []byte("jpeg"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	restored, err := store.Restore(sourceDir, outputDir, []string{".arw", ".nef"})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.PairCount != 2 || len(restored.Pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %+v", restored)
	}
	for _, pair := range restored.Pairs {
		if !pair.Skipped {
			t.Fatalf("restored pair must be skipped: %+v", pair)
		}
		if filepath.Dir(pair.SourcePath) != sourceDir {
			t.Fatalf("unexpected source path: %+v", pair)
		}
		if filepath.Dir(pair.OutputPath) != outputDir {
			t.Fatalf("unexpected output path: %+v", pair)
		}
	}
	if filepath.Base(restored.Pairs[0].SourcePath) != "DSC001.ARW" {
		t.Fatalf("pairs not sorted by source: %+v", restored.Pairs)
	}
}

func TestRestoreIgnoresTempArtifacts(t *testing.T) {
	store := testStore(t)

	sourceDir := t.TempDir()
	outputDir := filepath.Join(sourceDir, "converted")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sourceDir, "DSC001.ARW"), []byte("raw"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, ".tmp-spectrum-abc.jpg"), []byte("partial"), 0o644); err != nil {
		t.Fatal(err)
	}

	restored, err := store.Restore(sourceDir, outputDir, []string{".arw"})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.PairCount != 0 {
		t.Fatalf("temp artifact must not produce a pair: %+v", restored)
	}
}

func TestRestoreMissingDirectories(t *testing.T) {
	store := testStore(t)
	base := t.TempDir()

	_, err := store.Restore(filepath.Join(base, "missing"), base, []string{".arw"})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found for missing source dir, got %v", err)
	}

	srcDir := t.TempDir()
	_, err = store.Restore(srcDir, filepath.Join(base, "missing-out"), []string{".arw"})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found for missing output dir, got %v", err)
	}
}
