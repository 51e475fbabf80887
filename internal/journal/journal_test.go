package journal

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"spectrum/internal/config"
	"spectrum/internal/convert"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	store, err := Open(&cfg)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleBatch(finished time.Time) Batch {
	return Batch{
		ID:         uuid.NewString(),
		StartedAt:  finished.Add(-time.Minute),
		FinishedAt: finished,
		SourcePath: "/photos/shoot",
		OutputDir:  "/photos/shoot/converted",
		Preset:     "standard",
		Total:      2,
		Successful: 1,
		Failed:     1,
	}
}

func TestRecordAndListBatches(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	older := sampleBatch(time.Now().Add(-time.Hour))
	newer := sampleBatch(time.Now())
	newer.Preset = "vivid"

	if err := store.RecordBatch(ctx, older, nil); err != nil {
		t.Fatalf("record older: %v", err)
	}
	if err := store.RecordBatch(ctx, newer, nil); err != nil {
		t.Fatalf("record newer: %v", err)
	}

	batches, err := store.ListBatches(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	if batches[0].ID != newer.ID {
		t.Fatalf("expected newest batch first, got %+v", batches[0])
	}
	if batches[0].Preset != "vivid" || batches[0].Successful != 1 {
		t.Fatalf("unexpected batch fields: %+v", batches[0])
	}
	if batches[0].FinishedAt.IsZero() {
		t.Fatal("finished timestamp not round-tripped")
	}
}

func TestListBatchesHonorsLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		batch := sampleBatch(time.Now().Add(time.Duration(i) * time.Minute))
		if err := store.RecordBatch(ctx, batch, nil); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	batches, err := store.ListBatches(ctx, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(batches) != 3 {
		t.Fatalf("expected limit of 3, got %d", len(batches))
	}
}

func TestBatchResultsRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	batch := sampleBatch(time.Now())
	outcomes := []convert.Outcome{
		{
			SourcePath:     "/photos/shoot/DSC001.ARW",
			OutputPath:     "/photos/shoot/converted/DSC001.jpg",
			Success:        true,
			SizeBytes:      2048,
			MetadataCopied: true,
		},
		{
			SourcePath:   "/photos/shoot/DSC002.ARW",
			OutputPath:   "/photos/shoot/converted/DSC002.jpg",
			ErrorMessage: "decode failed",
		},
	}
	if err := store.RecordBatch(ctx, batch, outcomes); err != nil {
		t.Fatalf("record: %v", err)
	}

	loaded, err := store.BatchResults(ctx, batch.ID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 results, got %d", len(loaded))
	}
	if !loaded[0].Success || !loaded[0].MetadataCopied || loaded[0].SizeBytes != 2048 {
		t.Fatalf("unexpected first result: %+v", loaded[0])
	}
	if loaded[1].Success || loaded[1].ErrorMessage != "decode failed" {
		t.Fatalf("unexpected second result: %+v", loaded[1])
	}
}

func TestBatchResultsUnknownBatch(t *testing.T) {
	store := openStore(t)

	outcomes, err := store.BatchResults(context.Background(), "no-such-batch")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(outcomes) != 0 {
		t.Fatalf("expected no results, got %d", len(outcomes))
	}
}
