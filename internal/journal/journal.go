// Package journal keeps a history of completed conversion batches in SQLite.
// The review slot only remembers the most recent batch; the journal is the
// append-only record behind it, queried by the history surfaces.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"spectrum/internal/config"
	"spectrum/internal/convert"
)

// Store manages batch history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Batch is one recorded conversion run.
type Batch struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	SourcePath string    `json:"sourcePath"`
	OutputDir  string    `json:"outputDir"`
	Preset     string    `json:"preset"`
	Total      int       `json:"total"`
	Successful int       `json:"successful"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
}

// Open initializes or connects to the journal database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.JournalPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS batches (
    id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL,
    source_path TEXT NOT NULL,
    output_dir TEXT NOT NULL,
    preset TEXT NOT NULL,
    total INTEGER NOT NULL,
    successful INTEGER NOT NULL,
    failed INTEGER NOT NULL,
    skipped INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS batch_results (
    batch_id TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
    source_path TEXT NOT NULL,
    output_path TEXT NOT NULL,
    success INTEGER NOT NULL,
    skipped INTEGER NOT NULL,
    error_message TEXT NOT NULL DEFAULT '',
    size_bytes INTEGER NOT NULL DEFAULT 0,
    metadata_copied INTEGER NOT NULL DEFAULT 0,
    metadata_error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_batch_results_batch ON batch_results(batch_id);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init journal schema: %w", err)
	}
	return nil
}

// RecordBatch appends a completed batch and its per-file outcomes.
func (s *Store) RecordBatch(ctx context.Context, batch Batch, outcomes []convert.Outcome) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin journal tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
INSERT INTO batches (id, started_at, finished_at, source_path, output_dir, preset, total, successful, failed, skipped)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batch.ID,
		batch.StartedAt.UTC().Format(time.RFC3339Nano),
		batch.FinishedAt.UTC().Format(time.RFC3339Nano),
		batch.SourcePath,
		batch.OutputDir,
		batch.Preset,
		batch.Total,
		batch.Successful,
		batch.Failed,
		batch.Skipped,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}

	for _, outcome := range outcomes {
		_, err = tx.ExecContext(ctx, `
INSERT INTO batch_results (batch_id, source_path, output_path, success, skipped, error_message, size_bytes, metadata_copied, metadata_error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			batch.ID,
			outcome.SourcePath,
			outcome.OutputPath,
			boolToInt(outcome.Success),
			boolToInt(outcome.Skipped),
			outcome.ErrorMessage,
			outcome.SizeBytes,
			boolToInt(outcome.MetadataCopied),
			outcome.MetadataError,
		)
		if err != nil {
			return fmt.Errorf("insert batch result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit journal tx: %w", err)
	}
	return nil
}

// ListBatches returns the most recent batches, newest first.
func (s *Store) ListBatches(ctx context.Context, limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, started_at, finished_at, source_path, output_dir, preset, total, successful, failed, skipped
FROM batches
ORDER BY finished_at DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var (
			batch      Batch
			startedAt  string
			finishedAt string
		)
		if err := rows.Scan(
			&batch.ID,
			&startedAt,
			&finishedAt,
			&batch.SourcePath,
			&batch.OutputDir,
			&batch.Preset,
			&batch.Total,
			&batch.Successful,
			&batch.Failed,
			&batch.Skipped,
		); err != nil {
			return nil, fmt.Errorf("scan batch row: %w", err)
		}
		batch.StartedAt = parseTimestamp(startedAt)
		batch.FinishedAt = parseTimestamp(finishedAt)
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return batches, nil
}

// BatchResults returns the per-file outcomes recorded for one batch.
func (s *Store) BatchResults(ctx context.Context, batchID string) ([]convert.Outcome, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT source_path, output_path, success, skipped, error_message, size_bytes, metadata_copied, metadata_error
FROM batch_results
WHERE batch_id = ?
ORDER BY source_path`, batchID)
	if err != nil {
		return nil, fmt.Errorf("query batch results: %w", err)
	}
	defer rows.Close()

	var outcomes []convert.Outcome
	for rows.Next() {
		var (
			outcome  convert.Outcome
			success  int
			skipped  int
			metaCopy int
		)
		if err := rows.Scan(
			&outcome.SourcePath,
			&outcome.OutputPath,
			&success,
			&skipped,
			&outcome.ErrorMessage,
			&outcome.SizeBytes,
			&metaCopy,
			&outcome.MetadataError,
		); err != nil {
			return nil, fmt.Errorf("scan batch result row: %w", err)
		}
		outcome.Success = success != 0
		outcome.Skipped = skipped != 0
		outcome.MetadataCopied = metaCopy != 0
		outcomes = append(outcomes, outcome)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batch results: %w", err)
	}
	return outcomes, nil
}

func parseTimestamp(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
