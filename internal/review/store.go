// Package review persists a compact summary of the most recently completed
// conversion batch. The record lives in a single overwritable JSON slot at a
// well-known location so other tools can read it directly, and Restore can
// rebuild the converted pair list from it without reprocessing anything.
package review

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"spectrum/internal/config"
	"spectrum/internal/fileutil"
	"spectrum/internal/services"
)

// Summary carries the final batch counters.
type Summary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
}

// Record is the persisted review slot. One record per completed batch; a new
// save replaces the previous record wholesale.
type Record struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	SourcePath string    `json:"sourcePath"`
	OutputDir  string    `json:"outputDir"`
	Preset     string    `json:"preset"`
	Summary    Summary   `json:"summary"`
	PairCount  int       `json:"pairCount"`
}

// Pair is one original/converted path pairing reconstructed by Restore.
// Skipped is always true: restoration is a read-only reconstruction and no
// conversion work happens on its behalf.
type Pair struct {
	SourcePath string `json:"src"`
	OutputPath string `json:"dst"`
	Skipped    bool   `json:"skipped"`
}

// Restored is the result of rebuilding a review's pair list.
type Restored struct {
	PairCount int    `json:"pairCount"`
	Pairs     []Pair `json:"pairs"`
}

// Store owns the single review slot. All writes go through the slot's file
// lock so concurrent batch completions cannot interleave partial records.
type Store struct {
	path string
	lock *flock.Flock
}

// NewStore returns a store backed by the configured review path.
func NewStore(cfg *config.Config) *Store {
	path := cfg.ReviewPath()
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// NewRecord builds a record for a just-completed batch.
func NewRecord(sourcePath, outputDir, preset string, summary Summary) Record {
	return Record{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		SourcePath: sourcePath,
		OutputDir:  outputDir,
		Preset:     preset,
		Summary:    summary,
		PairCount:  summary.Successful + summary.Skipped,
	}
}

// Save replaces the slot with record. The previous record, if any, is
// discarded.
func (s *Store) Save(record Record) error {
	if err := s.lock.Lock(); err != nil {
		return services.Wrap(services.ErrWrite, "review", "save", "lock review slot", err)
	}
	defer s.lock.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return services.Wrap(services.ErrWrite, "review", "save", "create state directory", err)
	}
	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrWrite, "review", "save", "encode review record", err)
	}
	if _, err := fileutil.WriteAtomic(s.path, strings.NewReader(string(payload)+"\n")); err != nil {
		return services.Wrap(services.ErrWrite, "review", "save", "write review record", err)
	}
	return nil
}

// Load returns the current record, or nil when the slot is empty.
func (s *Store) Load() (*Record, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrAccess, "review", "load", "read review record", err)
	}
	var record Record
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, services.Wrap(services.ErrAccess, "review", "load", "decode review record", err)
	}
	return &record, nil
}

// Clear empties the slot. Clearing an already-empty slot is not an error.
func (s *Store) Clear() error {
	if err := s.lock.Lock(); err != nil {
		return services.Wrap(services.ErrWrite, "review", "clear", "lock review slot", err)
	}
	defer s.lock.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return services.Wrap(services.ErrWrite, "review", "clear", "remove review record", err)
	}
	return nil
}

// Restore rebuilds the original/converted pair list by listing outputDir for
// finished JPEGs and matching each back to a source file in sourcePath by
// stem. It never decodes or copies metadata; every pair comes back with
// Skipped set.
func (s *Store) Restore(sourcePath, outputDir string, extensions []string) (*Restored, error) {
	sources, err := indexSources(sourcePath, extensions)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "review", "restore", fmt.Sprintf("output directory does not exist: %s", outputDir), err)
		}
		return nil, services.Wrap(services.ErrAccess, "review", "restore", "list output directory", err)
	}

	var pairs []Pair
	for _, entry := range entries {
		if entry.IsDir() || fileutil.IsTempArtifact(entry.Name()) {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".jpg") {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		source, ok := sources[strings.ToLower(stem)]
		if !ok {
			continue
		}
		pairs = append(pairs, Pair{
			SourcePath: source,
			OutputPath: filepath.Join(outputDir, entry.Name()),
			Skipped:    true,
		})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].SourcePath < pairs[j].SourcePath })

	return &Restored{PairCount: len(pairs), Pairs: pairs}, nil
}

// indexSources maps lowercase stems to source paths for the configured
// extensions.
func indexSources(dir string, extensions []string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "review", "restore", fmt.Sprintf("source directory does not exist: %s", dir), err)
		}
		return nil, services.Wrap(services.ErrAccess, "review", "restore", "list source directory", err)
	}

	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	sources := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := allowed[ext]; !ok {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		sources[strings.ToLower(stem)] = filepath.Join(dir, entry.Name())
	}
	return sources, nil
}
