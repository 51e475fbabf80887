package scanner

import (
	"context"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"spectrum/internal/config"
	"spectrum/internal/logging"
	"spectrum/internal/services"
)

// Entry describes one discovered source file.
type Entry struct {
	Path             string `json:"path"`
	SizeBytes        int64  `json:"size"`
	AlreadyConverted bool   `json:"already_converted"`
}

// Report aggregates one scan. TotalSizeMB sums pending files only; sources
// with existing outputs contribute no new work and no new bytes.
type Report struct {
	TotalFiles        int     `json:"total_files"`
	AlreadyConverted  int     `json:"already_converted"`
	PendingConversion int     `json:"pending_conversion"`
	TotalSizeMB       float64 `json:"total_size_mb"`
	Entries           []Entry `json:"files"`
}

// Scanner walks source trees and classifies convertible files.
type Scanner struct {
	extensions   map[string]struct{}
	outputSubdir string
	filter       PathFilter
	logger       *slog.Logger
}

// New constructs a Scanner from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	extensions := make(map[string]struct{})
	outputSubdir := "converted"
	if cfg != nil {
		for _, ext := range cfg.Scan.SourceExtensions {
			extensions[strings.ToLower(ext)] = struct{}{}
		}
		outputSubdir = cfg.Scan.OutputSubdir
	}
	return &Scanner{
		extensions:   extensions,
		outputSubdir: outputSubdir,
		logger:       logging.WithComponent(logger, "scanner"),
	}
}

// Scan enumerates convertible files under root. The traversal is sequential;
// on NAS mounts directory listing latency dominates, so parallel stat calls
// buy nothing. Unreadable entries are excluded without failing the scan.
func (s *Scanner) Scan(ctx context.Context, root string, recursive bool) (*Report, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "scanner", "scan", "directory not found: "+root, err)
		}
		if os.IsPermission(err) {
			return nil, services.Wrap(services.ErrAccess, "scanner", "scan", "cannot access: "+root, err)
		}
		return nil, services.Wrap(services.ErrAccess, "scanner", "scan", "cannot stat: "+root, err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrNotFound, "scanner", "scan", "not a directory: "+root, nil)
	}

	var entries []Entry
	collect := func(path string, d fs.DirEntry) {
		if s.filter.SkipName(d.Name()) {
			return
		}
		if !s.convertible(d.Name()) {
			return
		}
		fileInfo, err := d.Info()
		if err != nil {
			s.logger.Debug("excluding unreadable entry", logging.String("path", path), logging.Error(err))
			return
		}
		entries = append(entries, Entry{
			Path:             path,
			SizeBytes:        fileInfo.Size(),
			AlreadyConverted: s.converted(path),
		})
	}

	if recursive {
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if walkErr != nil {
				if path == root {
					return services.Wrap(services.ErrAccess, "scanner", "scan", "cannot list: "+root, walkErr)
				}
				s.logger.Debug("excluding unreadable subtree", logging.String("path", path), logging.Error(walkErr))
				return nil
			}
			if d.IsDir() {
				if path != root && s.filter.SkipName(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			collect(path, d)
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		listing, err := os.ReadDir(root)
		if err != nil {
			return nil, services.Wrap(services.ErrAccess, "scanner", "scan", "cannot list: "+root, err)
		}
		for _, d := range listing {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if d.IsDir() {
				continue
			}
			collect(filepath.Join(root, d.Name()), d)
		}
	}

	report := summarize(entries)
	s.logger.Info("scan complete",
		logging.String("root", root),
		logging.Bool("recursive", recursive),
		logging.Int("total", report.TotalFiles),
		logging.Int("pending", report.PendingConversion),
	)
	return report, nil
}

// OutputProbePath returns the conventional output location checked during
// idempotency detection: <parent>/<output_subdir>/<stem>.jpg.
func (s *Scanner) OutputProbePath(sourcePath string) string {
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(sourcePath), s.outputSubdir, stem+".jpg")
}

func (s *Scanner) convertible(name string) bool {
	_, ok := s.extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// converted is a single existence probe, deliberately not a content or
// timestamp comparison.
func (s *Scanner) converted(sourcePath string) bool {
	info, err := os.Stat(s.OutputProbePath(sourcePath))
	return err == nil && !info.IsDir()
}

func summarize(entries []Entry) *Report {
	report := &Report{Entries: entries}
	var pendingBytes int64
	for _, entry := range entries {
		report.TotalFiles++
		if entry.AlreadyConverted {
			report.AlreadyConverted++
		} else {
			report.PendingConversion++
			pendingBytes += entry.SizeBytes
		}
	}
	report.TotalSizeMB = math.Round(float64(pendingBytes)/(1024*1024)*100) / 100
	return report
}
