package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"spectrum/internal/api"
	"spectrum/internal/config"
	"spectrum/internal/convert"
	"spectrum/internal/deps"
	"spectrum/internal/journal"
	"spectrum/internal/logging"
	"spectrum/internal/preset"
	"spectrum/internal/progress"
	"spectrum/internal/review"
	"spectrum/internal/scanner"
	"spectrum/internal/services/exiftool"
	"spectrum/internal/services/libraw"
)

// runLocalBatch performs scan and conversion in-process, without a daemon.
// It persists the same review slot and history entry the daemon would.
func runLocalBatch(cmd *cobra.Command, ctx *commandContext, path string, recursive bool, req api.ConvertRequest) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		if !status.Available && !status.Optional {
			return fmt.Errorf("missing required tool %s (%s)", status.Name, status.Command)
		}
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	report, err := scanner.New(cfg, logger).Scan(cmd.Context(), path, recursive)
	if err != nil {
		return err
	}
	var files []string
	for _, entry := range report.Entries {
		if !entry.AlreadyConverted {
			files = append(files, entry.Path)
		}
	}
	if len(files) == 0 {
		fmt.Println("Nothing to convert.")
		return nil
	}

	name := req.Preset
	if name == "" {
		name = cfg.Convert.DefaultPreset
	}
	selected, err := preset.Lookup(name)
	if err != nil {
		return err
	}
	preserve := cfg.Convert.PreserveMetadata
	if req.PreserveMetadata != nil {
		preserve = *req.PreserveMetadata
	}
	jobs := convert.MakeJobs(files, req.OutputDir, selected, req.Quality, preserve)

	decoder := libraw.NewCLI(libraw.WithBinary(cfg.Tools.DecoderBinary))
	metadata := exiftool.NewCLI(exiftool.WithBinary(cfg.Tools.ExiftoolBinary))
	engine := convert.NewEngine(cfg, decoder, metadata, logger)

	started := time.Now().UTC()
	outcomes, err := engine.Convert(cmd.Context(), jobs)
	if err != nil {
		return err
	}

	renderer := newProgressRenderer()
	var results []convert.Outcome
	for event := range progress.Stream(cmd.Context(), len(jobs), outcomes) {
		if event.Kind == progress.KindProgress && event.Result != nil {
			results = append(results, *event.Result)
		}
		if err := renderer.handle(event); err != nil {
			return err
		}
	}

	if renderer.terminal != nil && renderer.terminal.Kind == progress.KindComplete {
		persistLocalBatch(cmd, cfg, path, req.OutputDir, selected.Name, *renderer.terminal, started, results, logger)
	}
	return renderer.finish()
}

// persistLocalBatch writes the review slot and history entry for a batch run
// without a daemon. Persistence failures are reported but do not fail the
// command; the conversions themselves already finished.
func persistLocalBatch(cmd *cobra.Command, cfg *config.Config, sourcePath, outputDir, presetName string, terminal progress.Event, started time.Time, results []convert.Outcome, logger *slog.Logger) {
	record := review.NewRecord(sourcePath, outputDir, presetName, review.Summary{
		Total:      terminal.Total,
		Successful: terminal.Successful,
		Failed:     terminal.Failed,
		Skipped:    terminal.Skipped,
	})
	if err := review.NewStore(cfg).Save(record); err != nil {
		logger.Error("save review record", logging.Error(err))
	}

	history, err := journal.Open(cfg)
	if err != nil {
		logger.Error("open history journal", logging.Error(err))
		return
	}
	defer history.Close()

	batch := journal.Batch{
		ID:         record.ID,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
		SourcePath: sourcePath,
		OutputDir:  outputDir,
		Preset:     presetName,
		Total:      terminal.Total,
		Successful: terminal.Successful,
		Failed:     terminal.Failed,
		Skipped:    terminal.Skipped,
	}
	if err := history.RecordBatch(cmd.Context(), batch, results); err != nil {
		logger.Error("record batch history", logging.Error(err))
	}
}
