package convert

import (
	"bytes"
	"context"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"spectrum/internal/config"
	"spectrum/internal/fileutil"
	"spectrum/internal/logging"
	"spectrum/internal/services"
	"spectrum/internal/services/exiftool"
	"spectrum/internal/services/libraw"
)

// Engine converts batches of RAW files across a bounded worker pool. Each
// worker processes one job fully before taking the next; outcomes are
// delivered in completion order, not submission order.
type Engine struct {
	decoder  libraw.Decoder
	metadata exiftool.Copier
	workers  int
	logger   *slog.Logger
}

// NewEngine constructs an engine. A nil metadata copier disables metadata
// preservation regardless of job flags; workers <= 0 selects one per CPU.
func NewEngine(cfg *config.Config, decoder libraw.Decoder, metadata exiftool.Copier, logger *slog.Logger) *Engine {
	workers := 0
	if cfg != nil {
		workers = cfg.Convert.Workers
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		decoder:  decoder,
		metadata: metadata,
		workers:  workers,
		logger:   logging.WithComponent(logger, "convert"),
	}
}

// Convert starts the batch and returns the outcome stream. The returned
// channel is unbuffered: a slow consumer holds workers back instead of
// queueing unbounded results. An error is returned only when the batch
// cannot start at all (an output directory cannot be created); per-job
// failures are reported on their own outcomes and never abort the batch.
//
// After ctx is canceled no further jobs are dequeued, but in-flight jobs run
// to completion so the atomic-write discipline is never broken mid-write.
func (e *Engine) Convert(ctx context.Context, jobs []Job) (<-chan Outcome, error) {
	dirs := make(map[string]struct{})
	for _, job := range jobs {
		dirs[filepath.Dir(job.OutputPath)] = struct{}{}
	}
	for dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, services.Wrap(services.ErrWrite, "convert", "prepare output", "cannot create output directory "+dir, err)
		}
	}

	queue := make(chan Job)
	outcomes := make(chan Outcome)

	var wg sync.WaitGroup
	workers := e.workers
	if workers > len(jobs) && len(jobs) > 0 {
		workers = len(jobs)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-queue:
					if !ok {
						return
					}
					outcome := e.run(context.WithoutCancel(ctx), job)
					select {
					case outcomes <- outcome:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	go func() {
		defer close(queue)
		for _, job := range jobs {
			select {
			case queue <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	return outcomes, nil
}

// ConvertAll is the blocking variant: it runs the batch to completion and
// returns the reconciled summary.
func (e *Engine) ConvertAll(ctx context.Context, jobs []Job) (BatchSummary, error) {
	outcomes, err := e.Convert(ctx, jobs)
	if err != nil {
		return BatchSummary{}, err
	}
	return Collect(outcomes), nil
}

// run executes one job. The skip probe re-evaluates output existence at call
// time rather than trusting any cached scan state, which keeps re-runs of
// the same job idempotent.
func (e *Engine) run(ctx context.Context, job Job) Outcome {
	outcome := Outcome{SourcePath: job.SourcePath, OutputPath: job.OutputPath}

	if info, err := os.Stat(job.OutputPath); err == nil && !info.IsDir() {
		outcome.Success = true
		outcome.Skipped = true
		outcome.SizeBytes = info.Size()
		e.logger.Debug("skipping converted source", logging.String("src", job.SourcePath))
		return outcome
	}

	img, err := e.decoder.Decode(ctx, job.SourcePath, job.Preset)
	if err != nil {
		outcome.ErrorMessage = err.Error()
		e.logger.Warn("decode failed", logging.String("src", job.SourcePath), logging.Error(err))
		return outcome
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: job.Quality}); err != nil {
		outcome.ErrorMessage = services.Wrap(services.ErrWrite, "convert", "encode jpeg", "", err).Error()
		e.logger.Warn("encode failed", logging.String("src", job.SourcePath), logging.Error(err))
		return outcome
	}

	size, err := fileutil.WriteAtomic(job.OutputPath, &buf)
	if err != nil {
		outcome.ErrorMessage = services.Wrap(services.ErrWrite, "convert", "write output", "", err).Error()
		e.logger.Warn("write failed", logging.String("dst", job.OutputPath), logging.Error(err))
		return outcome
	}
	outcome.Success = true
	outcome.SizeBytes = size

	if job.PreserveMetadata && e.metadata != nil {
		if err := e.metadata.Copy(ctx, job.SourcePath, job.OutputPath); err != nil {
			// A usable image with missing tags beats discarding correct
			// pixel output, so the job still succeeds.
			outcome.MetadataError = err.Error()
			e.logger.Warn("metadata copy failed",
				logging.String("src", job.SourcePath),
				logging.String("dst", job.OutputPath),
				logging.Error(err),
			)
		} else {
			outcome.MetadataCopied = true
		}
	}

	e.logger.Info("converted",
		logging.String("src", job.SourcePath),
		logging.String("dst", job.OutputPath),
		logging.Int64("bytes", size),
	)
	return outcome
}
