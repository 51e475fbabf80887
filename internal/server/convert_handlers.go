package server

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"spectrum/internal/api"
	"spectrum/internal/convert"
	"spectrum/internal/journal"
	"spectrum/internal/logging"
	"spectrum/internal/preset"
	"spectrum/internal/progress"
	"spectrum/internal/review"
)

// batchPlan is one validated conversion request, ready to run.
type batchPlan struct {
	jobs       []convert.Job
	preset     preset.Preset
	outputDir  string
	sourcePath string
	startedAt  time.Time
}

func (s *Server) planBatch(req api.ConvertRequest) (*batchPlan, string) {
	if len(req.Files) == 0 {
		return nil, "files is required"
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		return nil, "output_dir is required"
	}

	name := req.Preset
	if strings.TrimSpace(name) == "" {
		name = s.cfg.Convert.DefaultPreset
	}
	selected, err := preset.Lookup(name)
	if err != nil {
		return nil, err.Error()
	}

	preserve := s.cfg.Convert.PreserveMetadata
	if req.PreserveMetadata != nil {
		preserve = *req.PreserveMetadata
	}

	sourcePath := strings.TrimSpace(req.SourcePath)
	if sourcePath == "" {
		sourcePath = filepath.Dir(req.Files[0])
	}

	return &batchPlan{
		jobs:       convert.MakeJobs(req.Files, req.OutputDir, selected, req.Quality, preserve),
		preset:     selected,
		outputDir:  req.OutputDir,
		sourcePath: sourcePath,
		startedAt:  time.Now().UTC(),
	}, ""
}

// recordBatch persists the review slot and appends to the history journal.
// Persistence failures are logged, not surfaced: the conversions themselves
// already succeeded.
func (s *Server) recordBatch(plan *batchPlan, summary convert.BatchSummary) {
	record := review.NewRecord(plan.sourcePath, plan.outputDir, plan.preset.Name, review.Summary{
		Total:      summary.Total,
		Successful: summary.Successful,
		Failed:     summary.Failed,
		Skipped:    summary.Skipped,
	})
	if err := s.reviews.Save(record); err != nil {
		s.logger.Error("save review record", logging.Error(err))
	}

	if s.history == nil {
		return
	}
	batch := journal.Batch{
		ID:         record.ID,
		StartedAt:  plan.startedAt,
		FinishedAt: time.Now().UTC(),
		SourcePath: plan.sourcePath,
		OutputDir:  plan.outputDir,
		Preset:     plan.preset.Name,
		Total:      summary.Total,
		Successful: summary.Successful,
		Failed:     summary.Failed,
		Skipped:    summary.Skipped,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.history.RecordBatch(ctx, batch, summary.Results); err != nil {
		s.logger.Error("record batch history", logging.Error(err))
	}
}

func (s *Server) handleConvert(c *gin.Context) {
	var req api.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid convert request: " + err.Error()})
		return
	}
	plan, problem := s.planBatch(req)
	if problem != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": problem})
		return
	}

	summary, err := s.engine.ConvertAll(c.Request.Context(), plan.jobs)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.recordBatch(plan, summary)
	c.JSON(http.StatusOK, summary)
}

// handleConvertStream runs a batch and delivers progress as server-sent
// events. Client disconnect cancels the request context, which stops job
// dequeuing while letting in-flight conversions finish.
func (s *Server) handleConvertStream(c *gin.Context) {
	var req api.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid convert request: " + err.Error()})
		return
	}
	plan, problem := s.planBatch(req)
	if problem != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": problem})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ctx := c.Request.Context()
	outcomes, err := s.engine.Convert(ctx, plan.jobs)
	if err != nil {
		event := progress.ErrorEvent(err.Error())
		c.SSEvent(string(event.Kind), event)
		c.Writer.Flush()
		return
	}

	events := progress.Stream(ctx, len(plan.jobs), outcomes)
	var results []convert.Outcome
	completed := false
	var summary convert.BatchSummary

	c.Stream(func(w io.Writer) bool {
		event, ok := <-events
		if !ok {
			return false
		}
		if event.Kind == progress.KindProgress && event.Result != nil {
			results = append(results, *event.Result)
		}
		if event.Kind == progress.KindComplete {
			completed = true
			summary = convert.BatchSummary{
				Total:      event.Total,
				Successful: event.Successful,
				Failed:     event.Failed,
				Skipped:    event.Skipped,
				Results:    results,
			}
		}
		c.SSEvent(string(event.Kind), event)
		return true
	})

	if completed {
		s.recordBatch(plan, summary)
	}
}
