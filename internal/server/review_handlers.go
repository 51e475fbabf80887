package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"spectrum/internal/api"
	"spectrum/internal/convert"
	"spectrum/internal/journal"
)

func (s *Server) handleReviewGet(c *gin.Context) {
	record, err := s.reviews.Load()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.ReviewResponse{Review: record})
}

func (s *Server) handleReviewClear(c *gin.Context) {
	if err := s.reviews.Clear(); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleReviewRestore(c *gin.Context) {
	var req api.RestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid restore request: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.SourcePath) == "" || strings.TrimSpace(req.OutputDir) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sourcePath and outputDir are required"})
		return
	}

	restored, err := s.reviews.Restore(req.SourcePath, req.OutputDir, s.cfg.Scan.SourceExtensions)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, restored)
}

func (s *Server) handleHistoryList(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusOK, gin.H{"batches": []journal.Batch{}})
		return
	}
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	batches, err := s.history.ListBatches(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	if batches == nil {
		batches = []journal.Batch{}
	}
	c.JSON(http.StatusOK, gin.H{"batches": batches})
}

func (s *Server) handleHistoryResults(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history unavailable"})
		return
	}
	outcomes, err := s.history.BatchResults(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if outcomes == nil {
		outcomes = []convert.Outcome{}
	}
	c.JSON(http.StatusOK, gin.H{"results": outcomes})
}
