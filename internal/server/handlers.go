package server

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"spectrum/internal/api"
	"spectrum/internal/preset"
	"spectrum/internal/services"
	"spectrum/internal/services/exiftool"
)

func (s *Server) handleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, api.InfoResponse{
		Name:    apiName,
		Version: apiVersion,
		Status:  "Ready",
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{Status: "healthy"})
}

func (s *Server) handleScan(c *gin.Context) {
	var req api.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scan request: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	report, err := s.scanner.Scan(c.Request.Context(), req.Path, req.Recursive)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handlePresets(c *gin.Context) {
	c.JSON(http.StatusOK, api.PresetsResponse{
		Presets: preset.All(),
		Default: s.cfg.Convert.DefaultPreset,
	})
}

// handleVerify summarizes the EXIF block of a written output so a caller can
// confirm a metadata copy actually landed.
func (s *Server) handleVerify(c *gin.Context) {
	path := strings.TrimSpace(c.Query("path"))
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}
	if _, err := os.Stat(path); err != nil {
		s.fail(c, services.Wrap(services.ErrNotFound, "api", "verify", "file not found: "+path, err))
		return
	}
	summary, err := exiftool.Verify(path)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// handleBrowse lists subdirectories for the folder picker. An empty path
// serves the home directory as the starting point.
func (s *Server) handleBrowse(c *gin.Context) {
	path := strings.TrimSpace(c.Query("path"))
	if path == "" || path == "/" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "/"
		}
		path = home
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.fail(c, services.Wrap(services.ErrNotFound, "api", "browse", "path not found: "+path, err))
			return
		}
		s.fail(c, services.Wrap(services.ErrAccess, "api", "browse", "cannot access: "+path, err))
		return
	}
	if !info.IsDir() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "not a directory: " + path})
		return
	}

	var dirs []api.BrowseEntry
	// An unreadable directory still browses as empty rather than failing;
	// partial listings follow the scanner's exclusion policy.
	if entries, err := os.ReadDir(path); err == nil {
		for _, entry := range entries {
			if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			dirs = append(dirs, api.BrowseEntry{
				Name: entry.Name(),
				Path: filepath.Join(path, entry.Name()),
			})
		}
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })

	parent := filepath.Dir(path)
	if parent == path {
		parent = "/"
	}
	c.JSON(http.StatusOK, api.BrowseResponse{
		Current:     path,
		Parent:      parent,
		Directories: dirs,
	})
}
