// Package server exposes the conversion pipeline over HTTP. Handlers stay
// thin: scanning, conversion, review, and history logic live in their own
// packages, and the server maps their errors onto status codes.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"spectrum/internal/config"
	"spectrum/internal/convert"
	"spectrum/internal/journal"
	"spectrum/internal/logging"
	"spectrum/internal/review"
	"spectrum/internal/scanner"
	"spectrum/internal/services"
)

const (
	apiName    = "Spectrum API"
	apiVersion = "2.0.0"
)

// Server wires the pipeline components behind the HTTP surface.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	scanner *scanner.Scanner
	engine  *convert.Engine
	reviews *review.Store
	history *journal.Store
}

// New constructs a server. The journal store may be nil; history endpoints
// then report an empty history.
func New(cfg *config.Config, sc *scanner.Scanner, engine *convert.Engine, reviews *review.Store, history *journal.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Server{
		cfg:     cfg,
		logger:  logging.WithComponent(logger, "api"),
		scanner: sc,
		engine:  engine,
		reviews: reviews,
		history: history,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/", s.handleInfo)
	router.GET("/health", s.handleHealth)

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/browse", s.handleBrowse)
		apiGroup.POST("/scan", s.handleScan)
		apiGroup.POST("/convert", s.handleConvert)
		apiGroup.POST("/convert/stream", s.handleConvertStream)
		apiGroup.GET("/presets", s.handlePresets)
		apiGroup.GET("/verify", s.handleVerify)
		apiGroup.GET("/review", s.handleReviewGet)
		apiGroup.DELETE("/review", s.handleReviewClear)
		apiGroup.POST("/review/restore", s.handleReviewRestore)
		apiGroup.GET("/history", s.handleHistoryList)
		apiGroup.GET("/history/:id", s.handleHistoryResults)
	}
	return router
}

// Run serves until ctx is canceled. Write timeouts are left unset so a
// long-running conversion stream is never cut off mid-batch; streaming
// liveness is the client's per-chunk read timeout to enforce.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Paths.APIBind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if serveErr := srv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
		close(errCh)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		<-errCh
		return nil
	case serveErr := <-errCh:
		if serveErr != nil {
			return fmt.Errorf("api serve: %w", serveErr)
		}
		return nil
	}
}

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrAccess):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	s.logger.Warn("request failed",
		logging.String("path", c.FullPath()),
		logging.Error(err),
	)
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
