package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"abtestapp/domain/abtest"
	"abtestapp/internal/logging"
	"abtestapp/ports"
	"abtestapp/ui/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

//go:embed templates/*
var embeddedFiles embed.FS

// AppTitle is the page title of the form
const AppTitle = "A/B Test Hypothesis Testing App"

// Config holds web shell settings
type Config struct {
	GinMode           string
	DefaultConfidence abtest.ConfidenceLevel
}

// Server is the web form and JSON API in front of the evaluation service
type Server struct {
	router            *gin.Engine
	evaluator         ports.EvaluationPort
	gatherer          prometheus.Gatherer
	templates         *template.Template
	aboutHTML         template.HTML
	defaultConfidence abtest.ConfidenceLevel
	logger            zerolog.Logger
}

// NewServer creates the web server. gatherer backs the /metrics endpoint.
func NewServer(cfg Config, evaluator ports.EvaluationPort, gatherer prometheus.Gatherer) (*Server, error) {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	if !cfg.DefaultConfidence.Valid() {
		cfg.DefaultConfidence = abtest.Confidence90
	}

	funcMap := template.FuncMap{
		"pct": func(v float64) string { return fmt.Sprintf("%.2f%%", v*100) },
		"fixed": func(v float64) string { return fmt.Sprintf("%.4f", v) },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	about, err := embeddedFiles.ReadFile("templates/about.md")
	if err != nil {
		return nil, fmt.Errorf("failed to read about page: %w", err)
	}

	s := &Server{
		router:            gin.New(),
		evaluator:         evaluator,
		gatherer:          gatherer,
		templates:         templates,
		aboutHTML:         template.HTML(markdown.ToHTML(about, nil, nil)),
		defaultConfidence: cfg.DefaultConfidence,
		logger:            logging.Component("ui"),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestLogger(s.logger))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/evaluate", s.handleEvaluateForm)
	s.router.GET("/about", s.handleAbout)

	api := s.router.Group("/api/v1")
	api.POST("/evaluate", s.handleEvaluateAPI)
	api.GET("/confidence-levels", s.handleConfidenceLevels)

	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("web shell listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down web shell")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return <-errCh
}
