// Package server is the web dashboard: upload a screen, follow the run, read and download the results
package server

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/bububa/uxcrew/config"
	"github.com/bububa/uxcrew/pipeline"
	"github.com/bububa/uxcrew/report"
	"github.com/bububa/uxcrew/stories"
)

//go:embed templates/*.html
var templateFS embed.FS

// RefreshInterval is the reload period of a run page while the run is in progress
const RefreshInterval = 3 * time.Second

// Status describes the generation backend on the index page
type Status struct {
	Provider string
	Model    string
	// Credential reports whether an API key is configured
	Credential bool
}

// Server serves the dashboard
type Server struct {
	pipeline          *pipeline.Pipeline
	registry          *Registry
	extractor         *stories.Extractor
	metrics           http.Handler
	status            Status
	logger            *slog.Logger
	maxUploadBytes    int64
	maxImageDimension int
	runCtx            context.Context
	templates         *template.Template
	mux               *http.ServeMux
}

// Option configures a Server
type Option func(*Server)

// WithRegistry sets the run registry
func WithRegistry(r *Registry) Option {
	return func(s *Server) {
		s.registry = r
	}
}

// WithExtractor sets the user story extractor, stories are parsed from text by default
func WithExtractor(e *stories.Extractor) Option {
	return func(s *Server) {
		s.extractor = e
	}
}

// WithMetrics serves h at /metrics
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithStatus sets the backend status shown on the index page
func WithStatus(status Status) Option {
	return func(s *Server) {
		s.status = status
	}
}

// WithLogger sets the request logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithLimits sets the maximum upload size and the maximum image side in pixels
func WithLimits(maxUploadBytes int64, maxImageDimension int) Option {
	return func(s *Server) {
		s.maxUploadBytes = maxUploadBytes
		s.maxImageDimension = maxImageDimension
	}
}

// WithRunContext sets the parent context of every run, runs outlive the upload request
func WithRunContext(ctx context.Context) Option {
	return func(s *Server) {
		s.runCtx = ctx
	}
}

// New returns a Server running analyses with p
func New(p *pipeline.Pipeline, opts ...Option) *Server {
	s := &Server{
		pipeline:          p,
		maxUploadBytes:    config.DefaultMaxUploadBytes,
		maxImageDimension: config.DefaultMaxImageDimension,
		runCtx:            context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = NewRegistry(config.DefaultMaxRuns)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.templates = template.Must(template.New("").Funcs(template.FuncMap{
		"markdown": func(src string) template.HTML {
			return template.HTML(report.RenderHTML(src))
		},
		"duration": report.Duration,
		"megabytes": func(n int64) int64 {
			return n >> 20
		},
	}).ParseFS(templateFS, "templates/*.html"))
	s.routes()
	return s
}

func (s *Server) routes() {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("GET /runs/{id}", s.handleRun)
	mux.HandleFunc("GET /runs/{id}/result.json", s.handleResultJSON)
	mux.HandleFunc("GET /runs/{id}/image", s.handleImage)
	mux.HandleFunc("GET /runs/{id}/mockup", s.handleMockup)
	mux.HandleFunc("GET /runs/{id}/preview", s.handlePreview)
	mux.HandleFunc("GET /runs/{id}/annotated", s.handleAnnotated)
	mux.HandleFunc("GET /runs/{id}/mockup.html", s.handleMockupDownload)
	mux.HandleFunc("GET /runs/{id}/report.md", s.handleReport)
	mux.HandleFunc("GET /runs/{id}/stories.xlsx", s.handleWorkbook)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	s.mux = mux
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.logger.DebugContext(r.Context(), "http request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "elapsed", time.Since(start))
}

// Registry returns the run registry
func (s *Server) Registry() *Registry {
	return s.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
