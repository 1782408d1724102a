package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/KaramelBytes/kpilens/internal/analysis"
	"github.com/KaramelBytes/kpilens/internal/dataset"
	"github.com/KaramelBytes/kpilens/internal/logging"
	"github.com/KaramelBytes/kpilens/internal/records"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Fetcher reads logical datasets.
type Fetcher interface {
	Fetch(ctx context.Context, name dataset.Name) (records.Dataset, error)
	FetchAll(ctx context.Context, names ...dataset.Name) (map[dataset.Name]records.Dataset, error)
}

// Asker answers a question about a data context.
type Asker interface {
	Ask(ctx context.Context, question, dataContext string) (string, error)
}

// Options configures the front controller.
type Options struct {
	PageTitle   string
	ScanColumns analysis.Columns
	ScanPolicy  analysis.Policy
	// WriteTimeout bounds a whole response, including the upstream call.
	WriteTimeout time.Duration
	Logger       *zap.Logger
}

// Server routes browser and API requests to the dataset accessor and the proxy.
type Server struct {
	router  *chi.Mux
	fetcher Fetcher
	asker   Asker
	opts    Options
	page    *template.Template
	logger  *zap.Logger
}

// New builds the router. The page template is parsed once here.
func New(fetcher Fetcher, asker Asker, opts Options) (*Server, error) {
	page, err := template.ParseFS(templateFiles, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if opts.PageTitle == "" {
		opts.PageTitle = "経営実績レポート"
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 2 * time.Minute
	}
	s := &Server{
		router:  chi.NewRouter(),
		fetcher: fetcher,
		asker:   asker,
		opts:    opts,
		page:    page,
		logger:  logging.OrNop(opts.Logger),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.renderEntry)
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/datasets", s.handleDatasets)
		r.Get("/datasets/consolidated", s.handleDataset(dataset.Consolidated))
		r.Get("/datasets/yearly", s.handleDataset(dataset.YearlySummary))
		r.Get("/anomalies/{name}", s.handleAnomalies)
		r.Post("/ask", s.handleAsk)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.opts.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("elapsed", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("remote", r.RemoteAddr))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
