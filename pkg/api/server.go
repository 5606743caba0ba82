// Package api exposes the analysis service and the simulated roster over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sustactical/squadlink/pkg/analysis"
	"github.com/sustactical/squadlink/pkg/models"
)

// CacheHeader reports whether an analysis was served from cache.
const CacheHeader = "X-Squadlink-Cache"

// Analyzer is the analysis service as seen by the HTTP layer.
type Analyzer interface {
	Analyze(ctx context.Context, s models.Subject, forceRefresh bool) (models.AnalysisResult, bool, error)
	Briefing(ctx context.Context, subjects []models.Subject) string
	Logs(ctx context.Context) ([]models.AnalysisLog, error)
	Ping(ctx context.Context) error
	Stats(ctx context.Context) (analysis.Stats, error)
}

// Roster is the read side of the telemetry simulator.
type Roster interface {
	Snapshot() []models.Subject
	Alerts() []models.Alert
}

// Options configures a Server.
type Options struct {
	Listen         string
	AllowedOrigins []string
	Logger         *zap.Logger
}

// Server is the HTTP front end.
type Server struct {
	opts     Options
	analyzer Analyzer
	roster   Roster
	logger   *zap.Logger
	metrics  *metrics
	router   chi.Router
}

// New wires routes. roster may be nil, in which case the roster and alert
// endpoints return empty lists.
func New(opts Options, a Analyzer, r Roster) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	s := &Server{
		opts:     opts,
		analyzer: a,
		roster:   r,
		logger:   opts.Logger,
		metrics:  newMetrics(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{CacheHeader, middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze-soldier", s.handleAnalyze)
		r.Post("/briefing", s.handleBriefing)
		r.Get("/logs", s.handleLogs)
		r.Get("/roster", s.handleRoster)
		r.Get("/alerts", s.handleAlerts)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Listen,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("squadlink api listening", zap.String("addr", s.opts.Listen))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
