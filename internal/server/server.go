// Package server exposes the planet registry and starfield generator over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/litescript/ls-exosky/internal/config"
	"github.com/litescript/ls-exosky/internal/logging"
	"github.com/litescript/ls-exosky/internal/scene"
)

// MaxStarCount caps the stars a single request may generate.
const MaxStarCount = 200000

const shutdownTimeout = 5 * time.Second

// Server serves the exosky HTTP API.
type Server struct {
	cfg     config.ServerConfig
	scene   scene.Config
	logger  *logging.Logger
	limiter *RateLimiter
	now     func() time.Time
}

// New creates a server. Starfield requests default to sceneCfg.
func New(cfg config.ServerConfig, sceneCfg scene.Config, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.With("server")
	return &Server{
		cfg:     cfg,
		scene:   sceneCfg,
		logger:  logger,
		limiter: NewRateLimiter(cfg.RateLimit, logger),
		now:     time.Now,
	}
}

// Handler returns the API routes wrapped in CORS, rate limiting and request
// logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/planets", s.handlePlanets)
	mux.HandleFunc("GET /api/planets/{id}", s.handlePlanet)
	mux.HandleFunc("GET /api/planets/{id}/starfield", s.handleStarfield)

	var h http.Handler = mux
	h = s.limiter.Middleware(h)
	h = NewCORS(s.cfg.CORSOrigins, s.logger).Middleware(h)
	h = s.logRequests(h)
	return h
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go s.limiter.Cleanup(ctx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening on %s", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("%s %s %d %v", r.Method, r.URL.Path, rec.status, s.now().Sub(start))
	})
}
