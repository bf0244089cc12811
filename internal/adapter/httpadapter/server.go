package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/couchcryptid/mixradar/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes health, readiness, metrics and batch progress while a run is
// in flight.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger

	mu   sync.RWMutex
	last *domain.Progress
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// /progress routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /progress", s.handleProgress)

	return s
}

// OnProgress records the latest batch notification for /progress.
func (s *Server) OnProgress(_ context.Context, p domain.Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &p
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleProgress(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()

	if last == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, last)
}
