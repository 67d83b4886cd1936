// Package http serves the ground status endpoint. During bench runs and
// pre-launch checks the recovery crew can hit the probe over WiFi to see
// the live phase record without attaching a serial console.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nimbus-hab/nimbus/pkg/domain"
)

// RecordSource returns the current phase record, or nil before boot.
type RecordSource func() *domain.PhaseRecord

// CounterSource returns capture counters (pictures, videos).
type CounterSource func() (pictures, videos int)

// StatusResponse is the /status payload.
type StatusResponse struct {
	Phase     domain.Phase         `json:"phase"`
	EnteredAt time.Time            `json:"entered_at"`
	Attempts  map[domain.Phase]int `json:"attempts"`
	Pictures  int                  `json:"pictures"`
	Videos    int                  `json:"videos"`
	Uptime    string               `json:"uptime"`
}

// Server is the ground status HTTP server.
type Server struct {
	srv     *http.Server
	logger  *slog.Logger
	record  RecordSource
	counter CounterSource
	started time.Time
}

// NewServer builds the server. gatherer may be nil to disable /metrics.
func NewServer(addr string, record RecordSource, counter CounterSource, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	s := &Server{
		logger:  logger,
		record:  record,
		counter: counter,
		started: time.Now(),
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(5 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Get("/status", s.handleStatus)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return s
}

// Start serves until ctx is canceled, then shuts down gracefully. It is
// meant to run as a background task; the mission never depends on it.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.Info("status server listening", "addr", s.srv.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	rec := s.record()
	if rec == nil {
		http.Error(w, `{"error":"no phase record yet"}`, http.StatusServiceUnavailable)
		return
	}

	resp := StatusResponse{
		Phase:     rec.Phase,
		EnteredAt: rec.EnteredAt,
		Attempts:  rec.Attempts,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
	}
	if s.counter != nil {
		resp.Pictures, resp.Videos = s.counter()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("writing status response", "err", err)
	}
}
