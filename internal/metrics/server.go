package metrics

import (
	"context"
	"net/http"
	"time"

	"home-gallery/internal/logging"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the Prometheus scrape endpoint on its own listener so the
// metrics port can be firewalled independently of the application port.
type Server struct {
	srv *http.Server
}

// NewServer creates a metrics server listening on the given address.
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Start runs the listener in a background goroutine.
func (s *Server) Start() {
	go func() {
		logging.Info("Metrics server listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("Metrics server error: %v", err)
		}
	}()
}

// Shutdown stops the listener, waiting up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
