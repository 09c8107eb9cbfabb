package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes attaches every handler to the router.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/gallery", h.Gallery).Methods(http.MethodGet)
	r.HandleFunc("/api/browse", h.Browse).Methods(http.MethodGet)
	r.HandleFunc("/api/workers/stats", h.WorkerStats).Methods(http.MethodGet)
	r.HandleFunc("/api/cache/stats", h.CacheStats).Methods(http.MethodGet)
	r.HandleFunc("/api/cache/clear", h.CacheClear).Methods(http.MethodPost)

	r.HandleFunc("/thumbnail/{path:.*}", h.Thumbnail).Methods(http.MethodGet)
	r.HandleFunc("/media/{path:.*}", h.Media).Methods(http.MethodGet)

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.LivenessCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
}
