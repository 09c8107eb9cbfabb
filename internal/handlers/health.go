package handlers

import (
	"net/http"
	"runtime"
	"time"

	"home-gallery/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
)

// HealthResponse is the full health report served at /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`

	CacheEntries   int `json:"cacheEntries"`
	JobsPending    int `json:"jobsPending,omitempty"`
	JobsCompleted  int `json:"jobsCompleted,omitempty"`
	JobsFailed     int `json:"jobsFailed,omitempty"`
	WorkersRunning int `json:"workersRunning,omitempty"`
}

// HealthCheck serves GET /health with a detailed status report. Returns 503
// until startup has finished.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	ready := h.ready.Load()

	resp := HealthResponse{
		Ready:        ready,
		Version:      startup.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	if ready {
		resp.Status = statusHealthy
	} else {
		resp.Status = statusStarting
	}

	if h.scanCache != nil {
		resp.CacheEntries = h.scanCache.Len()
	}
	if h.pool != nil {
		stats := h.pool.Stats()
		resp.JobsPending = stats.Pending
		resp.JobsCompleted = stats.Completed
		resp.JobsFailed = stats.Failed
		resp.WorkersRunning = stats.Workers
	}

	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	writeJSON(w, resp)
}

// LivenessCheck serves GET /livez and /healthz. Always 200 while the process
// is up.
func (h *Handlers) LivenessCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// ReadinessCheck serves GET /readyz. 503 until startup completes so load
// balancers hold traffic during warm-up.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if !h.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{"status": "starting"})
		return
	}
	writeJSON(w, map[string]string{"status": "ready"})
}
