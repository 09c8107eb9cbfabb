package handlers

import (
	"net/http"

	"home-gallery/internal/logging"
)

// WorkerStats serves GET /api/workers/stats with a snapshot of the pool
// counters, or an enabled=false stub when background generation is off.
func (h *Handlers) WorkerStats(w http.ResponseWriter, _ *http.Request) {
	if h.pool == nil {
		writeJSON(w, map[string]bool{"enabled": false})
		return
	}

	stats := h.pool.Stats()
	writeJSON(w, map[string]any{
		"enabled": true,
		"stats":   stats,
	})
}

// CacheStats serves GET /api/cache/stats.
func (h *Handlers) CacheStats(w http.ResponseWriter, _ *http.Request) {
	if h.scanCache == nil {
		writeJSON(w, map[string]bool{"enabled": false})
		return
	}

	stats := h.scanCache.GetStats()
	writeJSON(w, map[string]any{
		"enabled":     true,
		"name":        stats.Name,
		"size":        stats.Size,
		"ttl_seconds": stats.TTL.Seconds(),
	})
}

// CacheClear serves POST /api/cache/clear, dropping every cached listing.
func (h *Handlers) CacheClear(w http.ResponseWriter, _ *http.Request) {
	if h.scanCache == nil {
		writeJSON(w, map[string]bool{"enabled": false})
		return
	}

	removed := h.scanCache.Clear()
	logging.Info("scan cache cleared via API: %d entries", removed)
	writeJSON(w, map[string]any{
		"enabled": true,
		"removed": removed,
	})
}
