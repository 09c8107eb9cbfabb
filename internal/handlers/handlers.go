package handlers

import (
	"sync/atomic"
	"time"

	"home-gallery/internal/cache"
	"home-gallery/internal/media"
	"home-gallery/internal/thumbs"
	"home-gallery/internal/workers"
)

// Config carries the handler-relevant subset of server configuration.
type Config struct {
	MediaDir     string
	Placeholder  string
	ItemsPerPage int
	UseCache     bool
	ServeMedia   bool
}

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	scanner   *media.Scanner
	store     *thumbs.Store
	pool      *workers.Pool
	scanCache *cache.Cache[media.ScanKey, []media.Record]
	cfg       Config

	startTime time.Time
	ready     atomic.Bool
}

// New creates the handler set. pool and scanCache may be nil when background
// generation or caching is disabled.
func New(scanner *media.Scanner, store *thumbs.Store, pool *workers.Pool, scanCache *cache.Cache[media.ScanKey, []media.Record], cfg Config) *Handlers {
	if cfg.ItemsPerPage < 1 {
		cfg.ItemsPerPage = 50
	}
	return &Handlers{
		scanner:   scanner,
		store:     store,
		pool:      pool,
		scanCache: scanCache,
		cfg:       cfg,
		startTime: time.Now(),
	}
}

// SetReady marks the server as ready to serve traffic. Called once startup
// work (directory checks, cache warm-up) has finished.
func (h *Handlers) SetReady() {
	h.ready.Store(true)
}
