package preload

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"home-gallery/internal/logging"
	"home-gallery/internal/media"
	"home-gallery/internal/metrics"
	"home-gallery/internal/thumbs"
	"home-gallery/internal/workers"
)

// BatchSize is the number of jobs submitted between queue drains. Draining
// batch by batch keeps the queue bounded no matter how large the library is.
const BatchSize = 500

// Result summarizes one preload pass.
type Result struct {
	VideosFound int
	AlreadyDone int
	Queued      int
	Rejected    int
	Duration    time.Duration
}

// Orchestrator walks the media library once at startup and queues thumbnail
// generation for every video that does not already have a valid thumbnail.
type Orchestrator struct {
	scanner   *media.Scanner
	store     *thumbs.Store
	pool      *workers.Pool
	batchSize int
}

// NewOrchestrator wires a preload pass over scanner's media root, using store
// to decide what is missing and pool to generate it.
func NewOrchestrator(scanner *media.Scanner, store *thumbs.Store, pool *workers.Pool) *Orchestrator {
	return &Orchestrator{
		scanner:   scanner,
		store:     store,
		pool:      pool,
		batchSize: BatchSize,
	}
}

// Run executes one preload pass. It is meant to run on its own goroutine;
// stop aborts between batches. The scan bypasses the cache so the pass sees
// the library as it is right now, and skips dimension resolution since only
// file paths matter here.
func (o *Orchestrator) Run(stop <-chan struct{}) Result {
	start := time.Now()
	logging.Info("thumbnail preload starting")
	metrics.PreloadRunsTotal.Inc()

	var result Result

	records, err := o.scanner.Scan(o.scanner.MediaRoot(), false, false)
	if err != nil {
		logging.Error("preload scan failed: %v", err)
		result.Duration = time.Since(start)
		return result
	}

	var missing []media.Record
	for _, rec := range records {
		if rec.Kind != media.KindVideo {
			continue
		}
		result.VideosFound++
		if _, ok := o.store.Resolve(rec.RelativePath); ok {
			result.AlreadyDone++
			continue
		}
		missing = append(missing, rec)
	}

	metrics.PreloadVideosFound.Set(float64(result.VideosFound))
	metrics.PreloadVideosSkipped.Set(float64(result.AlreadyDone))
	logging.Info("preload: %d videos, %d already have thumbnails, %d to generate",
		result.VideosFound, result.AlreadyDone, len(missing))

	for batchStart := 0; batchStart < len(missing); batchStart += o.batchSize {
		select {
		case <-stop:
			logging.Info("preload aborted after %d of %d jobs", result.Queued, len(missing))
			result.Duration = time.Since(start)
			return result
		default:
		}

		batchEnd := batchStart + o.batchSize
		if batchEnd > len(missing) {
			batchEnd = len(missing)
		}

		for _, rec := range missing[batchStart:batchEnd] {
			job := workers.Job{
				SourcePath: o.store.SourcePathFor(rec.RelativePath),
				DestPath:   o.store.PathFor(rec.RelativePath),
			}
			if o.pool.Enqueue(job) {
				result.Queued++
			} else {
				result.Rejected++
			}
		}

		// Let the batch finish before queueing the next one.
		o.pool.Drain()
		logging.Debug("preload batch complete: %d/%d queued", result.Queued, len(missing))
	}

	result.Duration = time.Since(start)
	metrics.PreloadVideosQueued.Set(float64(result.Queued))
	metrics.PreloadLastRunDuration.Set(result.Duration.Seconds())
	logging.Info("thumbnail preload finished in %v: queued %d, rejected %d",
		result.Duration.Round(time.Millisecond), result.Queued, result.Rejected)
	return result
}

// SweepStale deletes thumbnails whose source video no longer exists. The
// thumbnail name derivation is not invertible, so the sweep works forward:
// anything in the thumbnail directory not named by a current video record is
// stale. The scan is uncached; an empty or failed scan skips the sweep so a
// transiently unreadable library cannot wipe the store.
func (o *Orchestrator) SweepStale() int {
	records, err := o.scanner.Scan(o.scanner.MediaRoot(), false, false)
	if err != nil {
		logging.Warn("stale thumbnail sweep skipped, scan failed: %v", err)
		return 0
	}
	if len(records) == 0 {
		return 0
	}

	expected := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if rec.Kind == media.KindVideo {
			expected[thumbs.Name(rec.RelativePath)] = struct{}{}
		}
	}

	entries, err := os.ReadDir(o.store.Dir())
	if err != nil {
		logging.Warn("stale thumbnail sweep failed to read directory: %v", err)
		return 0
	}

	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".png") || name == "placeholder.png" {
			continue
		}
		if _, ok := expected[name]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(o.store.Dir(), name)); err != nil {
			logging.Warn("failed to remove stale thumbnail %s: %v", name, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		logging.Info("stale thumbnail sweep removed %d files", removed)
	}
	return removed
}

// WarmCache primes the scan cache so the first gallery request after startup
// does not pay for a full walk with dimension resolution.
func (o *Orchestrator) WarmCache() {
	if _, err := o.scanner.Scan(o.scanner.MediaRoot(), true, true); err != nil {
		logging.Warn("cache warm-up scan failed: %v", err)
		return
	}
	logging.Debug("scan cache warmed")
}
