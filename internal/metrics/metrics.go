package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "home_gallery_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "home_gallery_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "home_gallery_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Directory scanner metrics
var (
	ScannerScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "home_gallery_scanner_scans_total",
			Help: "Total number of directory scans",
		},
		[]string{"source", "status"}, // source: "cache", "walk"
	)

	ScannerScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "home_gallery_scanner_scan_duration_seconds",
			Help:    "Directory scan duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
	)

	ScannerFilesScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "home_gallery_scanner_files_scanned_total",
			Help: "Total number of files examined by the scanner",
		},
	)

	ScannerFileErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "home_gallery_scanner_file_errors_total",
			Help: "Files skipped during scans because they vanished or were unreadable",
		},
	)

	ScannerWatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "home_gallery_scanner_watcher_events_total",
			Help: "Filesystem watcher events observed, by type",
		},
		[]string{"type"},
	)

	ScannerWatcherErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "home_gallery_scanner_watcher_errors_total",
			Help: "Filesystem watcher errors",
		},
	)
)

// Cache metrics
var (
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "home_gallery_cache_hits_total",
			Help: "Cache hits, by cache name",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "home_gallery_cache_misses_total",
			Help: "Cache misses, by cache name",
		},
		[]string{"cache"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "home_gallery_cache_evictions_total",
			Help: "Entries evicted after TTL expiry, by cache name",
		},
		[]string{"cache"},
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "home_gallery_cache_entries",
			Help: "Entries currently stored, by cache name",
		},
		[]string{"cache"},
	)
)

// Thumbnail metrics
var (
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "home_gallery_thumbnail_generations_total",
			Help: "Thumbnail generation attempts, by trigger and status",
		},
		[]string{"trigger", "status"}, // trigger: "sync", "worker"
	)

	ThumbnailGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "home_gallery_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	ThumbnailCorruptRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "home_gallery_thumbnail_corrupt_removed_total",
			Help: "Zero-size thumbnail files deleted during validation",
		},
	)
)

// Worker pool metrics
var (
	WorkerJobsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "home_gallery_worker_jobs_completed_total",
			Help: "Thumbnail jobs completed successfully",
		},
	)

	WorkerJobsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "home_gallery_worker_jobs_failed_total",
			Help: "Thumbnail jobs that failed",
		},
	)

	WorkerJobsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "home_gallery_worker_jobs_rejected_total",
			Help: "Jobs rejected because the queue was full or the pool was stopped",
		},
	)

	WorkerQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "home_gallery_worker_queue_depth",
			Help: "Jobs currently waiting in the pool queue",
		},
	)

	WorkerPoolRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "home_gallery_worker_pool_running",
			Help: "Number of workers in the running pool (0 = stopped)",
		},
	)
)

// Preload metrics
var (
	PreloadRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "home_gallery_preload_runs_total",
			Help: "Preload passes started",
		},
	)

	PreloadVideosFound = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "home_gallery_preload_videos_found",
			Help: "Videos discovered by the last preload scan",
		},
	)

	PreloadVideosQueued = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "home_gallery_preload_videos_queued",
			Help: "Videos queued for generation by the last preload pass",
		},
	)

	PreloadVideosSkipped = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "home_gallery_preload_videos_skipped",
			Help: "Videos skipped by the last preload pass because a valid thumbnail existed",
		},
	)

	PreloadLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "home_gallery_preload_last_run_duration_seconds",
			Help: "Duration of the last preload pass in seconds",
		},
	)
)
