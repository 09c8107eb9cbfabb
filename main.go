package main

import (
	"context"
	"fmt"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/disintegration/imaging"
	"github.com/gorilla/mux"

	"home-gallery/internal/cache"
	"home-gallery/internal/handlers"
	"home-gallery/internal/logging"
	"home-gallery/internal/media"
	"home-gallery/internal/metrics"
	"home-gallery/internal/middleware"
	"home-gallery/internal/preload"
	"home-gallery/internal/startup"
	"home-gallery/internal/thumbs"
	"home-gallery/internal/workers"
)

func main() {
	var config startup.Config
	kong.Parse(&config,
		kong.Name("home-gallery"),
		kong.Description("Media gallery server with background thumbnail generation."),
	)

	if config.VersionFlag {
		info := startup.GetBuildInfo()
		fmt.Printf("home-gallery %s (%s, built %s, %s)\n", info.Version, info.Commit, info.BuildTime, info.GoVersion)
		return
	}

	if err := run(&config); err != nil {
		logging.Fatal("%v", err)
	}
}

func run(config *startup.Config) error {
	startTime := time.Now()

	if err := config.Finalize(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	config.CheckFFmpeg()
	metrics.InitializeMetrics()

	// Scan cache
	var scanCache *cache.Cache[media.ScanKey, []media.Record]
	if !config.NoCache {
		scanCache = cache.New[media.ScanKey, []media.Record]("scan", config.CacheTTL)
	}

	// Thumbnail store and scanner
	store := thumbs.NewStore(config.MediaDir, config.ThumbnailDir, thumbs.NewFFmpegExtractor())
	scanner := media.NewScanner(config.MediaDir, scanCache, store.PathFor)

	placeholderFile, err := ensurePlaceholder(config.ThumbnailDir)
	if err != nil {
		return fmt.Errorf("failed to create placeholder image: %w", err)
	}

	stopCh := make(chan struct{})

	// Background thumbnail generation
	var pool *workers.Pool
	if !config.NoWorkers {
		pool = workers.NewPool(config.Workers(), workers.DefaultQueueSize, func(ctx context.Context, src, dest string) error {
			err := store.Generate(ctx, src, dest)
			if err != nil {
				metrics.ThumbnailGenerationsTotal.WithLabelValues("worker", "error").Inc()
			} else {
				metrics.ThumbnailGenerationsTotal.WithLabelValues("worker", "success").Inc()
			}
			return err
		})
	}

	// Handlers and router
	h := handlers.New(scanner, store, pool, scanCache, handlers.Config{
		MediaDir:     config.MediaDir,
		Placeholder:  config.Placeholder,
		ItemsPerPage: config.ItemsPerPage,
		UseCache:     !config.NoCache,
		ServeMedia:   !config.NoServeMedia,
	})

	router := mux.NewRouter()
	h.RegisterRoutes(router)
	router.HandleFunc(config.Placeholder, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		http.ServeFile(w, r, placeholderFile)
	}).Methods(http.MethodGet)
	startup.LogHTTPRoutes(router)

	handler := middleware.Metrics(middleware.DefaultMetricsConfig())(router)
	handler = middleware.Logger(middleware.DefaultLoggingConfig())(handler)
	handler = middleware.Compression()(handler)

	// Startup work: preload thumbnails, warm the cache, watch for changes.
	orchestrator := preload.NewOrchestrator(scanner, store, pool)
	go func() {
		if pool != nil {
			orchestrator.Run(stopCh)
			orchestrator.SweepStale()
		}
		if !config.NoCache {
			orchestrator.WarmCache()
		}
		h.SetReady()
	}()

	if scanCache != nil {
		go scanner.Watch(stopCh)
		go cleanupLoop(scanCache, stopCh)
	}

	var metricsServer *metrics.Server
	if !config.NoMetrics {
		metricsServer = metrics.NewServer(config.MetricsAddr())
		metricsServer.Start()
	}

	srv := &http.Server{
		Addr:        config.Addr(),
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// Streaming large videos rules out a write timeout.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go handleShutdown(srv, metricsServer, pool, stopCh)

	logging.Info("")
	logging.Info("home-gallery listening on %s (started in %v)", config.Addr(), time.Since(startTime).Round(time.Millisecond))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// handleShutdown waits for SIGINT/SIGTERM, then stops intake first and lets
// in-flight work finish: watcher and preload, then the HTTP listener, then
// the worker pool.
func handleShutdown(srv *http.Server, metricsServer *metrics.Server, pool *workers.Pool, stopCh chan struct{}) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logging.Info("received %v, shutting down", sig)

	close(stopCh)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("HTTP server shutdown: %v", err)
	}

	if pool != nil {
		pool.Shutdown(true)
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			logging.Warn("metrics server shutdown: %v", err)
		}
	}

	logging.CloseFileLogging()
}

// cleanupLoop sweeps expired scan cache entries so memory is reclaimed even
// when no requests touch stale keys.
func cleanupLoop(scanCache *cache.Cache[media.ScanKey, []media.Record], stop <-chan struct{}) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			scanCache.CleanupExpired()
		case <-stop:
			return
		}
	}
}

// ensurePlaceholder writes the fallback tile served for failed thumbnails.
func ensurePlaceholder(dir string) (string, error) {
	path := filepath.Join(dir, "placeholder.png")
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return path, nil
	}

	img := imaging.New(thumbs.BoxWidth, thumbs.BoxHeight, color.NRGBA{R: 0x2e, G: 0x2e, B: 0x2e, A: 0xff})
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
