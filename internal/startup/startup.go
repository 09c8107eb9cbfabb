package startup

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"home-gallery/internal/logging"
	"home-gallery/internal/thumbs"
	"home-gallery/internal/workers"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information.
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration, populated from flags and
// GALLERY_* environment variables by kong.
type Config struct {
	MediaDir     string `name:"media-dir" help:"Directory containing the media library." env:"GALLERY_MEDIA_DIR" default:"/media"`
	ThumbnailDir string `name:"thumbnail-dir" help:"Directory for generated thumbnails." env:"GALLERY_THUMBNAIL_DIR" default:"/thumbnails"`

	Host        string `help:"Address to bind the HTTP server to." env:"GALLERY_HOST" default:"0.0.0.0"`
	Port        int    `help:"HTTP server port." env:"GALLERY_PORT" default:"8000"`
	MetricsPort int    `name:"metrics-port" help:"Prometheus metrics port." env:"GALLERY_METRICS_PORT" default:"9090"`

	ItemsPerPage int           `name:"items-per-page" help:"Listing page size." env:"GALLERY_ITEMS_PER_PAGE" default:"50"`
	Placeholder  string        `help:"URL path served when a thumbnail cannot be produced." env:"GALLERY_PLACEHOLDER" default:"/static/placeholder.png"`
	CacheTTL     time.Duration `name:"cache-ttl" help:"Scan cache entry lifetime." env:"GALLERY_CACHE_TTL" default:"5m"`

	WorkerThreads int `name:"worker-threads" help:"Background thumbnail workers (0 = size from available CPUs)." env:"GALLERY_WORKER_THREADS" default:"2"`

	NoCache      bool `name:"no-cache" help:"Disable the scan cache." env:"GALLERY_NO_CACHE"`
	NoWorkers    bool `name:"no-workers" help:"Disable background thumbnail generation." env:"GALLERY_NO_WORKERS"`
	NoServeMedia bool `name:"no-serve-media" help:"Disable serving original media files." env:"GALLERY_NO_SERVE_MEDIA"`
	NoMetrics    bool `name:"no-metrics" help:"Disable the Prometheus metrics server." env:"GALLERY_NO_METRICS"`

	SkipFFmpegCheck bool   `name:"skip-ffmpeg-check" help:"Skip the startup ffmpeg/ffprobe availability check." env:"GALLERY_SKIP_FFMPEG_CHECK"`
	LogDir          string `name:"log-dir" help:"Directory to tee logs into (empty = stderr only)." env:"GALLERY_LOG_DIR"`

	VersionFlag bool `name:"version" help:"Print version and exit."`
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// MetricsAddr returns the metrics listen address.
func (c *Config) MetricsAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.MetricsPort))
}

// Finalize resolves paths, verifies directories, and logs the effective
// configuration. Called once after flag parsing.
func (c *Config) Finalize() error {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	var err error
	c.MediaDir, err = filepath.Abs(c.MediaDir)
	if err != nil {
		return fmt.Errorf("failed to resolve media directory path: %w", err)
	}
	c.ThumbnailDir, err = filepath.Abs(c.ThumbnailDir)
	if err != nil {
		return fmt.Errorf("failed to resolve thumbnail directory path: %w", err)
	}

	logging.Info("  Media directory:      %s", c.MediaDir)
	logging.Info("  Thumbnail directory:  %s", c.ThumbnailDir)
	logging.Info("  Listen address:       %s", c.Addr())
	logging.Info("  Metrics:              %s (%s)", enabledString(!c.NoMetrics), c.MetricsAddr())
	logging.Info("  Items per page:       %d", c.ItemsPerPage)
	logging.Info("  Scan cache:           %s (TTL %v)", enabledString(!c.NoCache), c.CacheTTL)
	logging.Info("  Background workers:   %s (%d threads)", enabledString(!c.NoWorkers), c.Workers())
	logging.Info("  Serve media files:    %s", enabledString(!c.NoServeMedia))
	logging.Info("  Placeholder:          %s", c.Placeholder)
	logging.Info("  Log level:            %s", logging.GetLevel())

	info, err := os.Stat(c.MediaDir)
	if err != nil {
		return fmt.Errorf("media directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("media path %s is not a directory", c.MediaDir)
	}

	if err := os.MkdirAll(c.ThumbnailDir, 0o755); err != nil {
		return fmt.Errorf("failed to create thumbnail directory: %w", err)
	}
	if err := testWriteAccess(c.ThumbnailDir); err != nil {
		return fmt.Errorf("thumbnail directory is not writable: %w", err)
	}
	logging.Info("  [OK] Thumbnail directory is writable")

	if c.LogDir != "" {
		if err := logging.EnableFileLogging(c.LogDir); err != nil {
			logging.Warn("  File logging unavailable: %v", err)
		} else {
			logging.Info("  [OK] Logging to %s", c.LogDir)
		}
	}

	return nil
}

// Workers returns the effective worker count: the configured value, or a
// CPU-derived count when set to zero.
func (c *Config) Workers() int {
	if c.WorkerThreads > 0 {
		return c.WorkerThreads
	}
	return workers.ForMixed(16)
}

// CheckFFmpeg logs ffmpeg availability. Generation still works without it
// for already-cached thumbnails, so failure is a warning unless the check is
// skipped entirely.
func (c *Config) CheckFFmpeg() {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("THUMBNAIL RENDERER")
	logging.Info("------------------------------------------------------------")

	if c.SkipFFmpegCheck {
		logging.Info("  ffmpeg check skipped by configuration")
		return
	}

	if err := thumbs.CheckFFmpeg(); err != nil {
		logging.Warn("  ffmpeg check failed: %v", err)
		logging.Warn("  video thumbnails cannot be generated until ffmpeg is installed")
	} else {
		logging.Info("  [OK] ffmpeg and ffprobe are available")
	}
}

func printBanner() {
	logging.Info("============================================================")
	logging.Info("  home-gallery %s (%s)", Version, Commit)
	logging.Info("============================================================")
}

func logSystemInfo() {
	logging.Info("  Go:       %s", GoVersion)
	logging.Info("  OS/Arch:  %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs:     %d (GOMAXPROCS %d)", runtime.NumCPU(), runtime.GOMAXPROCS(0))
	logging.Info("")
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// RouteInfo describes one registered route.
type RouteInfo struct {
	Method string
	Path   string
}

// GetRoutes extracts all registered routes from a mux.Router.
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}
		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}
		for _, method := range methods {
			routes = append(routes, RouteInfo{Method: method, Path: pathTemplate})
		}
		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs the registered routes at debug level.
func LogHTTPRoutes(router *mux.Router) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if !logging.IsDebugEnabled() {
		return
	}

	routes, err := GetRoutes(router)
	if err != nil {
		logging.Warn("error walking routes: %v", err)
		return
	}
	logging.Debug("  Registered routes (%d total):", len(routes))
	for _, r := range routes {
		logging.Debug("    %-6s %s", r.Method, r.Path)
	}
}
